package util

import "golang.org/x/crypto/bcrypt"

// Стоимость bcrypt. DefaultCost достаточно для интерактивного логина,
// при ужесточении требований меняется в одном месте
const bcryptCost = bcrypt.DefaultCost

// HashPassword возвращает bcrypt-хэш пароля; в базе хранится только хэш
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword сверяет пароль с сохраненным хэшем
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
