package repository

import (
	"context"
	"errors"

	"orderdesk/internal/app/store/entity"
	"orderdesk/pkg/metrics"

	"gorm.io/gorm"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository создает новый репозиторий пользователей
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create создает нового пользователя
func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "users")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Create(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateID
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return result.Error
	}

	return nil
}

// GetByUsername получает пользователя по имени
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "users")
	defer timer.ObserveDuration()

	var user entity.User
	result := r.db.WithContext(ctx).First(&user, "username = ?", username)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return &user, nil
}

// Exists проверяет занятость ID перед генерацией нового
func (r *userRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("user_id = ?", id).
		Count(&count)

	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}
