package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Количество попыток подобрать свободный ID
// Суффикс короткий, поэтому коллизии возможны, но крайне редки
const maxIDAttempts = 5

func generateID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// newUniqueID подбирает незанятый ID ограниченным числом попыток
// Проверка и вставка не атомарны: гонку окончательно ловит первичный ключ
func newUniqueID(ctx context.Context, prefix string, exists func(context.Context, string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := generateID(prefix)

		taken, err := exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to check id availability: %w", err)
		}
		if !taken {
			return id, nil
		}
	}

	return "", fmt.Errorf("%w: id generation exhausted %d attempts", ErrInternal, maxIDAttempts)
}
