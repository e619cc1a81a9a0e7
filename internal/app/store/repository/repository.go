package repository

import (
	"context"
	"errors"

	"orderdesk/internal/app/store/entity"
)

// serviceName используется как label для метрик БД
const serviceName = "orderdesk"

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrDuplicateID     = errors.New("duplicate id")
)

// ProductCursor - курсор для потокового чтения товаров
// Вызывающая сторона обязана закрыть курсор
type ProductCursor interface {
	Next() bool
	Product() (*entity.Product, error)
	Err() error
	Close() error
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
	GetAll(ctx context.Context) ([]entity.Product, error)
	StreamAll(ctx context.Context) (ProductCursor, error)
	StreamByName(ctx context.Context, query string, limit int) (ProductCursor, error)
	Count(ctx context.Context) (int64, error)
}

type OrderRepository interface {
	CreateWithItems(ctx context.Context, order *entity.Order, items []entity.OrderItem) error
	GetWithItems(ctx context.Context, id string) (*entity.OrderWithItems, error)
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error
	Exists(ctx context.Context, id string) (bool, error)
	GetAllWithItems(ctx context.Context) ([]entity.OrderWithItems, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[entity.OrderStatus]int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Exists(ctx context.Context, id string) (bool, error)
}
