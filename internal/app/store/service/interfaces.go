package service

import (
	"context"

	"orderdesk/internal/app/store/entity"
	"orderdesk/internal/app/store/repository"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error)
}

type ProductServiceInterface interface {
	Create(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error)
	Get(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, id string, req *entity.UpdateProductRequest) (*entity.Product, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) (repository.ProductCursor, error)
	Search(ctx context.Context, query string, limit int) (repository.ProductCursor, error)
	Count(ctx context.Context) (int64, error)
	Export(ctx context.Context) (string, error)
}

type OrderServiceInterface interface {
	Create(ctx context.Context, req *entity.CreateOrderRequest) (*entity.OrderWithItems, error)
	Get(ctx context.Context, id string) (*entity.OrderWithItems, error)
	UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.OrderWithItems, error)
	Count(ctx context.Context) (int64, error)
	Export(ctx context.Context) (string, error)
}

// MessagePublisher - абстракция над Kafka producer
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
}

// LoginRateLimiter - абстракция над Redis-счетчиком неудачных попыток входа
type LoginRateLimiter interface {
	Blocked(ctx context.Context, username string) (bool, error)
	RecordFailure(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}
