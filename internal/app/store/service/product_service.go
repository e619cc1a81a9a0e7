package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orderdesk/internal/app/store/entity"
	"orderdesk/internal/app/store/repository"
	"orderdesk/pkg/logger"
	"orderdesk/pkg/metrics"
)

const (
	// Границы нормализации limit для поиска
	searchDefaultLimit = 10
	searchMaxLimit     = 100
)

// ProductService обрабатывает бизнес-логику каталога товаров
type ProductService struct {
	productRepo repository.ProductRepository
	publisher   MessagePublisher
}

// NewProductService создает новый сервис каталога
func NewProductService(productRepo repository.ProductRepository, publisher MessagePublisher) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		publisher:   publisher,
	}
}

// Create создает товар со сгенерированным уникальным ID
// После вставки строка перечитывается; если подтвердить ее не удалось - internal
func (s *ProductService) Create(ctx context.Context, req *entity.CreateProductRequest) (*entity.Product, error) {
	id, err := newUniqueID(ctx, "prod", s.productRepo.Exists)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			// Конкурент успел занять ID между проверкой и вставкой
			return nil, fmt.Errorf("%w: id collision on insert", ErrInternal)
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	created, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: product row missing after insert", ErrInternal)
		}
		return nil, fmt.Errorf("failed to confirm product: %w", err)
	}

	metrics.ProductsCreated.Inc()
	return created, nil
}

// Get получает товар по ID
func (s *ProductService) Get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// Update полностью заменяет изменяемые поля товара
// При смене цены отправляется событие PRODUCT_UPDATED
func (s *ProductService) Update(ctx context.Context, id string, req *entity.UpdateProductRequest) (*entity.Product, error) {
	current, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	oldPrice := current.Price

	product := &entity.Product{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	updated, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm product update: %w", err)
	}

	if updated.Price != oldPrice {
		event := entity.ProductEvent{
			EventType: "PRODUCT_UPDATED",
			ProductID: updated.ID,
			Name:      updated.Name,
			Price:     updated.Price,
			OldPrice:  oldPrice,
			Timestamp: time.Now(),
		}
		s.publishEvent(ctx, updated.ID, event)
	}

	return updated, nil
}

// Delete удаляет товар
// Отсутствующий ID - не ошибка: вызывающая сторона получает success=false
func (s *ProductService) Delete(ctx context.Context, id string) (bool, error) {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	return true, nil
}

// List открывает курсор по всем товарам в порядке хранения
func (s *ProductService) List(ctx context.Context) (repository.ProductCursor, error) {
	cursor, err := s.productRepo.StreamAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to stream products: %w", err)
	}

	return cursor, nil
}

// Search открывает курсор по товарам с регистронезависимым поиском подстроки в имени
// limit нормализуется, а не отклоняется: <=0 дает значение по умолчанию, больше максимума - максимум
func (s *ProductService) Search(ctx context.Context, query string, limit int) (repository.ProductCursor, error) {
	if limit <= 0 {
		limit = searchDefaultLimit
	} else if limit > searchMaxLimit {
		limit = searchMaxLimit
	}

	cursor, err := s.productRepo.StreamByName(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	return cursor, nil
}

// Count возвращает количество товаров
func (s *ProductService) Count(ctx context.Context) (int64, error) {
	count, err := s.productRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

// Export сериализует снапшот всех товаров в один JSON-блоб
func (s *ProductService) Export(ctx context.Context) (string, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load products for export: %w", err)
	}

	// nil-слайс сериализовался бы как null, потребители ждут массив
	if products == nil {
		products = []entity.Product{}
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal products: %w", err)
	}

	return string(data), nil
}

func (s *ProductService) publishEvent(ctx context.Context, key string, event entity.ProductEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to marshal product event")
		return
	}

	// Товар уже сохранен, проблемы с брокером не валят операцию
	if err := s.publisher.PublishMessage(ctx, key, data); err != nil {
		logger.Warn().Err(err).Str("product_id", key).Msg("failed to publish product event")
	}
}
