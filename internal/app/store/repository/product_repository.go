package repository

import (
	"context"
	"database/sql"
	"errors"

	"orderdesk/internal/app/store/entity"
	"orderdesk/pkg/metrics"

	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create создает новый товар
// Конфликт первичного ключа транслируется в ErrDuplicateID
func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "products")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Create(product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateID
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return result.Error
	}

	return nil
}

// GetByID получает товар по ID
func (r *productRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "product_id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return &product, nil
}

// Update полностью заменяет изменяемые поля товара
func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "products")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("product_id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
		})

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete удаляет товар
func (r *productRepository) Delete(ctx context.Context, id string) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "products")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Delete(&entity.Product{}, "product_id = ?", id)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Exists проверяет занятость ID перед генерацией нового
func (r *productRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("product_id = ?", id).
		Count(&count)

	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// GetAll получает все товары (для экспорта)
func (r *productRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	// Пустой каталог - непустой слайс, а не nil: экспорт сериализует его как []
	products := make([]entity.Product, 0)
	result := r.db.WithContext(ctx).Find(&products)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return products, nil
}

// StreamAll открывает курсор по всем товарам в порядке хранения
func (r *productRepository) StreamAll(ctx context.Context) (ProductCursor, error) {
	rows, err := r.db.WithContext(ctx).Model(&entity.Product{}).Rows()
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, err
	}

	return &productCursor{db: r.db, rows: rows}, nil
}

// StreamByName открывает курсор по товарам, имя которых содержит query
// Сравнение регистронезависимое, limit уже нормализован сервисом
func (r *productRepository) StreamByName(ctx context.Context, query string, limit int) (ProductCursor, error) {
	rows, err := r.db.WithContext(ctx).Model(&entity.Product{}).
		Where("UPPER(name) LIKE UPPER(?)", "%"+query+"%").
		Limit(limit).
		Rows()
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, err
	}

	return &productCursor{db: r.db, rows: rows}, nil
}

// Count возвращает количество товаров
func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Product{}).Count(&count)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return 0, result.Error
	}

	return count, nil
}

// productCursor реализует ProductCursor поверх sql.Rows
type productCursor struct {
	db   *gorm.DB
	rows *sql.Rows
}

func (c *productCursor) Next() bool {
	return c.rows.Next()
}

func (c *productCursor) Product() (*entity.Product, error) {
	var product entity.Product
	if err := c.db.ScanRows(c.rows, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *productCursor) Err() error {
	return c.rows.Err()
}

func (c *productCursor) Close() error {
	return c.rows.Close()
}
