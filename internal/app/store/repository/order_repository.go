package repository

import (
	"context"
	"errors"

	"orderdesk/internal/app/store/entity"
	"orderdesk/pkg/metrics"

	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository создает новый репозиторий заказов
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateWithItems сохраняет заказ вместе с позициями в одной транзакции
// Либо фиксируются все строки, либо ни одной
func (r *orderRepository) CreateWithItems(ctx context.Context, order *entity.Order, items []entity.OrderItem) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "orders")
	defer timer.ObserveDuration()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateID
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return err
	}

	return nil
}

// GetWithItems получает заказ с полным списком позиций
func (r *orderRepository) GetWithItems(ctx context.Context, id string) (*entity.OrderWithItems, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "orders")
	defer timer.ObserveDuration()

	var order entity.Order
	result := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "order_id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	return &entity.OrderWithItems{
		Order: order,
		Items: order.Items,
	}, nil
}

// UpdateStatus обновляет статус заказа
func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "orders")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("order_id = ?", id).
		Update("status", status)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// Exists проверяет занятость ID перед генерацией нового
func (r *orderRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("order_id = ?", id).
		Count(&count)

	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// GetAllWithItems получает все заказы с позициями (для экспорта)
func (r *orderRepository) GetAllWithItems(ctx context.Context) ([]entity.OrderWithItems, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "orders")
	defer timer.ObserveDuration()

	var orders []entity.Order
	result := r.db.WithContext(ctx).Preload("Items").Find(&orders)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	withItems := make([]entity.OrderWithItems, 0, len(orders))
	for _, order := range orders {
		withItems = append(withItems, entity.OrderWithItems{
			Order: order,
			Items: order.Items,
		})
	}

	return withItems, nil
}

// Count возвращает количество заказов
func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Order{}).Count(&count)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return 0, result.Error
	}

	return count, nil
}

// CountByStatus возвращает количество заказов по каждому статусу
// Используется планировщиком для обновления gauge-метрики
func (r *orderRepository) CountByStatus(ctx context.Context) (map[entity.OrderStatus]int64, error) {
	var rows []struct {
		Status entity.OrderStatus
		Total  int64
	}

	result := r.db.WithContext(ctx).Model(&entity.Order{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, result.Error
	}

	counts := make(map[entity.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}

	return counts, nil
}
