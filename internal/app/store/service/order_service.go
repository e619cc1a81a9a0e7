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

// OrderService обрабатывает бизнес-логику заказов
// Цены позиций снимаются с каталога в момент создания и больше не меняются
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	publisher   MessagePublisher
}

// NewOrderService создает новый сервис заказов
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	publisher MessagePublisher,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
	}
}

// Create создает заказ
// Позиции с неизвестным товаром отбрасываются с предупреждением;
// если не осталось ни одной - заказ не создается.
// Заказ и позиции пишутся в одной транзакции.
func (s *OrderService) Create(ctx context.Context, req *entity.CreateOrderRequest) (*entity.OrderWithItems, error) {
	items := make([]entity.OrderItem, 0, len(req.Items))
	var totalAmount float64

	// Позиции обрабатываются в порядке подачи, порядок сохраняется
	for _, itemReq := range req.Items {
		product, err := s.productRepo.GetByID(ctx, itemReq.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				metrics.OrderItemsDropped.Inc()
				logger.Warn().
					Str("product_id", itemReq.ProductID).
					Str("user_id", req.UserID).
					Msg("order item dropped: unknown product")
				continue
			}
			return nil, fmt.Errorf("failed to resolve product price: %w", err)
		}

		items = append(items, entity.OrderItem{
			ProductID:    product.ID,
			Quantity:     itemReq.Quantity,
			PricePerItem: product.Price, // Снапшот текущей цены
		})
		totalAmount += product.Price * float64(itemReq.Quantity)
	}

	if len(items) == 0 {
		return nil, ErrNoValidItems
	}

	id, err := newUniqueID(ctx, "order", s.orderRepo.Exists)
	if err != nil {
		return nil, err
	}

	order := &entity.Order{
		ID:          id,
		UserID:      req.UserID,
		Status:      entity.OrderStatusPending,
		TotalAmount: totalAmount,
	}

	if err := s.orderRepo.CreateWithItems(ctx, order, items); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			return nil, fmt.Errorf("%w: id collision on insert", ErrInternal)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	created, err := s.orderRepo.GetWithItems(ctx, order.ID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, fmt.Errorf("%w: order row missing after insert", ErrInternal)
		}
		return nil, fmt.Errorf("failed to confirm order: %w", err)
	}

	metrics.OrdersCreated.Inc()
	metrics.OrdersTotalAmount.Add(totalAmount)

	s.publishEvent(ctx, created.ID, entity.OrderEvent{
		EventType:   "ORDER_CREATED",
		OrderID:     created.ID,
		UserID:      created.UserID,
		TotalAmount: created.TotalAmount,
		Status:      created.Status,
		ItemsCount:  len(created.Items),
		Timestamp:   time.Now(),
	})

	return created, nil
}

// Get получает заказ с позициями
func (s *OrderService) Get(ctx context.Context, id string) (*entity.OrderWithItems, error) {
	order, err := s.orderRepo.GetWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// UpdateStatus переводит заказ в новый статус
// Принимается любой член enum: таблица допустимых переходов не задана
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.OrderWithItems, error) {
	if !status.Valid() {
		return nil, ErrInvalidOrderStatus
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order, err := s.orderRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm status update: %w", err)
	}

	s.publishEvent(ctx, order.ID, entity.OrderEvent{
		EventType:   "ORDER_STATUS_UPDATED",
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Status:      order.Status,
		ItemsCount:  len(order.Items),
		Timestamp:   time.Now(),
	})

	return order, nil
}

// Count возвращает количество заказов
func (s *OrderService) Count(ctx context.Context) (int64, error) {
	count, err := s.orderRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}

	return count, nil
}

// Export сериализует снапшот всех заказов с позициями в один JSON-блоб
func (s *OrderService) Export(ctx context.Context) (string, error) {
	orders, err := s.orderRepo.GetAllWithItems(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load orders for export: %w", err)
	}

	data, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal orders: %w", err)
	}

	return string(data), nil
}

func (s *OrderService) publishEvent(ctx context.Context, key string, event entity.OrderEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to marshal order event")
		return
	}

	// Заказ уже сохранен, проблемы с брокером не валят операцию
	if err := s.publisher.PublishMessage(ctx, key, data); err != nil {
		logger.Warn().Err(err).Str("order_id", key).Msg("failed to publish order event")
	}
}
