package entity

import (
	"time"
)

// Product представляет товар в каталоге
type Product struct {
	ID          string    `json:"product_id" gorm:"column:product_id;type:varchar(64);primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Price       float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (Product) TableName() string {
	return "products"
}

// OrderStatus представляет статусы заказа
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // Статус при создании
	OrderStatusConfirmed OrderStatus = "confirmed" // Подтвержден
	OrderStatusShipped   OrderStatus = "shipped"   // Отправлен
	OrderStatusDelivered OrderStatus = "delivered" // Доставлен
	OrderStatusCancelled OrderStatus = "cancelled" // Отменен
)

// Valid сообщает, входит ли значение в перечисление статусов
// Таблица допустимых переходов не задана: принимается любой член enum
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order представляет заказ
// TotalAmount фиксируется при создании и больше не пересчитывается
type Order struct {
	ID          string      `json:"order_id" gorm:"column:order_id;type:varchar(64);primaryKey"`
	UserID      string      `json:"user_id" gorm:"type:varchar(64);not null"` // Передается клиентом, не проверяется по таблице users
	Status      OrderStatus `json:"status" gorm:"type:varchar(50);not null;default:'pending'"`
	TotalAmount float64     `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time   `json:"created_at" gorm:"autoCreateTime"`
	Items       []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName указывает имя таблицы для GORM
func (Order) TableName() string {
	return "orders"
}

// OrderItem представляет позицию в заказе
// PricePerItem - снапшот цены товара на момент создания заказа
type OrderItem struct {
	ID           uint    `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID      string  `json:"order_id" gorm:"type:varchar(64);not null;index"`
	ProductID    string  `json:"product_id" gorm:"type:varchar(64);not null"`
	Quantity     int     `json:"quantity" gorm:"not null;check:quantity > 0"`
	PricePerItem float64 `json:"price_per_item" gorm:"type:decimal(10,2);not null"`
}

// TableName указывает имя таблицы для GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderWithItems содержит заказ с полным списком позиций
type OrderWithItems struct {
	Order
	Items []OrderItem `json:"items"`
}

// User представляет пользователя в системе
type User struct {
	ID           string    `json:"user_id" gorm:"column:user_id;type:varchar(64);primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(200);not null"`
	Role         string    `json:"role" gorm:"type:varchar(50);not null"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName указывает имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// ProductEvent представляет событие изменения товара для Kafka
type ProductEvent struct {
	EventType string    `json:"event_type"` // PRODUCT_UPDATED
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	OldPrice  float64   `json:"old_price"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderEvent представляет событие изменения заказа для Kafka
type OrderEvent struct {
	EventType   string      `json:"event_type"` // ORDER_CREATED, ORDER_STATUS_UPDATED
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id"`
	TotalAmount float64     `json:"total_amount"`
	Status      OrderStatus `json:"status"`
	ItemsCount  int         `json:"items_count"`
	Timestamp   time.Time   `json:"timestamp"`
}
