package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"orderdesk/internal/app/store/entity"
	"orderdesk/internal/app/store/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOrderService мок для OrderServiceInterface в тестах handler
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, req *entity.CreateOrderRequest) (*entity.OrderWithItems, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OrderWithItems), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, id string) (*entity.OrderWithItems, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OrderWithItems), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.OrderWithItems, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.OrderWithItems), args.Error(1)
}

func (m *MockOrderService) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderService) Export(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// ===================== CreateOrder Handler Tests =====================

func TestCreateOrderHandler_Success(t *testing.T) {
	router := setupTestRouter()

	order := &entity.OrderWithItems{
		Order: entity.Order{
			ID:          "order-cafe0123",
			UserID:      "user-1a2b3c4d",
			Status:      entity.OrderStatusPending,
			TotalAmount: 125.0,
		},
		Items: []entity.OrderItem{
			{ProductID: "prod-aaaa1111", Quantity: 2, PricePerItem: 50.0},
			{ProductID: "prod-bbbb2222", Quantity: 1, PricePerItem: 25.0},
		},
	}

	mockService := new(MockOrderService)
	mockService.On("Create", mock.Anything, mock.AnythingOfType("*entity.CreateOrderRequest")).Return(order, nil)

	h := NewOrderHandler(mockService)
	router.POST("/orders", h.CreateOrder)

	body, _ := json.Marshal(entity.CreateOrderRequest{
		UserID: "user-1a2b3c4d",
		Items:  []entity.OrderItemRequest{{ProductID: "prod-aaaa1111", Quantity: 2}},
	})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var got entity.OrderWithItems
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "order-cafe0123", got.ID)
	assert.Len(t, got.Items, 2)
}

func TestCreateOrderHandler_NoValidItems(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockOrderService)
	mockService.On("Create", mock.Anything, mock.AnythingOfType("*entity.CreateOrderRequest")).Return(nil, service.ErrNoValidItems)

	h := NewOrderHandler(mockService)
	router.POST("/orders", h.CreateOrder)

	body, _ := json.Marshal(entity.CreateOrderRequest{
		UserID: "user-1a2b3c4d",
		Items:  []entity.OrderItemRequest{{ProductID: "prod-gone0000", Quantity: 1}},
	})
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrderHandler_EmptyItems(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService)
	router.POST("/orders", h.CreateOrder)

	body := []byte(`{"user_id": "user-1a2b3c4d", "items": []}`)
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateOrderHandler_ZeroQuantity(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService)
	router.POST("/orders", h.CreateOrder)

	body := []byte(`{"user_id": "user-1a2b3c4d", "items": [{"product_id": "prod-aaaa1111", "quantity": 0}]}`)
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// ===================== GetOrder Handler Tests =====================

func TestGetOrderHandler_Success(t *testing.T) {
	router := setupTestRouter()

	order := &entity.OrderWithItems{
		Order: entity.Order{ID: "order-cafe0123", Status: entity.OrderStatusPending},
	}

	mockService := new(MockOrderService)
	mockService.On("Get", mock.Anything, "order-cafe0123").Return(order, nil)

	h := NewOrderHandler(mockService)
	router.GET("/orders/:id", h.GetOrder)

	req := httptest.NewRequest(http.MethodGet, "/orders/order-cafe0123", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetOrderHandler_NotFound(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockOrderService)
	mockService.On("Get", mock.Anything, "order-missing1").Return(nil, service.ErrOrderNotFound)

	h := NewOrderHandler(mockService)
	router.GET("/orders/:id", h.GetOrder)

	req := httptest.NewRequest(http.MethodGet, "/orders/order-missing1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===================== UpdateOrderStatus Handler Tests =====================

func TestUpdateOrderStatusHandler_Success(t *testing.T) {
	router := setupTestRouter()

	order := &entity.OrderWithItems{
		Order: entity.Order{ID: "order-cafe0123", Status: entity.OrderStatusShipped},
	}

	mockService := new(MockOrderService)
	mockService.On("UpdateStatus", mock.Anything, "order-cafe0123", entity.OrderStatusShipped).Return(order, nil)

	h := NewOrderHandler(mockService)
	router.PATCH("/orders/:id/status", h.UpdateOrderStatus)

	body := []byte(`{"status": "shipped"}`)
	req := httptest.NewRequest(http.MethodPatch, "/orders/order-cafe0123/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateOrderStatusHandler_UnknownStatus(t *testing.T) {
	// Значение вне enum отсекается валидатором до вызова сервиса
	router := setupTestRouter()

	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService)
	router.PATCH("/orders/:id/status", h.UpdateOrderStatus)

	body := []byte(`{"status": "teleported"}`)
	req := httptest.NewRequest(http.MethodPatch, "/orders/order-cafe0123/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrderStatusHandler_NotFound(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockOrderService)
	mockService.On("UpdateStatus", mock.Anything, "order-missing1", entity.OrderStatusCancelled).Return(nil, service.ErrOrderNotFound)

	h := NewOrderHandler(mockService)
	router.PATCH("/orders/:id/status", h.UpdateOrderStatus)

	body := []byte(`{"status": "cancelled"}`)
	req := httptest.NewRequest(http.MethodPatch, "/orders/order-missing1/status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===================== Count / Export Handler Tests =====================

func TestCountOrdersHandler(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockOrderService)
	mockService.On("Count", mock.Anything).Return(int64(7), nil)

	h := NewOrderHandler(mockService)
	router.GET("/stats/orders", h.CountOrders)

	req := httptest.NewRequest(http.MethodGet, "/stats/orders", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.CountResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.Count)
}

func TestExportOrdersHandler(t *testing.T) {
	router := setupTestRouter()

	mockService := new(MockOrderService)
	mockService.On("Export", mock.Anything).Return(`[{"order_id":"order-cafe0123"}]`, nil)

	h := NewOrderHandler(mockService)
	router.GET("/export/orders", h.ExportOrders)

	req := httptest.NewRequest(http.MethodGet, "/export/orders", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.ExportResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.JSONData, "order-cafe0123")
}
