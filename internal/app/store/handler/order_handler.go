package handler

import (
	"errors"
	"net/http"

	"orderdesk/internal/app/store/entity"
	"orderdesk/internal/app/store/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// OrderHandler обрабатывает HTTP запросы заказов
type OrderHandler struct {
	orderService service.OrderServiceInterface
	validator    *validator.Validate
}

// NewOrderHandler создает новый обработчик заказов
func NewOrderHandler(orderService service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validator:    validator.New(),
	}
}

// CreateOrder обрабатывает POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req entity.CreateOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNoValidItems) {
			respondError(c, http.StatusBadRequest, "Order has no valid items")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to create order")
		return
	}

	c.JSON(http.StatusCreated, order)
}

// GetOrder обрабатывает GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id := c.Param("id")

	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, http.StatusNotFound, "Order not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to get order")
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus обрабатывает PATCH /orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id := c.Param("id")

	var req entity.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, http.StatusNotFound, "Order not found")
			return
		}
		if errors.Is(err, service.ErrInvalidOrderStatus) {
			respondError(c, http.StatusBadRequest, "Invalid order status")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to update order status")
		return
	}

	c.JSON(http.StatusOK, order)
}

// CountOrders обрабатывает GET /stats/orders
func (h *OrderHandler) CountOrders(c *gin.Context) {
	count, err := h.orderService.Count(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to count orders")
		return
	}

	c.JSON(http.StatusOK, entity.CountResponse{Count: count})
}

// ExportOrders обрабатывает GET /export/orders
func (h *OrderHandler) ExportOrders(c *gin.Context) {
	data, err := h.orderService.Export(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to export orders")
		return
	}

	c.JSON(http.StatusOK, entity.ExportResponse{JSONData: data})
}
