package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"orderdesk/internal/app/store/entity"
	"orderdesk/internal/app/store/repository"
	"orderdesk/internal/app/store/service"
	"orderdesk/pkg/logger"
	"orderdesk/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ProductHandler обрабатывает HTTP запросы каталога товаров
type ProductHandler struct {
	productService service.ProductServiceInterface
	validator      *validator.Validate
}

// NewProductHandler создает новый обработчик каталога
func NewProductHandler(productService service.ProductServiceInterface) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
	}
}

// CreateProduct обрабатывает POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	product, err := h.productService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProduct обрабатывает GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")

	product, err := h.productService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to get product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProduct обрабатывает PUT /products/:id
// Тело трактуется как полная замена: незаполненные поля перезаписывают старые
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id := c.Param("id")

	var req entity.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct обрабатывает DELETE /products/:id
// Удаление отсутствующего товара - не ошибка, клиент получает success=false
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := c.Param("id")

	deleted, err := h.productService.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	c.JSON(http.StatusOK, entity.DeleteProductResponse{Success: deleted})
}

// ListProducts обрабатывает GET /products
// Товары отдаются потоком NDJSON, по одному объекту на строку
func (h *ProductHandler) ListProducts(c *gin.Context) {
	cursor, err := h.productService.List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to list products")
		return
	}

	h.streamCursor(c, cursor, "list")
}

// SearchProducts обрабатывает GET /search/products?q=...&limit=...
// Некорректный limit нормализуется сервисом, а не отклоняется
func (h *ProductHandler) SearchProducts(c *gin.Context) {
	query := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	cursor, err := h.productService.Search(c.Request.Context(), query, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to search products")
		return
	}

	h.streamCursor(c, cursor, "search")
}

// CountProducts обрабатывает GET /stats/products
func (h *ProductHandler) CountProducts(c *gin.Context) {
	count, err := h.productService.Count(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to count products")
		return
	}

	c.JSON(http.StatusOK, entity.CountResponse{Count: count})
}

// ExportProducts обрабатывает GET /export/products
func (h *ProductHandler) ExportProducts(c *gin.Context) {
	data, err := h.productService.Export(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to export products")
		return
	}

	c.JSON(http.StatusOK, entity.ExportResponse{JSONData: data})
}

// streamCursor пишет товары из курсора в ответ построчно
// Обрыв соединения клиентом останавливает чтение, курсор закрывается всегда
func (h *ProductHandler) streamCursor(c *gin.Context, cursor repository.ProductCursor, mode string) {
	defer func() {
		if err := cursor.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close product cursor")
		}
	}()

	c.Header("Content-Type", "application/x-ndjson")
	c.Status(http.StatusOK)

	flusher, _ := c.Writer.(http.Flusher)
	encoder := json.NewEncoder(c.Writer)
	ctx := c.Request.Context()

	for cursor.Next() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		product, err := cursor.Product()
		if err != nil {
			logger.Error().Err(err).Msg("failed to scan product row")
			return
		}

		if err := encoder.Encode(product); err != nil {
			// Клиент ушел, дописывать некому
			return
		}
		if flusher != nil {
			flusher.Flush()
		}

		metrics.ProductsStreamed.WithLabelValues(mode).Inc()
	}

	if err := cursor.Err(); err != nil {
		logger.Error().Err(err).Msg("product cursor finished with error")
	}
}
