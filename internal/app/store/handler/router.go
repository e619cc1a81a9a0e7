package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"orderdesk/internal/app/store/config"
	"orderdesk/pkg/logger"
	"orderdesk/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
// Роль резолвится на каждом запросе: без токена запрос идет дальше как guest,
// а решение о доступе принимает RequireRole на конкретном маршруте
func SetupRoutes(
	authHandler *AuthHandler,
	productHandler *ProductHandler,
	orderHandler *OrderHandler,
	authMiddleware *AuthMiddleware,
	cfg *config.Config,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов (ELK Stack)
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("orderdesk"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "orderdesk",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Публичные эндпоинты (без аутентификации)
	auth := router.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// Запись в каталог по умолчанию открыта, флаг конфигурации ее закрывает
	productWrite := func() gin.HandlerFunc {
		if cfg.Policy.AdminProductWrites {
			return authMiddleware.RequireRole("admin")
		}
		return func(c *gin.Context) { c.Next() }
	}()

	products := router.Group("/products")
	products.Use(authMiddleware.ResolveRole())
	{
		products.GET("", productHandler.ListProducts)   // NDJSON поток
		products.GET("/:id", productHandler.GetProduct) // Товар по ID

		products.POST("", productWrite, productHandler.CreateProduct)
		products.PUT("/:id", productWrite, productHandler.UpdateProduct)
		products.DELETE("/:id", authMiddleware.RequireRole("admin"), productHandler.DeleteProduct) // Удаление только admin
	}

	search := router.Group("/search")
	search.Use(authMiddleware.ResolveRole())
	{
		search.GET("/products", productHandler.SearchProducts) // NDJSON поток с limit
	}

	stats := router.Group("/stats")
	stats.Use(authMiddleware.ResolveRole())
	{
		stats.GET("/products", productHandler.CountProducts)
		stats.GET("/orders", orderHandler.CountOrders)
	}

	export := router.Group("/export")
	export.Use(authMiddleware.ResolveRole())
	{
		export.GET("/products", productHandler.ExportProducts)
		export.GET("/orders", orderHandler.ExportOrders)
	}

	orders := router.Group("/orders")
	orders.Use(authMiddleware.ResolveRole())
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.PATCH("/:id/status", orderHandler.UpdateOrderStatus)
	}

	return router
}
