package handler

import (
	"errors"
	"net/http"

	"orderdesk/internal/app/store/entity"
	"orderdesk/internal/app/store/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AuthHandler обрабатывает HTTP запросы аутентификации
type AuthHandler struct {
	authService service.AuthServiceInterface
	validator   *validator.Validate
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
	}
}

// Login обрабатывает POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		if errors.Is(err, service.ErrTooManyLoginAttempts) {
			respondError(c, http.StatusTooManyRequests, "Too many login attempts, try again later")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to login")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// === HELPER FUNCTIONS ===

// respondError отправляет ответ об ошибке
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// formatValidationError форматирует ошибки валидации
func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			return validationErrors[0].Field() + " validation failed"
		}
	}
	return "Validation failed"
}
