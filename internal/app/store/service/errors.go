package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrTooManyLoginAttempts = errors.New("too many failed login attempts")
	ErrProductNotFound      = errors.New("product not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidOrderStatus   = errors.New("invalid order status")
	ErrNoValidItems         = errors.New("no valid items in order")
	ErrInternal             = errors.New("internal error")
)
