package utils

import "errors"

// Common application errors used across services.
var (
	ErrSessionNotFound = errors.New("SESSION_NOT_FOUND")
	ErrBackendFailed   = errors.New("BACKEND_FAILED")
	ErrProductNotFound = errors.New("PRODUCT_NOT_FOUND")
	ErrCartEmpty       = errors.New("CART_EMPTY")
	ErrItemNotFound    = errors.New("ITEM_NOT_FOUND")
	ErrInvalidQuantity = errors.New("INVALID_QUANTITY")
	ErrValidation      = errors.New("VALIDATION_FAILED")
	ErrPaymentFailed   = errors.New("PAYMENT_FAILED")
	ErrOrderPending    = errors.New("ORDER_PENDING")
	ErrUnknownTopic    = errors.New("UNKNOWN_TOPIC")
)
