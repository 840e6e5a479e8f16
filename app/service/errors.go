package service

import "errors"

var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrOrderNotCompleted = errors.New("paypal order is not completed")
	ErrAmountMismatch    = errors.New("paypal order amount does not match payment")
	ErrValidation        = errors.New("validation failed")
	ErrOperatorEmail     = errors.New("operator notification failed")
	ErrPersistence       = errors.New("submission persistence failed")
)
