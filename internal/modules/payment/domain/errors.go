package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSaleNotFound      = errors.New("sale not found")
	ErrSaleNotCompleted  = errors.New("sale is not in completed status")
	ErrInvalidPrice      = errors.New("track has no valid price")
	ErrUnknownGateway    = errors.New("unknown payment gateway")
	ErrMissingPaymentID  = errors.New("payment id is required")
	ErrMissingTrxID      = errors.New("transaction id is required")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidStatus     = errors.New("invalid payment status")
	ErrInvalidSignature  = errors.New("callback signature mismatch")
	ErrDistributionRules = errors.New("distribution shares exceed 100%")
)

// GatewayError is a business rejection from the payment gateway: the HTTP
// exchange worked but the gateway refused the operation.
type GatewayError struct {
	Gateway       string
	Operation     string
	StatusCode    string
	StatusMessage string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s %s failed: %s (%s)", e.Gateway, e.Operation, e.StatusMessage, e.StatusCode)
}
