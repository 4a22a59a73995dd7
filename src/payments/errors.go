package payments

import (
	"errors"
	"fmt"
	"huletfish/src/types"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrSignatureInvalid   = errors.New("invalid webhook signature")
	ErrRefundWindowClosed = errors.New("refunds are only available more than 24 hours before the booking starts")
	ErrInvalidState       = errors.New("payment is not in a valid state for this operation")
	ErrCheckoutInProgress = errors.New("a checkout for this booking is already in progress")

	// ErrPaymentConflict is returned by a Store when an insert collides with
	// another active payment for the same booking.
	ErrPaymentConflict = errors.New("active payment already exists for booking")
)

// DuplicatePaymentError carries the payment the client should resume.
type DuplicatePaymentError struct {
	PaymentID string
}

func (e *DuplicatePaymentError) Error() string {
	return fmt.Sprintf("payment already exists for this booking: %s", e.PaymentID)
}

type GatewayError struct {
	Gateway types.PaymentMethod
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Gateway, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Gateway, e.Err.Error())
	}
	return fmt.Sprintf("%s: gateway request failed", e.Gateway)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
