// Package businessflow contains the core business logic and use cases for catalog, pricing, and order workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Leaser-related errors
	ErrLeaserNotFound     = errors.New("leaser not found")
	ErrLeaserInactive     = errors.New("leaser is inactive")
	ErrLeaserNameRequired = errors.New("leaser name is required")
	ErrLeaserNameTaken    = errors.New("leaser name already exists")
	ErrNoLeaserConfigured = errors.New("no leaser configured")
	ErrLeaserHasOrders    = errors.New("leaser has orders and cannot be deleted")

	// Duration-related errors
	ErrDurationNotFound     = errors.New("leasing duration not found")
	ErrDurationInvalid      = errors.New("leasing duration must be a positive number of months")
	ErrDurationAlreadyKnown = errors.New("leasing duration already exists")

	// Coefficient-related errors
	ErrCoefficientNotFound = errors.New("coefficient tier not found")
	ErrCoefficientInvalid  = errors.New("coefficient must be greater than zero")
	ErrTierRangeInvalid    = errors.New("tier range is invalid")
	ErrTierAmountNegative  = errors.New("tier amounts must be non-negative")

	// Product-related errors
	ErrProductNotFound       = errors.New("product not found")
	ErrProductInactive       = errors.New("product is inactive")
	ErrProductNameRequired   = errors.New("product name is required")
	ErrProductSKUTaken       = errors.New("product SKU already exists")
	ErrPurchasePriceNegative = errors.New("purchase price must be non-negative")
	ErrMarginPercentNegative = errors.New("margin percent must be non-negative")

	// Order-related errors
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderEmpty          = errors.New("order has no items")
	ErrOrderNotEditable    = errors.New("order can no longer be modified")
	ErrOrderItemNotFound   = errors.New("order item not found")
	ErrQuantityInvalid     = errors.New("quantity must be at least 1")
	ErrTooManyOrderItems   = errors.New("order exceeds the maximum number of items")
	ErrInvalidStatusChange = errors.New("invalid order status transition")
	ErrOverrideNegative    = errors.New("price overrides must be non-negative")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsLeaserNotFound(err error) bool {
	return errors.Is(err, ErrLeaserNotFound)
}

func IsLeaserInactive(err error) bool {
	return errors.Is(err, ErrLeaserInactive)
}

func IsLeaserNameRequired(err error) bool {
	return errors.Is(err, ErrLeaserNameRequired)
}

func IsLeaserNameTaken(err error) bool {
	return errors.Is(err, ErrLeaserNameTaken)
}

func IsNoLeaserConfigured(err error) bool {
	return errors.Is(err, ErrNoLeaserConfigured)
}

func IsLeaserHasOrders(err error) bool {
	return errors.Is(err, ErrLeaserHasOrders)
}

func IsDurationNotFound(err error) bool {
	return errors.Is(err, ErrDurationNotFound)
}

func IsDurationInvalid(err error) bool {
	return errors.Is(err, ErrDurationInvalid)
}

func IsDurationAlreadyKnown(err error) bool {
	return errors.Is(err, ErrDurationAlreadyKnown)
}

func IsCoefficientNotFound(err error) bool {
	return errors.Is(err, ErrCoefficientNotFound)
}

func IsCoefficientInvalid(err error) bool {
	return errors.Is(err, ErrCoefficientInvalid)
}

func IsTierRangeInvalid(err error) bool {
	return errors.Is(err, ErrTierRangeInvalid)
}

func IsTierAmountNegative(err error) bool {
	return errors.Is(err, ErrTierAmountNegative)
}

func IsProductNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}

func IsProductInactive(err error) bool {
	return errors.Is(err, ErrProductInactive)
}

func IsProductNameRequired(err error) bool {
	return errors.Is(err, ErrProductNameRequired)
}

func IsProductSKUTaken(err error) bool {
	return errors.Is(err, ErrProductSKUTaken)
}

func IsPurchasePriceNegative(err error) bool {
	return errors.Is(err, ErrPurchasePriceNegative)
}

func IsMarginPercentNegative(err error) bool {
	return errors.Is(err, ErrMarginPercentNegative)
}

func IsOrderNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}

func IsOrderEmpty(err error) bool {
	return errors.Is(err, ErrOrderEmpty)
}

func IsOrderNotEditable(err error) bool {
	return errors.Is(err, ErrOrderNotEditable)
}

func IsOrderItemNotFound(err error) bool {
	return errors.Is(err, ErrOrderItemNotFound)
}

func IsQuantityInvalid(err error) bool {
	return errors.Is(err, ErrQuantityInvalid)
}

func IsTooManyOrderItems(err error) bool {
	return errors.Is(err, ErrTooManyOrderItems)
}

func IsInvalidStatusChange(err error) bool {
	return errors.Is(err, ErrInvalidStatusChange)
}

func IsOverrideNegative(err error) bool {
	return errors.Is(err, ErrOverrideNegative)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
