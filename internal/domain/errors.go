package domain

import (
	"errors"
	"fmt"
)

const (
	CodeEmptyOrder               = 1001
	CodeInvalidQuantity          = 1002
	CodeProductNotFound          = 2001
	CodeOrderNotFound            = 2002
	CodeCategoryNotFound         = 2003
	CodeInsufficientStock        = 3001
	CodeDuplicateCategory        = 3002
	CodeAlreadyShipped           = 4001
	CodeAlreadyCancelled         = 4002
	CodeCannotShipCancelled      = 4003
	CodeShippedCancelNeedsReason = 4004
	CodeNotAuthorized            = 5001
	CodePersistence              = 9001
	CodeUnknown                  = -9999
)

// AppError carries a stable machine-readable code plus a human-readable
// message. Details hold the conflicting quantity or status so callers can
// render an actionable message without a second round-trip.
type AppError struct {
	Code    int
	Name    string
	Message string
	Details map[string]any
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewEmptyOrderError() *AppError {
	return &AppError{
		Code:    CodeEmptyOrder,
		Name:    "empty_order",
		Message: "order must contain at least one line",
	}
}

func NewInvalidQuantityError(productPublicID string, qty int) *AppError {
	return &AppError{
		Code:    CodeInvalidQuantity,
		Name:    "invalid_quantity",
		Message: fmt.Sprintf("quantity %d for product %s must be positive", qty, productPublicID),
		Details: map[string]any{"product_public_id": productPublicID, "quantity": qty},
	}
}

func NewProductNotFoundError(publicID string) *AppError {
	return &AppError{
		Code:    CodeProductNotFound,
		Name:    "product_not_found",
		Message: fmt.Sprintf("product %s not found", publicID),
		Details: map[string]any{"product_public_id": publicID},
	}
}

func NewOrderNotFoundError(publicID string) *AppError {
	return &AppError{
		Code:    CodeOrderNotFound,
		Name:    "order_not_found",
		Message: fmt.Sprintf("order %s not found", publicID),
		Details: map[string]any{"order_public_id": publicID},
	}
}

func NewCategoryNotFoundError(publicID string) *AppError {
	return &AppError{
		Code:    CodeCategoryNotFound,
		Name:    "category_not_found",
		Message: fmt.Sprintf("category %s not found", publicID),
		Details: map[string]any{"category_public_id": publicID},
	}
}

func NewInsufficientStockError(productName string, requested, available int) *AppError {
	return &AppError{
		Code:    CodeInsufficientStock,
		Name:    "insufficient_stock",
		Message: fmt.Sprintf("not enough stock for %s: requested %d, available %d", productName, requested, available),
		Details: map[string]any{"requested": requested, "available": available},
	}
}

func NewDuplicateCategoryError(name string) *AppError {
	return &AppError{
		Code:    CodeDuplicateCategory,
		Name:    "duplicate_category",
		Message: fmt.Sprintf("category %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

func NewAlreadyShippedError(current Status) *AppError {
	return &AppError{
		Code:    CodeAlreadyShipped,
		Name:    "already_shipped",
		Message: fmt.Sprintf("order is already %s", current),
		Details: map[string]any{"status": string(current)},
	}
}

func NewAlreadyCancelledError() *AppError {
	return &AppError{
		Code:    CodeAlreadyCancelled,
		Name:    "already_cancelled",
		Message: "order is already cancelled",
		Details: map[string]any{"status": string(Status_Cancelled)},
	}
}

func NewCannotShipCancelledError() *AppError {
	return &AppError{
		Code:    CodeCannotShipCancelled,
		Name:    "cannot_ship_cancelled",
		Message: "cannot ship a cancelled order",
		Details: map[string]any{"status": string(Status_Cancelled)},
	}
}

func NewShippedCancelNeedsReasonError() *AppError {
	return &AppError{
		Code:    CodeShippedCancelNeedsReason,
		Name:    "shipped_cancel_requires_reason",
		Message: "cancelling a shipped order requires a reason",
		Details: map[string]any{"status": string(Status_Shipped)},
	}
}

func NewNotAuthorizedError() *AppError {
	return &AppError{
		Code:    CodeNotAuthorized,
		Name:    "not_authorized",
		Message: "not authorized to access this order",
	}
}

func NewPersistenceError(err error) *AppError {
	return &AppError{
		Code:    CodePersistence,
		Name:    "persistence",
		Message: "persistence failure",
		Err:     err,
	}
}

func GetErrorCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

func IsCode(err error, code int) bool {
	return GetErrorCode(err) == code
}
