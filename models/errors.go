package models

import "errors"

// Error kinds shared across controllers. Handlers translate these to HTTP
// statuses; GORM's ErrRecordNotFound is mapped to ErrNotFound at the
// controller boundary.
var (
	ErrNotFound        = errors.New("record not found")
	ErrOutOfStock      = errors.New("product out of stock")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrOrderNotPayable = errors.New("order is not awaiting payment")
)
