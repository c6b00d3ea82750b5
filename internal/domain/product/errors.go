package product

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrInvalidProductData is returned for malformed product input: unknown
	// type tags, bad dates, missing fields or out-of-range values.
	ErrInvalidProductData = errors.New("invalid product data")
	// ErrInsufficientStock is matched by *InsufficientStockError.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrInvalidQuantity is matched by *InvalidQuantityError.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// InsufficientStockError indicates a sale larger than the available stock.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// InvalidQuantityError indicates a non-positive sale or a negative restock.
type InvalidQuantityError struct {
	ProductID string
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for product %s", e.Quantity, e.ProductID)
}

func (e *InvalidQuantityError) Is(target error) bool {
	return target == ErrInvalidQuantity
}
