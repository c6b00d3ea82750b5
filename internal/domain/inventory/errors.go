package inventory

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrDuplicateProduct is matched by *DuplicateProductError.
	ErrDuplicateProduct = errors.New("duplicate product")
	// ErrProductNotFound is matched by *ProductNotFoundError.
	ErrProductNotFound = errors.New("product not found")
	// ErrDocumentNotFound is returned by Storage implementations when the
	// requested document does not exist.
	ErrDocumentNotFound = errors.New("inventory document not found")
	// ErrInvalidDocumentName is returned by Storage implementations for names
	// they cannot store a document under.
	ErrInvalidDocumentName = errors.New("invalid inventory document name")
)

// DuplicateProductError indicates an add with an identifier already present.
type DuplicateProductError struct {
	ProductID string
}

func (e *DuplicateProductError) Error() string {
	return fmt.Sprintf("duplicate product id %s", e.ProductID)
}

func (e *DuplicateProductError) Is(target error) bool {
	return target == ErrDuplicateProduct
}

// ProductNotFoundError indicates an operation on an absent identifier.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrProductNotFound
}

// StorageError wraps a failure of the Storage collaborator.
type StorageError struct {
	Op   string
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s inventory documents: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s inventory document %q: %v", e.Op, e.Name, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
