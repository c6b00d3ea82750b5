package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Storage reads and writes whole inventory documents by name.
type Storage interface {
	// Read returns the named document, or an error matching
	// ErrDocumentNotFound when it does not exist.
	Read(ctx context.Context, name string) ([]byte, error)
	// Write replaces the named document.
	Write(ctx context.Context, name string, data []byte) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// DocumentInfo summarizes a stored document.
type DocumentInfo struct {
	Name       string
	Products   int
	TotalValue decimal.Decimal
	SavedAt    time.Time
}

// Catalog is implemented by storages that can enumerate their documents.
type Catalog interface {
	Documents(ctx context.Context) ([]DocumentInfo, error)
}
