package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/stockroom/internal/domain/inventory"
	"github.com/xenking/stockroom/internal/domain/product"
)

const (
	getDocumentSQL = `SELECT body FROM inventory_documents WHERE name = $1`

	upsertDocumentSQL = `INSERT INTO inventory_documents (name, body, product_count, total_value, saved_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (name) DO UPDATE
		SET body = EXCLUDED.body,
			product_count = EXCLUDED.product_count,
			total_value = EXCLUDED.total_value,
			saved_at = EXCLUDED.saved_at`

	listDocumentsSQL = `SELECT name, product_count, total_value, saved_at
		FROM inventory_documents ORDER BY name`
)

var (
	_ inventory.Storage = (*DocumentStorage)(nil)
	_ inventory.Catalog = (*DocumentStorage)(nil)
)

// DocumentStorage implements inventory.Storage backed by PostgreSQL. Each
// document is one row keyed by name, with summary columns computed on write.
type DocumentStorage struct {
	pool *pgxpool.Pool
}

// NewDocumentStorage returns a DocumentStorage that uses the given pool.
func NewDocumentStorage(pool *pgxpool.Pool) *DocumentStorage {
	return &DocumentStorage{pool: pool}
}

// Read returns the body of the named document.
func (s *DocumentStorage) Read(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, errors.Wrap(inventory.ErrInvalidDocumentName, "empty name")
	}
	var body []byte
	if err := s.pool.QueryRow(ctx, getDocumentSQL, name).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inventory.ErrDocumentNotFound
		}
		return nil, errors.Wrapf(err, "get document %q", name)
	}
	return body, nil
}

// Write upserts the named document. Documents that do not decode are
// rejected before reaching the database.
func (s *DocumentStorage) Write(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return errors.Wrap(inventory.ErrInvalidDocumentName, "empty name")
	}
	products, err := product.DecodeDocument(data)
	if err != nil {
		return errors.Wrap(err, "summarize document")
	}
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.TotalValue())
	}

	if _, err := s.pool.Exec(ctx, upsertDocumentSQL, name, data, len(products), total); err != nil {
		return errors.Wrapf(err, "upsert document %q", name)
	}
	return nil
}

// Documents lists the stored documents ordered by name.
func (s *DocumentStorage) Documents(ctx context.Context) ([]inventory.DocumentInfo, error) {
	rows, err := s.pool.Query(ctx, listDocumentsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list documents")
	}
	return pgx.CollectRows(rows, scanDocumentInfo)
}

// Ping checks database connectivity.
func (s *DocumentStorage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanDocumentInfo(row pgx.CollectableRow) (inventory.DocumentInfo, error) {
	var info inventory.DocumentInfo
	err := row.Scan(&info.Name, &info.Products, &info.TotalValue, &info.SavedAt)
	return info, err
}
