// Package inventory implements the aggregate root that owns every tracked
// product and the whole-document persistence round-trip.
package inventory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/stockroom/internal/domain/product"
)

// Store maps product identifiers to products and is the only place where
// products are mutated. One mutex guards the whole store, so every operation
// runs to completion before the next one starts.
//
// Products handed to Add are copied in and products returned from queries
// are copies; callers never alias stored products.
type Store struct {
	mu       sync.Mutex
	products map[string]*product.Product
	order    []string // insertion order of ids

	now    func() time.Time
	lg     *zap.Logger
	tracer trace.Tracer
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger for mutations and persistence.
func WithLogger(lg *zap.Logger) Option {
	return func(s *Store) { s.lg = lg }
}

// WithTracerProvider enables tracing of Save and Load.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Store) { s.tracer = tp.Tracer("github.com/xenking/stockroom/internal/domain/inventory") }
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		products: make(map[string]*product.Product),
		now:      time.Now,
		lg:       zap.NewNop(),
		tracer:   noop.NewTracerProvider().Tracer(""),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Add inserts p. An identifier already present fails with
// *DuplicateProductError and leaves the store unchanged. Products must carry
// variant details; use the product constructors.
func (s *Store) Add(p *product.Product) error {
	if p == nil || p.Details == nil {
		return errors.Wrap(product.ErrInvalidProductData, "product without variant details")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[p.ID]; ok {
		return &DuplicateProductError{ProductID: p.ID}
	}
	s.insertLocked(p)

	s.lg.Debug("Product added", zap.String("product_id", p.ID), zap.String("type", string(p.Kind())))
	return nil
}

func (s *Store) insertLocked(p *product.Product) {
	cp := *p
	s.products[p.ID] = &cp
	s.order = append(s.order, p.ID)
}

// Remove deletes the product with the given id. Removing an absent id is a
// no-op; the result reports whether anything was removed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return false
	}
	delete(s.products, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })

	s.lg.Debug("Product removed", zap.String("product_id", id))
	return true
}

// Get returns a copy of the product with the given id.
func (s *Store) Get(id string) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return product.Product{}, &ProductNotFoundError{ProductID: id}
	}
	return *p, nil
}

// List returns every product in insertion order.
func (s *Store) List() []product.Product {
	return s.filter(func(*product.Product) bool { return true })
}

// SearchByName returns the products whose name equals name, ignoring case.
func (s *Store) SearchByName(name string) []product.Product {
	return s.filter(func(p *product.Product) bool { return strings.EqualFold(p.Name, name) })
}

// SearchByType returns the products of the given variant.
func (s *Store) SearchByType(kind product.Kind) []product.Product {
	return s.filter(func(p *product.Product) bool { return p.Kind() == kind })
}

func (s *Store) filter(match func(*product.Product) bool) []product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]product.Product, 0, len(s.order))
	for _, id := range s.order {
		if p := s.products[id]; match(p) {
			out = append(out, *p)
		}
	}
	return out
}

// Len returns the number of products.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

// Sell removes quantity units of the given product from stock.
func (s *Store) Sell(id string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return &ProductNotFoundError{ProductID: id}
	}
	if err := p.Sell(quantity); err != nil {
		return err
	}

	s.lg.Debug("Product sold", zap.String("product_id", id), zap.Int("quantity", quantity), zap.Int("stock", p.Stock))
	return nil
}

// Restock adds quantity units of the given product to stock.
func (s *Store) Restock(id string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return &ProductNotFoundError{ProductID: id}
	}
	if err := p.Restock(quantity); err != nil {
		return err
	}

	s.lg.Debug("Product restocked", zap.String("product_id", id), zap.Int("quantity", quantity), zap.Int("stock", p.Stock))
	return nil
}

// TotalValue returns the summed value of every product in stock.
func (s *Store) TotalValue() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, p := range s.products {
		total = total.Add(p.TotalValue())
	}
	return total
}

// RemoveExpired deletes every Grocery product expired at call time and
// returns the removed ids in insertion order.
func (s *Store) RemoveExpired() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var removed []string
	s.order = slices.DeleteFunc(s.order, func(id string) bool {
		if !s.products[id].IsExpired(now) {
			return false
		}
		delete(s.products, id)
		removed = append(removed, id)
		return true
	})

	if len(removed) > 0 {
		s.lg.Info("Expired products removed", zap.Strings("product_ids", removed))
	}
	return removed
}

// Render returns the one-line summary of the product with the given id,
// evaluated against the store clock.
func (s *Store) Render(id string) (string, error) {
	p, err := s.Get(id)
	if err != nil {
		return "", err
	}
	return p.Render(s.now()), nil
}

// Snapshot encodes every product, in insertion order, as a document.
func (s *Store) Snapshot() []byte {
	return product.EncodeDocument(s.List())
}

// Restore decodes a document and adds every record it contains. The whole
// document is validated first: an invalid record or a duplicate id, whether
// inside the document or against the store, fails the call and adds nothing.
func (s *Store) Restore(data []byte) (int, error) {
	products, err := product.DecodeDocument(data)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]int, len(products))
	for i, p := range products {
		if _, ok := seen[p.ID]; ok {
			return 0, errors.Wrapf(&DuplicateProductError{ProductID: p.ID}, "record %d", i)
		}
		seen[p.ID] = i
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range products {
		if _, ok := s.products[p.ID]; ok {
			return 0, errors.Wrapf(&DuplicateProductError{ProductID: p.ID}, "record %d", seen[p.ID])
		}
	}
	for _, p := range products {
		s.insertLocked(p)
	}
	return len(products), nil
}

// Save writes every product to dst as the named document.
func (s *Store) Save(ctx context.Context, dst Storage, name string) (err error) {
	ctx, span := s.tracer.Start(ctx, "inventory.Save",
		trace.WithAttributes(attribute.String("inventory.document", name)),
	)
	defer func() { endSpan(span, err) }()

	data := s.Snapshot()
	if err := dst.Write(ctx, name, data); err != nil {
		return &StorageError{Op: "write", Name: name, Err: err}
	}

	s.lg.Info("Inventory saved", zap.String("document", name), zap.Int("bytes", len(data)))
	return nil
}

// Load reads the named document from src and adds its products with the
// same all-or-nothing semantics as Restore.
func (s *Store) Load(ctx context.Context, src Storage, name string) (n int, err error) {
	ctx, span := s.tracer.Start(ctx, "inventory.Load",
		trace.WithAttributes(attribute.String("inventory.document", name)),
	)
	defer func() { endSpan(span, err) }()

	data, err := src.Read(ctx, name)
	if err != nil {
		return 0, &StorageError{Op: "read", Name: name, Err: err}
	}

	n, err = s.Restore(data)
	if err != nil {
		return 0, errors.Wrapf(err, "load %q", name)
	}
	span.SetAttributes(attribute.Int("inventory.products", n))

	s.lg.Info("Inventory loaded", zap.String("document", name), zap.Int("products", n))
	return n, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
