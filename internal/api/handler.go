// Package api exposes the inventory store over a JSON HTTP API.
package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/xenking/stockroom/internal/domain/inventory"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// Document is the document name used by save and load requests that do
	// not name one.
	Document string
}

// Option configures a Handler.
type Option func(*options)

type options struct {
	meterProvider metric.MeterProvider
	newID         func() string
}

// WithMeterProvider sets the provider for the stock movement counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// WithIDGenerator overrides the generator of ids for products added
// without one.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// Handler serves the inventory API on top of a store and the storage backend
// used for save and load.
type Handler struct {
	store    *inventory.Store
	storage  inventory.Storage
	document string
	newID    func() string

	sold      metric.Int64Counter
	restocked metric.Int64Counter
}

// NewHandler constructs a Handler.
func NewHandler(cfg Config, store *inventory.Store, storage inventory.Storage, opts ...Option) (*Handler, error) {
	o := options{
		meterProvider: noop.NewMeterProvider(),
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter("github.com/xenking/stockroom/internal/api")
	sold, err := meter.Int64Counter("stockroom.units.sold",
		metric.WithDescription("Units removed from stock by sales"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create sold counter")
	}
	restocked, err := meter.Int64Counter("stockroom.units.restocked",
		metric.WithDescription("Units added to stock"),
		metric.WithUnit("{unit}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create restocked counter")
	}

	return &Handler{
		store:     store,
		storage:   storage,
		document:  cfg.Document,
		newID:     o.newID,
		sold:      sold,
		restocked: restocked,
	}, nil
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/products", handle(h.listProducts))
	mux.Handle("POST /api/products", handle(h.addProduct))
	mux.Handle("GET /api/products/{id}", handle(h.getProduct))
	mux.Handle("DELETE /api/products/{id}", handle(h.removeProduct))
	mux.Handle("GET /api/products/{id}/render", handle(h.renderProduct))
	mux.Handle("POST /api/products/{id}/sell", handle(h.sellProduct))
	mux.Handle("POST /api/products/{id}/restock", handle(h.restockProduct))

	mux.Handle("GET /api/inventory/value", handle(h.totalValue))
	mux.Handle("POST /api/inventory/sweep-expired", handle(h.sweepExpired))
	mux.Handle("POST /api/inventory/save", handle(h.save))
	mux.Handle("POST /api/inventory/load", handle(h.load))
	mux.Handle("GET /api/inventory/export", handle(h.export))
	mux.Handle("POST /api/inventory/import", handle(h.importDocument))
	mux.Handle("GET /api/inventory/documents", handle(h.listDocuments))
}
