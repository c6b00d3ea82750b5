package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/stockroom/internal/domain/product"
)

const maxRecordSize = 64 << 10

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	var products []product.Product
	switch tag := q.Get("type"); {
	case tag != "":
		kind, err := product.ParseKind(tag)
		if err != nil {
			return err
		}
		products = h.store.SearchByType(kind)
		if q.Has("name") {
			products = filterByName(products, q.Get("name"))
		}
	case q.Has("name"):
		products = h.store.SearchByName(q.Get("name"))
	default:
		products = h.store.List()
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for i := range products {
			encodeProduct(e, &products[i])
		}
		e.ArrEnd()
	})
	return nil
}

func filterByName(products []product.Product, name string) []product.Product {
	out := products[:0]
	for _, p := range products {
		if strings.EqualFold(p.Name, name) {
			out = append(out, p)
		}
	}
	return out
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) error {
	body, err := readBody(w, r, maxRecordSize)
	if err != nil {
		return err
	}
	p, err := product.DecodeRecord(body, h.newID)
	if err != nil {
		return err
	}
	if err := h.store.Add(p); err != nil {
		return err
	}

	w.Header().Set("Location", "/api/products/"+p.ID)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeProduct(e, p) })
	return nil
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) error {
	p, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, &p) })
	return nil
}

func (h *Handler) removeProduct(w http.ResponseWriter, r *http.Request) error {
	h.store.Remove(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) renderProduct(w http.ResponseWriter, r *http.Request) error {
	line, err := h.store.Render(r.PathValue("id"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("line", func(e *jx.Encoder) { e.Str(line) })
		})
	})
	return nil
}

func (h *Handler) sellProduct(w http.ResponseWriter, r *http.Request) error {
	return h.moveStock(w, r, h.store.Sell, h.sold)
}

func (h *Handler) restockProduct(w http.ResponseWriter, r *http.Request) error {
	return h.moveStock(w, r, h.store.Restock, h.restocked)
}

// moveStock applies a sell or restock request and responds with the updated
// product.
func (h *Handler) moveStock(
	w http.ResponseWriter,
	r *http.Request,
	apply func(id string, quantity int) error,
	counter metric.Int64Counter,
) error {
	id := r.PathValue("id")
	body, err := readBody(w, r, maxRecordSize)
	if err != nil {
		return err
	}
	quantity, err := decodeQuantity(body)
	if err != nil {
		return err
	}
	if err := apply(id, quantity); err != nil {
		return err
	}

	p, err := h.store.Get(id)
	if err != nil {
		return err
	}
	counter.Add(r.Context(), int64(quantity),
		metric.WithAttributes(attribute.String("product.type", string(p.Kind()))),
	)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, &p) })
	return nil
}

// encodeProduct writes the record of p extended with its total value.
func encodeProduct(e *jx.Encoder, p *product.Product) {
	e.ObjStart()
	p.EncodeFields(e)
	e.FieldStart("total_value")
	e.Num(jx.Num(p.TotalValue().String()))
	e.ObjEnd()
}

func decodeQuantity(body []byte) (int, error) {
	var (
		quantity int
		found    bool
	)
	err := jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		if key != "quantity" {
			return d.Skip()
		}
		v, err := d.Int()
		if err != nil {
			return err
		}
		quantity, found = v, true
		return nil
	})
	if err != nil {
		return 0, badRequest("invalid request body: %v", err)
	}
	if !found {
		return 0, badRequest("quantity is required")
	}
	return quantity, nil
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &requestError{status: http.StatusRequestEntityTooLarge, msg: err.Error()}
		}
		return nil, badRequest("read request body: %v", err)
	}
	return body, nil
}
