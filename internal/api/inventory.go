package api

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/xenking/stockroom/internal/domain/inventory"
)

const maxDocumentSize = 32 << 20

func (h *Handler) totalValue(w http.ResponseWriter, _ *http.Request) error {
	total := h.store.TotalValue()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("total_value", func(e *jx.Encoder) { e.Num(jx.Num(total.StringFixed(2))) })
		})
	})
	return nil
}

func (h *Handler) sweepExpired(w http.ResponseWriter, _ *http.Request) error {
	removed := h.store.RemoveExpired()
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("removed", func(e *jx.Encoder) { encodeStrings(e, removed) })
		})
	})
	return nil
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) error {
	name, err := h.documentName(w, r)
	if err != nil {
		return err
	}
	if err := h.store.Save(r.Context(), h.storage, name); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("document", func(e *jx.Encoder) { e.Str(name) })
			e.Field("products", func(e *jx.Encoder) { e.Int(h.store.Len()) })
		})
	})
	return nil
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) error {
	name, err := h.documentName(w, r)
	if err != nil {
		return err
	}
	n, err := h.store.Load(r.Context(), h.storage, name)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("document", func(e *jx.Encoder) { e.Str(name) })
			e.Field("loaded", func(e *jx.Encoder) { e.Int(n) })
		})
	})
	return nil
}

func (h *Handler) export(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.store.Snapshot())
	return nil
}

func (h *Handler) importDocument(w http.ResponseWriter, r *http.Request) error {
	body, err := readBody(w, r, maxDocumentSize)
	if err != nil {
		return err
	}
	n, err := h.store.Restore(body)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("loaded", func(e *jx.Encoder) { e.Int(n) })
		})
	})
	return nil
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) error {
	catalog, ok := h.storage.(inventory.Catalog)
	if !ok {
		return &requestError{status: http.StatusNotImplemented, msg: "storage backend cannot list documents"}
	}
	docs, err := catalog.Documents(r.Context())
	if err != nil {
		return &inventory.StorageError{Op: "list", Err: err}
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, doc := range docs {
			e.Obj(func(e *jx.Encoder) {
				e.Field("name", func(e *jx.Encoder) { e.Str(doc.Name) })
				e.Field("products", func(e *jx.Encoder) { e.Int(doc.Products) })
				e.Field("total_value", func(e *jx.Encoder) { e.Num(jx.Num(doc.TotalValue.StringFixed(2))) })
				e.Field("saved_at", func(e *jx.Encoder) { e.Str(doc.SavedAt.UTC().Format(time.RFC3339)) })
			})
		}
		e.ArrEnd()
	})
	return nil
}

// documentName reads the optional {"name": ...} body of save and load
// requests, falling back to the configured document.
func (h *Handler) documentName(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := readBody(w, r, maxRecordSize)
	if err != nil {
		return "", err
	}
	name := h.document
	if len(body) == 0 {
		return name, nil
	}

	err = jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		if key != "name" {
			return d.Skip()
		}
		v, err := d.Str()
		if err != nil {
			return err
		}
		if v != "" {
			name = v
		}
		return nil
	})
	if err != nil {
		return "", badRequest("invalid request body: %v", err)
	}
	return name, nil
}

func encodeStrings(e *jx.Encoder, values []string) {
	e.ArrStart()
	for _, v := range values {
		e.Str(v)
	}
	e.ArrEnd()
}
