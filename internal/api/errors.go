package api

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/stockroom/internal/domain/inventory"
	"github.com/xenking/stockroom/internal/domain/product"
)

// requestError is a malformed request detected by the API layer itself.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

// handlerFunc is an HTTP handler whose errors are turned into error bodies.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func handle(fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		status, msg := statusOf(err), err.Error()
		lg := zctx.From(r.Context())
		switch {
		case status == http.StatusInternalServerError:
			lg.Error("Request failed", zap.Error(err))
			msg = "internal server error"
		case status > http.StatusInternalServerError:
			lg.Error("Request failed", zap.Error(err))
		default:
			lg.Debug("Request rejected", zap.Int("status", status), zap.Error(err))
		}
		writeError(w, status, msg)
	})
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var reqErr *requestError
	var storageErr *inventory.StorageError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.status
	case errors.Is(err, product.ErrInvalidProductData),
		errors.Is(err, product.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrInvalidDocumentName):
		return http.StatusBadRequest
	case errors.Is(err, inventory.ErrProductNotFound),
		errors.Is(err, inventory.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrDuplicateProduct),
		errors.Is(err, product.ErrInsufficientStock):
		return http.StatusConflict
	case errors.As(err, &storageErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := &jx.Encoder{}
	encode(e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
