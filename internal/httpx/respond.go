package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-marketplace-orders/internal/apperr"
	"github.com/ariefcatur/go-marketplace-orders/internal/logging"
	"github.com/ariefcatur/go-marketplace-orders/internal/pagination"
)

type dataBody struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// listPage is the data of a paginated response.
type listPage struct {
	Items      any             `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Responder writes the API envelope. Dev exposes internal error text.
type Responder struct {
	Dev bool
}

func (Responder) Data(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, dataBody{Success: true, Data: data})
}

func (Responder) List(w http.ResponseWriter, items any, meta pagination.Meta) {
	writeJSON(w, http.StatusOK, dataBody{Success: true, Data: listPage{Items: items, Pagination: meta}})
}

// Error maps err to its status and a caller-safe message.
func (rs Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	body := errorBody{Error: apperr.PublicMessage(err), Details: apperr.DetailsOf(err)}

	if kind == apperr.KindInternal {
		logging.FromContext(r.Context()).Error("request_failed", zap.Error(err))
		body.Details = nil
		if rs.Dev {
			body.Details = err.Error()
		}
	}
	writeJSON(w, kind.HTTPStatus(), body)
}

const maxBody = 1 << 20

// decodeJSON reads a JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("invalid JSON body")
	}
	return nil
}
