// internal/respond/respond.go
//
// JSON response helpers shared by every component.
//
// Context
// -------
// Components return data with JSON() and failures with Error().  Error()
// owns the apperr → HTTP status mapping so the taxonomy is enforced in one
// place:
//
//	ErrUnauthenticated → 401      ErrNotFound   → 404
//	ErrForbidden       → 403      ErrConflict   → 409
//	*ValidationError   → 400      anything else → 500 (logged, hidden)
//
// Body shape: {"code": 404, "message": "not found", "fields": {...}}.
//
// Notes
// -----
// • Decode caps bodies at 1 MiB and reports malformed JSON as a 400.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/yanizio/sitedesk/internal/apperr"
)

const maxBody = 1 << 20

// Problem is the error envelope.
type Problem struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("respond encode", zap.Error(err))
	}
}

// NoContent writes 204.
func NoContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

// Error maps err onto a status and writes the Problem envelope.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	p := toProblem(err)
	if p.Code == http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
	JSON(w, p.Code, p)
}

func toProblem(err error) Problem {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		return Problem{Code: http.StatusBadRequest, Message: ve.Message, Fields: ve.Fields}
	case errors.Is(err, apperr.ErrUnauthenticated):
		return Problem{Code: http.StatusUnauthorized, Message: err.Error()}
	case errors.Is(err, apperr.ErrForbidden):
		return Problem{Code: http.StatusForbidden, Message: err.Error()}
	case errors.Is(err, apperr.ErrNotFound):
		return Problem{Code: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, apperr.ErrConflict):
		return Problem{Code: http.StatusConflict, Message: err.Error()}
	default:
		return Problem{Code: http.StatusInternalServerError, Message: http.StatusText(http.StatusInternalServerError)}
	}
}

// Decode reads a JSON body into dst.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &apperr.ValidationError{Message: "request body is empty"}
		}
		return &apperr.ValidationError{Message: "malformed JSON: " + err.Error()}
	}
	return nil
}
