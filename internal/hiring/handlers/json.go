package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// decodeJSON strictly decodes a single JSON object from r into v. Unknown
// fields and trailing data are rejected.
func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", e.ErrInvalidInput)
		}
		return fmt.Errorf("%w: malformed JSON: %v", e.ErrInvalidInput, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON object", e.ErrInvalidInput)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to an HTTP status and writes it as JSON.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := h.mapServiceError(err)
	if code == http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
	}
	body := errorBody{Error: msg}
	var verr *e.ValidationError
	if errors.As(err, &verr) {
		body.Error = "validation failed"
		body.Fields = verr.Fields
	}
	writeJSON(w, code, body)
}

func (h *Handler) mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, e.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, e.ErrDuplicate):
		return http.StatusConflict, err.Error()
	case errors.Is(err, e.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, e.ErrUnauthenticated):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, e.ErrClosed):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func pathUUID(params map[string]string, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(params[name])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", e.ErrInvalidInput, name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, e.NewValidationError(map[string]string{name: "must be a number"})
	}
	return v, nil
}

func queryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}
