package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"medshare/pkg/domain"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrKindNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrKindValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrKindConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrKindForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrKindUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed", "request_id", RequestID(r.Context()), "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}

// decodeBody reads a JSON object body. An empty body decodes to an empty map.
func decodeBody(r *http.Request) (map[string]any, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, domain.ValidationError{Reason: fmt.Sprintf("read body: %v", err)}
	}
	if len(raw) > maxBodyBytes {
		return nil, domain.ValidationError{Reason: "request body too large"}
	}
	out := map[string]any{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, domain.ValidationError{Reason: "body must be a JSON object"}
	}
	return out, nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return id, nil
}

// optionalID reads an integer from the body, accepting the first key present.
// Missing keys yield 0.
func optionalID(body map[string]any, keys ...string) (int64, error) {
	for _, key := range keys {
		v, ok := body[key]
		if !ok || v == nil {
			continue
		}
		id, ok := domain.AsInt(v)
		if !ok || id < 0 {
			return 0, domain.ValidationError{Field: key, Reason: "must be a positive integer"}
		}
		return id, nil
	}
	return 0, nil
}
