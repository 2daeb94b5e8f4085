package core

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorDetail is the error half of the response envelope.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type envelope struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// JSON writes data wrapped in the standard envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Data: data})
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error response. HTTPError values keep their status and
// key; anything else is masked as a generic 500 so internals never leak to
// clients.
func Error(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	detail := ErrorDetail{Code: ErrInternalServerError.Key}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		detail.Code = httpErr.Key
		detail.Message = http.StatusText(httpErr.Code)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: &detail})
}
