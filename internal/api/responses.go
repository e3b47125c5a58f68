package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/snarg/stt-bench/internal/media"
	"github.com/snarg/stt-bench/internal/transcribe"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorResponse{Error: msg})
}

// DecodeJSON reads and decodes a JSON request body into v.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// QueryString extracts a non-empty string query parameter.
func QueryString(r *http.Request, name string) (string, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", false
	}
	return v, true
}

// QueryInt extracts an integer query parameter. Returns 0, false if missing
// or invalid.
func QueryInt(r *http.Request, name string) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// StatusForError maps pipeline error types to HTTP status codes: bad input
// is the caller's fault, oversized audio is a payload problem, and a failed
// provider call is an upstream failure.
func StatusForError(err error) int {
	var inputErr *transcribe.InputError
	if errors.As(err, &inputErr) {
		return http.StatusBadRequest
	}
	var sizeErr *media.SizeError
	if errors.As(err, &sizeErr) {
		return http.StatusRequestEntityTooLarge
	}
	var provErr *transcribe.ProviderError
	if errors.As(err, &provErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
