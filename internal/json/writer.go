package json

import (
	"encoding/json"
	"net/http"

	"github.com/dgellow/nexusquery/internal/log"
)

// ErrorResponse is the backend's error body. Validation failures carry a
// structured detail; everything else a string.
type ErrorResponse struct {
	Detail any `json:"detail"`
}

// WriteResponse writes a JSON response with the given status code
func WriteResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.LogError("Failed to encode JSON response: %v", err)
		return err
	}
	return nil
}

// Write writes a JSON response with 200 OK status
func Write(w http.ResponseWriter, data any) error {
	return WriteResponse(w, http.StatusOK, data)
}

// WriteError writes a {"detail": ...} error response
func WriteError(w http.ResponseWriter, statusCode int, detail any) {
	if err := WriteResponse(w, statusCode, ErrorResponse{Detail: detail}); err != nil {
		// Fallback to plain text error if JSON encoding fails
		http.Error(w, http.StatusText(statusCode), statusCode)
	}
}

// WriteUnauthorized writes a 401 with a bearer challenge.
func WriteUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteError(w, http.StatusUnauthorized, detail)
}

func WriteBadRequest(w http.ResponseWriter, detail string) {
	WriteError(w, http.StatusBadRequest, detail)
}

func WriteNotFound(w http.ResponseWriter, detail string) {
	WriteError(w, http.StatusNotFound, detail)
}

func WriteInternalServerError(w http.ResponseWriter, detail string) {
	WriteError(w, http.StatusInternalServerError, detail)
}
