// Package respond writes the JSON bodies shared by every portal handler.
package respond

import (
	"encoding/json"
	"net/http"
)

// MessageBody is the error shape clients see: {"message": "..."}.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Message writes {"message": msg} with the given status.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageBody{Message: msg})
}

// InternalError writes a generic 500 body. Callers log the underlying error.
func InternalError(w http.ResponseWriter) {
	Message(w, http.StatusInternalServerError, "internal error")
}
