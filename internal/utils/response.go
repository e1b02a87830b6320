package utils

import (
	"encoding/json"
	"net/http"
)

// Payload is the envelope every JSON response uses.
type Payload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSONResponse sends a JSON response with given status, success flag, and payload
func JSONResponse(w http.ResponseWriter, status int, payload Payload) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// ErrorResponse sends a failed Payload carrying only msg.
func ErrorResponse(w http.ResponseWriter, status int, msg string) {
	JSONResponse(w, status, Payload{Success: false, Message: msg})
}
