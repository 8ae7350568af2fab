package utils

import (
	"encoding/json"
	"log"
	"net/http"
)

// APIResponse is the envelope every handler writes. Success mirrors the HTTP
// status class so clients can branch without inspecting codes; Data is
// omitted when a handler has nothing beyond the message.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		// headers are already out, nothing left to do but log
		log.Printf("[response] encode failed: %v", err)
	}
}
