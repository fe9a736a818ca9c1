package httpadapter

import (
	"encoding/json"
	"net/http"
)

// envelope is the uniform response shape. Handlers either fill Data on
// success or Error (plus optional Details) on failure, never both.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, envelope{Success: false, Error: message, Details: details})
}
