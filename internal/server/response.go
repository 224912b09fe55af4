package server

import (
	"encoding/json"
	"net/http"

	"github.com/desertthunder/spindle/internal/services"
)

// writeJSON serializes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeOutcome writes a normalized outcome at its embedded status code.
func writeOutcome(w http.ResponseWriter, out services.Outcome) {
	writeJSON(w, out.StatusCode(), out)
}
