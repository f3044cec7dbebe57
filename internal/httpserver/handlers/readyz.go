package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/vidmark/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz answers 503 while the key-value store is unreachable.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if status := checkStore(r.Context(), d); !status.OK {
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Error: status.Error})
			return
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
