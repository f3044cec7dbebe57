package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/vidmark/internal/browser"
	"github.com/MrSnakeDoc/vidmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vidmark/internal/options"
)

type componentStatus struct {
	OK         bool   `json:"ok"`
	Backend    string `json:"backend,omitempty"`
	Bookmarks  *int   `json:"bookmarks,omitempty"`
	LastChange string `json:"last_change,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Error      string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the store, the registry and the bookmark mirror.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := d.Registry.Len()
		lastChange := "never"
		if t := d.Registry.LastChange(); !t.IsZero() {
			lastChange = t.UTC().Format(time.RFC3339)
		}

		components := map[string]componentStatus{
			"store": checkStore(r.Context(), d),
			"registry": {
				OK:         true,
				Bookmarks:  &count,
				LastChange: lastChange,
			},
			"browser_bookmarks": checkMirror(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// determineMode is "critical" when the store is down and "degraded" when the
// mirror is enabled but cannot be used.
func determineMode(components map[string]componentStatus) string {
	if store, ok := components["store"]; ok && !store.OK {
		return "critical"
	}
	if mirror, ok := components["browser_bookmarks"]; ok && !mirror.OK {
		return "degraded"
	}
	return "operational"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	status := componentStatus{OK: true, Backend: d.StoreBackend}
	if d.StorePing == nil {
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.StorePing(ctx); err != nil {
		status.OK = false
		status.Error = err.Error()
	}
	return status
}

func checkMirror(ctx context.Context, d deps.Deps) componentStatus {
	if !d.Options.Bool(options.ManageBrowserBookmark) {
		return componentStatus{OK: true, Mode: "disabled"}
	}

	granted, err := d.Grants.Contains(ctx, browser.PermissionBookmarks)
	switch {
	case err != nil:
		return componentStatus{OK: false, Mode: "unknown", Error: err.Error()}
	case !granted:
		return componentStatus{OK: false, Mode: "permission-missing"}
	default:
		return componentStatus{OK: true, Mode: "mirroring"}
	}
}
