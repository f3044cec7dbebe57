package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/vidmark/internal/browser"
	"github.com/MrSnakeDoc/vidmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vidmark/internal/logger"
)

type permissionsResponse struct {
	Granted []string `json:"granted"`
}

// knownCapabilities are the optional capabilities that can be granted.
var knownCapabilities = map[string]bool{
	browser.PermissionBookmarks: true,
}

func ListPermissions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		granted, err := d.Grants.List(r.Context())
		if err != nil {
			d.Logger.Warn("failed to list permissions", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load permissions")
			return
		}
		writeJSON(w, http.StatusOK, permissionsResponse{Granted: granted})
	}
}

// GrantPermission grants the {capability} path parameter.
func GrantPermission(d deps.Deps) http.HandlerFunc {
	return changePermission(d, true)
}

// RevokePermission revokes the {capability} path parameter. Bookmarks
// already mirrored are left in the tree.
func RevokePermission(d deps.Deps) http.HandlerFunc {
	return changePermission(d, false)
}

func changePermission(d deps.Deps, grant bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		capability := chi.URLParam(r, "capability")
		if !knownCapabilities[capability] {
			writeError(w, http.StatusNotFound, "unknown capability")
			return
		}

		var err error
		if grant {
			err = d.Grants.Grant(r.Context(), capability)
		} else {
			err = d.Grants.Revoke(r.Context(), capability)
		}
		if err != nil {
			d.Logger.Warn("failed to change permission",
				logger.String("capability", capability),
				logger.Bool("grant", grant),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save permissions")
			return
		}

		d.Logger.Info("permission changed",
			logger.String("capability", capability),
			logger.Bool("granted", grant))
		w.WriteHeader(http.StatusNoContent)
	}
}
