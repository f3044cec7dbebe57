package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/vidmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vidmark/internal/logger"
	"github.com/MrSnakeDoc/vidmark/internal/options"
)

type optionDefinition struct {
	ID                   string   `json:"id"`
	Kind                 string   `json:"kind"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	Default              any      `json:"default"`
	PermissionsToRequest []string `json:"permissionsToRequest,omitempty"`
}

type optionsResponse struct {
	Values      map[string]any     `json:"values"`
	Definitions []optionDefinition `json:"definitions"`
}

type setOptionRequest struct {
	Value any `json:"value"`
}

type importOptionsResponse struct {
	PermissionsToRequest []string `json:"permissionsToRequest"`
}

func ListOptions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defs := options.Definitions()
		out := make([]optionDefinition, 0, len(defs))
		for _, def := range defs {
			out = append(out, optionDefinition{
				ID:                   def.ID,
				Kind:                 string(def.Kind),
				Title:                def.Title,
				Description:          def.Description,
				Default:              def.Default,
				PermissionsToRequest: def.PermissionsToRequest,
			})
		}
		writeJSON(w, http.StatusOK, optionsResponse{
			Values:      d.Options.Export(),
			Definitions: out,
		})
	}
}

// SetOption stores {"value": ...} under the {id} path parameter.
func SetOption(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var req setOptionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		err := d.Options.Set(r.Context(), id, req.Value)
		switch {
		case errors.Is(err, options.ErrUnknownOption):
			writeError(w, http.StatusNotFound, err.Error())
			return
		case errors.Is(err, options.ErrInvalidValue):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			d.Logger.Warn("failed to save option",
				logger.String("option", id),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save option")
			return
		}

		value, _ := d.Options.Get(id)
		writeJSON(w, http.StatusOK, map[string]any{id: value})
	}
}

// ImportOptions applies a posted id => value map using ?mode=ignore|reset|false
// and returns the permissions the enabled options need.
func ImportOptions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode, err := options.ParseImportMode(r.URL.Query().Get("mode"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		var data map[string]any
		if err := decodeJSON(w, r, &data); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		perms, err := d.Options.Import(r.Context(), data, mode)
		if err != nil {
			d.Logger.Warn("failed to import options", logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save options")
			return
		}
		writeJSON(w, http.StatusOK, importOptionsResponse{PermissionsToRequest: perms})
	}
}
