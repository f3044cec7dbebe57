package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/vidmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vidmark/internal/httpserver/handlers"
)

func init() { Register(registerPermissions) }

func registerPermissions(r chi.Router, d deps.Deps) {
	r.Get("/api/permissions", handlers.ListPermissions(d))
	r.Put("/api/permissions/{capability}", handlers.GrantPermission(d))
	r.Delete("/api/permissions/{capability}", handlers.RevokePermission(d))
}
