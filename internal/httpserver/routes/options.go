package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/vidmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vidmark/internal/httpserver/handlers"
)

func init() { Register(registerOptions, middleware.AllowContentType("application/json")) }

func registerOptions(r chi.Router, d deps.Deps) {
	r.Get("/api/options", handlers.ListOptions(d))
	r.Put("/api/options/{id}", handlers.SetOption(d))
	r.Post("/api/options/import", handlers.ImportOptions(d))
}
