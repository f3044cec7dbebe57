package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/vidmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/vidmark/internal/httpserver/handlers"
)

func init() { Register(registerBookmarks, middleware.AllowContentType("application/json")) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Get("/", handlers.ListBookmarks(d))
		r.Post("/", handlers.CreateBookmark(d))
		r.Put("/", handlers.UpdateBookmark(d))
		r.Delete("/", handlers.DeleteAllBookmarks(d))

		r.Get("/item", handlers.GetBookmark(d))
		r.Delete("/item", handlers.DeleteBookmark(d))

		r.Post("/query", handlers.QueryBookmarks(d))
		r.Post("/check", handlers.CheckBookmark(d))
		r.Post("/toggle", handlers.ToggleBookmark(d))
		r.Post("/import", handlers.ImportBookmarks(d))
		r.Post("/sweep", handlers.SweepBookmarks(d))
	})
}
