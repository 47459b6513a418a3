package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/handlers"
)

func init() { Register(registerTransfer) }

func registerTransfer(r chi.Router, d deps.Deps) {
	api := r.With(guard(d)...)
	api.Get("/api/export", handlers.Export(d))
	api.With(writeLimit(d)).Post("/api/import", handlers.Import(d))
	api.Post("/api/flush", handlers.Flush(d))
}
