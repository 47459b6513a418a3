package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/handlers"
)

func init() { Register(registerSettings) }

func registerSettings(r chi.Router, d deps.Deps) {
	api := r.With(guard(d)...)
	api.Get("/api/settings/preview-key", handlers.GetPreviewKey(d))
	api.Put("/api/settings/preview-key", handlers.PutPreviewKey(d))
	api.Delete("/api/settings/preview-key", handlers.DeletePreviewKey(d))
}
