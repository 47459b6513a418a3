package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/handlers"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	api := r.With(guard(d)...)

	api.Get("/api/bookmarks", handlers.ListBookmarks(d))
	api.With(writeLimit(d)).Post("/api/bookmarks", handlers.AddBookmark(d))
	api.Get("/api/bookmarks/{id}", handlers.GetBookmark(d))
	api.Delete("/api/bookmarks/{id}", handlers.DeleteBookmark(d))
	api.Post("/api/bookmarks/{id}/trash", handlers.TrashBookmark(d))
	api.Post("/api/bookmarks/{id}/archive", handlers.ArchiveBookmark(d))
	api.Post("/api/bookmarks/{id}/restore", handlers.RestoreBookmark(d))
	api.Post("/api/bookmarks/{id}/unarchive", handlers.UnarchiveBookmark(d))

	api.Get("/api/archive", handlers.ListArchive(d))
	api.Get("/api/trash", handlers.ListTrash(d))

	api.Put("/api/search", handlers.SetSearch(d))
	api.Post("/api/select/mode", handlers.ToggleSelectMode(d))
	api.Post("/api/select/{id}", handlers.ToggleSelect(d))
	api.Post("/api/bulk/trash", handlers.BulkTrash(d))
	api.Post("/api/bulk/archive", handlers.BulkArchive(d))
}
