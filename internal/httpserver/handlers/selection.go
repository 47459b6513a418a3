package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
)

type searchRequest struct {
	Query string `json:"query"`
}

type selectResponse struct {
	SelectMode bool     `json:"selectMode"`
	Selection  []string `json:"selection"`
	Selected   bool     `json:"selected,omitempty"` // toggled id is now selected
}

// SetSearch replaces the search query and returns the new filtered view.
func SetSearch(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid JSON body")
			return
		}
		d.Shelf.SetSearchQuery(req.Query)
		writeJSON(w, d.Logger, http.StatusOK, currentView(d.Shelf))
	}
}

// ToggleSelectMode enters or leaves select mode. Leaving clears the selection.
func ToggleSelectMode(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mode := d.Shelf.ToggleSelectMode()
		writeJSON(w, d.Logger, http.StatusOK, selectResponse{
			SelectMode: mode,
			Selection:  nonNilIDs(d.Shelf.Selection()),
		})
	}
}

// ToggleSelect adds or removes {id} from the selection. Outside select
// mode nothing changes.
func ToggleSelect(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		selected := d.Shelf.ToggleSelectBookmark(chi.URLParam(r, "id"))
		writeJSON(w, d.Logger, http.StatusOK, selectResponse{
			SelectMode: d.Shelf.SelectMode(),
			Selection:  nonNilIDs(d.Shelf.Selection()),
			Selected:   selected,
		})
	}
}

// BulkTrash moves the selected active bookmarks to the trash.
func BulkTrash(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, applied := d.Shelf.BulkMoveToTrash()
		writeMutation(w, d, ev, applied)
	}
}

// BulkArchive moves the selected active bookmarks to the archive.
func BulkArchive(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, applied := d.Shelf.BulkMoveToArchive()
		writeMutation(w, d, ev, applied)
	}
}
