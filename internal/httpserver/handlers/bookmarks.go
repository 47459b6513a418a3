package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/shelf"
)

type shelfView struct {
	Query      string            `json:"query"`
	SelectMode bool              `json:"selectMode"`
	Selection  []string          `json:"selection"`
	Counts     shelf.Counts      `json:"counts"`
	Bookmarks  []domain.Bookmark `json:"bookmarks"`
}

type addRequest struct {
	URL string `json:"url"`
}

type addResponse struct {
	mutationResponse
	Bookmark domain.Bookmark `json:"bookmark"`
}

type bookmarkResponse struct {
	Bookmark   domain.Bookmark  `json:"bookmark"`
	Collection shelf.Collection `json:"collection"`
}

func currentView(sh *shelf.Store) shelfView {
	return shelfView{
		Query:      sh.SearchQuery(),
		SelectMode: sh.SelectMode(),
		Selection:  nonNilIDs(sh.Selection()),
		Counts:     sh.Counts(),
		Bookmarks:  nonNilBookmarks(sh.Filtered()),
	}
}

// ListBookmarks returns the filtered active collection with the view state.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Logger, http.StatusOK, currentView(d.Shelf))
	}
}

// AddBookmark inserts a placeholder and returns it right away with 202:
// the preview patch lands later.
func AddBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid JSON body")
			return
		}

		b, ev, err := d.Shelf.Add(req.URL)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidURL) {
				writeError(w, d.Logger, http.StatusBadRequest, err.Error())
				return
			}
			d.Logger.Error("failed to add bookmark", logger.Error(err))
			writeError(w, d.Logger, http.StatusInternalServerError, "failed to add bookmark")
			return
		}

		d.Logger.Info("bookmark added",
			logger.String("id", b.ID),
			logger.String("domain", b.Domain))

		writeJSON(w, d.Logger, http.StatusAccepted, addResponse{
			mutationResponse: mutation(ev, true),
			Bookmark:         b,
		})
	}
}

// GetBookmark returns a bookmark from whichever collection holds it.
func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, c, ok := d.Shelf.Get(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, d.Logger, http.StatusNotFound, "bookmark not found")
			return
		}
		writeJSON(w, d.Logger, http.StatusOK, bookmarkResponse{Bookmark: b, Collection: c})
	}
}

// Transition applies a single-bookmark move (trash, archive, restore...)
// to the {id} URL parameter.
func Transition(d deps.Deps, move func(sh *shelf.Store, id string) (shelf.Event, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ev, applied := move(d.Shelf, id)
		if !applied {
			d.Logger.Debug("transition not applied", logger.String("id", id), logger.String("path", r.URL.Path))
		}
		writeMutation(w, d, ev, applied)
	}
}

func TrashBookmark(d deps.Deps) http.HandlerFunc {
	return Transition(d, (*shelf.Store).MoveToTrash)
}

func ArchiveBookmark(d deps.Deps) http.HandlerFunc {
	return Transition(d, (*shelf.Store).MoveToArchive)
}

func RestoreBookmark(d deps.Deps) http.HandlerFunc {
	return Transition(d, (*shelf.Store).RestoreFromTrash)
}

func UnarchiveBookmark(d deps.Deps) http.HandlerFunc {
	return Transition(d, (*shelf.Store).RestoreFromArchive)
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return Transition(d, (*shelf.Store).PermanentlyDelete)
}

// ListArchive returns the archived collection, in order.
func ListArchive(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Logger, http.StatusOK, nonNilBookmarks(d.Shelf.Archived()))
	}
}

// ListTrash returns the trashed collection, in order.
func ListTrash(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Logger, http.StatusOK, nonNilBookmarks(d.Shelf.Trashed()))
	}
}

func nonNilBookmarks(list []domain.Bookmark) []domain.Bookmark {
	if list == nil {
		return []domain.Bookmark{}
	}
	return list
}

func nonNilIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
