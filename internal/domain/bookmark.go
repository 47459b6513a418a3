package domain

import "time"

// Bookmark represents a saved URL.
//
// A bookmark lives in exactly one collection (active, archived or trashed)
// at any time. The collection is owned by the shelf, not by the bookmark.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the opaque unique identifier, generated when the bookmark is added.
	// It never changes, including across the preview patch.
	ID string `json:"id"`

	// URL is the absolute URL the bookmark points to.
	// Example: https://react.dev/learn
	URL string `json:"url"`

	// ─────────────────────────────
	// Display (patched by preview)
	// ─────────────────────────────

	// Title is the provider title, or a domain-derived placeholder.
	Title string `json:"title"`

	// Domain is the URL host without a leading "www.".
	// Example: react.dev
	Domain string `json:"domain"`

	// ImageURL is the preview image, if any.
	ImageURL string `json:"imageUrl,omitempty"`

	// Description is the preview description, if any.
	Description string `json:"description,omitempty"`

	// ─────────────────────────────
	// Transient
	// ─────────────────────────────

	// IsLoading is true only while the preview fetch for this bookmark is pending.
	IsLoading bool `json:"isLoading"`
}

// Preview is the best-effort metadata returned for a URL.
type Preview struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
	URL         string `json:"url"`
	Domain      string `json:"domain"`
}

// Snapshot is a point-in-time copy of the three collections, in order.
// TrashedAt records when each trashed bookmark entered the trash.
type Snapshot struct {
	Active    []Bookmark           `json:"active"`
	Archived  []Bookmark           `json:"archived"`
	Trashed   []Bookmark           `json:"trashed"`
	TrashedAt map[string]time.Time `json:"trashedAt,omitempty"`
}

// Len returns the total number of bookmarks in the snapshot.
func (s Snapshot) Len() int {
	return len(s.Active) + len(s.Archived) + len(s.Trashed)
}

// ImportEntry is a bookmark coming from an external file (seed or export).
// Title may be empty.
type ImportEntry struct {
	URL   string
	Title string
}
