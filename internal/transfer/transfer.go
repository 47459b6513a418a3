// Package transfer moves bookmarks in and out of linkshelf: a JSON backup
// document and the Netscape bookmark file every browser imports and exports.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
)

// Format is an export/import file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// ErrUnknownFormat is returned for a format other than json or html.
var ErrUnknownFormat = errors.New("unknown format")

// DocumentVersion is the current JSON document version.
const DocumentVersion = 1

// Document is the JSON export layout.
type Document struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exportedAt"`
	Active     []domain.Bookmark `json:"active"`
	Archived   []domain.Bookmark `json:"archived"`
	Trashed    []domain.Bookmark `json:"trashed"`
}

// ParseFormat accepts "json" (the default when empty) and "html".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "html", "netscape":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "application/json"
}

// Filename builds a download name such as "my-links-2026-10-15.html".
func Filename(title string, f Format, at time.Time) string {
	base := slug.Make(title)
	if base == "" {
		base = "linkshelf-export"
	}
	return base + "-" + at.Format("2006-01-02") + "." + string(f)
}

// Export writes snap to w in format f.
func Export(w io.Writer, snap domain.Snapshot, f Format, at time.Time) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, snap, at)
	case FormatHTML:
		return WriteHTML(w, snap, at)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// WriteJSON writes the full snapshot, trash included.
func WriteJSON(w io.Writer, snap domain.Snapshot, at time.Time) error {
	doc := Document{
		Version:    DocumentVersion,
		ExportedAt: at.UTC(),
		Active:     nonNil(snap.Active),
		Archived:   nonNil(snap.Archived),
		Trashed:    nonNil(snap.Trashed),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}

// Import reads entries from r in format f.
func Import(r io.Reader, f Format) ([]domain.ImportEntry, error) {
	switch f {
	case FormatJSON:
		return ReadJSON(r)
	case FormatHTML:
		return ReadHTML(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// ReadJSON reads a JSON export. Active bookmarks come first, then archived
// ones; trashed bookmarks are not imported.
func ReadJSON(r io.Reader) ([]domain.ImportEntry, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json import: %w", err)
	}
	if doc.Version > DocumentVersion {
		return nil, fmt.Errorf("unsupported document version %d", doc.Version)
	}

	entries := make([]domain.ImportEntry, 0, len(doc.Active)+len(doc.Archived))
	for _, list := range [][]domain.Bookmark{doc.Active, doc.Archived} {
		for _, b := range list {
			entries = append(entries, domain.ImportEntry{URL: b.URL, Title: b.Title})
		}
	}
	return entries, nil
}

func nonNil(list []domain.Bookmark) []domain.Bookmark {
	if list == nil {
		return []domain.Bookmark{}
	}
	return list
}
