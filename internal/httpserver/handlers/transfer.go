package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/transfer"
)

// maxImportBytes caps uploaded bookmark files.
const maxImportBytes = 10 << 20

type importResponse struct {
	mutationResponse
	Parsed   int `json:"parsed"`
	Imported int `json:"imported"`
}

// Export streams the shelf as a downloadable file (?format=json|html).
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := transfer.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, err.Error())
			return
		}

		now := d.Now()
		var buf bytes.Buffer
		if err := transfer.Export(&buf, d.Shelf.Snapshot(), format, now); err != nil {
			d.Logger.Error("export failed", logger.String("format", string(format)), logger.Error(err))
			writeError(w, d.Logger, http.StatusInternalServerError, "export failed")
			return
		}

		filename := transfer.Filename(d.ExportTitle, format, now)
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(buf.Bytes()); err != nil {
			d.Logger.Debug("failed to write export", logger.Error(err))
		}
	}
}

// Import adds the bookmarks of an uploaded file. The format comes from
// ?format=, else from the Content-Type (JSON when it says so, Netscape HTML otherwise).
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := importFormat(r)
		if err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, err.Error())
			return
		}

		entries, err := transfer.Import(io.LimitReader(r.Body, maxImportBytes), format)
		if err != nil {
			d.Logger.Warn("import rejected", logger.String("format", string(format)), logger.Error(err))
			writeError(w, d.Logger, http.StatusBadRequest, fmt.Sprintf("unreadable %s file", format))
			return
		}

		ev, applied := d.Shelf.Import(entries)
		d.Logger.Info("bookmarks imported",
			logger.String("format", string(format)),
			logger.Int("parsed", len(entries)),
			logger.Int("imported", len(ev.IDs)))

		writeJSON(w, d.Logger, http.StatusOK, importResponse{
			mutationResponse: mutation(ev, applied),
			Parsed:           len(entries),
			Imported:         len(ev.IDs),
		})
	}
}

func importFormat(r *http.Request) (transfer.Format, error) {
	if q := r.URL.Query().Get("format"); q != "" {
		return transfer.ParseFormat(q)
	}
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return transfer.FormatHTML, nil
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", errors.New("invalid Content-Type")
	}
	if mediaType == "application/json" {
		return transfer.FormatJSON, nil
	}
	return transfer.FormatHTML, nil
}
