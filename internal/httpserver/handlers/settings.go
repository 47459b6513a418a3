package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
)

type previewKeyRequest struct {
	Key string `json:"key"`
}

type previewKeyResponse struct {
	Configured bool   `json:"configured"`
	Masked     string `json:"masked,omitempty"`
}

func previewKeyState(d deps.Deps) previewKeyResponse {
	return previewKeyResponse{
		Configured: d.Credential.Configured(),
		Masked:     d.Credential.Masked(),
	}
}

// GetPreviewKey reports whether a key is set. The key itself is never returned.
func GetPreviewKey(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Logger, http.StatusOK, previewKeyState(d))
	}
}

// PutPreviewKey stores a new key. Later fetches use it; pending ones keep
// the key they started with.
func PutPreviewKey(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req previewKeyRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Key) == "" {
			writeError(w, d.Logger, http.StatusBadRequest, "key must not be empty")
			return
		}

		if err := d.Credential.Set(r.Context(), req.Key); err != nil {
			d.Logger.Error("failed to store preview key", logger.Error(err))
			writeError(w, d.Logger, http.StatusInternalServerError, "failed to store preview key")
			return
		}

		d.Logger.Info("preview key updated")
		writeJSON(w, d.Logger, http.StatusOK, previewKeyState(d))
	}
}

// DeletePreviewKey clears the key; previews fall back to domain titles.
func DeletePreviewKey(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Credential.Clear(r.Context()); err != nil {
			d.Logger.Error("failed to clear preview key", logger.Error(err))
			writeError(w, d.Logger, http.StatusInternalServerError, "failed to clear preview key")
			return
		}

		d.Logger.Info("preview key cleared")
		writeJSON(w, d.Logger, http.StatusOK, previewKeyState(d))
	}
}
