package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/shelf"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// mutationResponse is returned by every endpoint that changes the shelf.
// Event is nil when nothing was applied.
type mutationResponse struct {
	Applied bool         `json:"applied"`
	Event   *shelf.Event `json:"event,omitempty"`
	Notice  string       `json:"notice,omitempty"`
}

func mutation(ev shelf.Event, applied bool) mutationResponse {
	if !applied {
		return mutationResponse{}
	}
	return mutationResponse{Applied: true, Event: &ev, Notice: ev.Message()}
}

func writeJSON(w http.ResponseWriter, log logger.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("failed to write response", logger.Error(err))
	}
}

func writeError(w http.ResponseWriter, log logger.Logger, status int, msg string) {
	writeJSON(w, log, status, errorResponse{Error: msg})
}

// decodeJSON reads a single JSON object from the request body.
// An empty body decodes to the zero value.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// writeMutation answers a shelf mutation. Unknown ids are not an error:
// the response simply reports applied=false.
func writeMutation(w http.ResponseWriter, d deps.Deps, ev shelf.Event, applied bool) {
	writeJSON(w, d.Logger, http.StatusOK, mutation(ev, applied))
}
