package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/linkshelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkshelf/internal/shelf"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Counts     shelf.Counts               `json:"counts"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of each component the shelf relies on.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"backend": checkBackend(r.Context(), d),
			"preview": checkPreview(d),
		}

		writeJSON(w, d.Logger, http.StatusOK, infraResponse{
			Status:     overallStatus(components),
			Counts:     d.Shelf.Counts(),
			Components: components,
		})
	}
}

// overallStatus is "degraded" when persistence is down. A missing preview
// key only lowers preview quality, so it never degrades the status.
func overallStatus(components map[string]componentStatus) string {
	if backend, ok := components["backend"]; ok && !backend.OK {
		return "degraded"
	}
	return "ok"
}

func checkBackend(ctx context.Context, d deps.Deps) componentStatus {
	if d.Backend == nil {
		return componentStatus{
			Impact: "changes-not-persisted",
			Error:  "backend not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := d.Backend.Ping(ctx); err != nil {
		return componentStatus{
			Mode:   d.Backend.Name(),
			Impact: "changes-not-persisted",
			Error:  "unreachable",
		}
	}
	return componentStatus{OK: true, Mode: d.Backend.Name()}
}

func checkPreview(d deps.Deps) componentStatus {
	if !d.Credential.Configured() {
		return componentStatus{
			OK:     true,
			Mode:   "fallback",
			Impact: "titles-derived-from-domain",
		}
	}
	return componentStatus{OK: true, Mode: "provider"}
}
