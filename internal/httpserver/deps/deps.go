package deps

import (
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/preview"
	"github.com/MrSnakeDoc/linkshelf/internal/shelf"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time    // for testing, defaults to time.Now
	AllowedHosts    []string            // Host headers allowed to access the server
	AllowedCIDRS    []string            // IPs allowed to access the API and probes
	TrustProxy      bool                // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateBurst       int                 // add/import burst per client IP
	RatePerMin      int                 // add/import refill per client IP
	Shelf           *shelf.Store        // in-memory bookmark shelf
	Credential      *preview.Credential // preview provider key
	Backend         store.Backend       // snapshot + settings persistence
	SnapshotTrigger chan struct{}       // manual snapshot write trigger (buffered, size 1)
	ExportTitle     string              // base name of export files
}

// Now returns TimeNow() or time.Now when unset.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
