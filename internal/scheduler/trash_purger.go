package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/shelf"
)

// TrashPurger permanently deletes bookmarks that stayed in the trash longer
// than the retention.
type TrashPurger struct {
	shelf     *shelf.Store
	logger    logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewTrashPurger creates a new trash purger
func NewTrashPurger(
	sh *shelf.Store,
	log logger.Logger,
	interval time.Duration,
	retention time.Duration,
) *TrashPurger {
	return &TrashPurger{
		shelf:     sh,
		logger:    log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start runs a purge immediately, then on every interval
func (tp *TrashPurger) Start(ctx context.Context) {
	tp.Purge()

	ticker := time.NewTicker(tp.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tp.Purge()
			case <-tp.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the purger
func (tp *TrashPurger) Stop() {
	close(tp.stopCh)
}

// Purge deletes expired trash and returns how many bookmarks were removed.
func (tp *TrashPurger) Purge() int {
	cutoff := tp.now().Add(-tp.retention)
	deleted := 0

	for _, id := range tp.shelf.TrashedBefore(cutoff) {
		// Restored or deleted meanwhile: not counted.
		if _, ok := tp.shelf.PermanentlyDelete(id); ok {
			deleted++
		}
	}

	if deleted > 0 {
		tp.logger.Info("purged expired trash",
			logger.Int("deleted", deleted),
			logger.Duration("retention", tp.retention))
	} else {
		tp.logger.Debug("no trash to purge")
	}
	return deleted
}
