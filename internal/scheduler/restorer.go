package scheduler

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/shelf"
	"github.com/MrSnakeDoc/linkshelf/internal/sources/homepage"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
)

// Restorer fills the shelf at startup: from the last snapshot, then from the
// seed file when the shelf is still empty.
type Restorer struct {
	store    store.Snapshots
	shelf    *shelf.Store
	seedFile string
	logger   logger.Logger
}

// NewRestorer creates a new restorer. seedFile may be empty.
func NewRestorer(
	st store.Snapshots,
	sh *shelf.Store,
	seedFile string,
	log logger.Logger,
) *Restorer {
	return &Restorer{
		store:    st,
		shelf:    sh,
		seedFile: seedFile,
		logger:   log,
	}
}

// Restore loads the snapshot into the shelf. A missing seed file is logged,
// not returned: the shelf is usable without it.
func (r *Restorer) Restore(ctx context.Context) error {
	r.logger.Info("restoring shelf from backend")

	snap, ok, err := r.store.LoadSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if ok {
		r.shelf.Restore(snap)
		c := r.shelf.Counts()
		r.logger.Info("restored shelf",
			logger.Int("active", c.Active),
			logger.Int("archived", c.Archived),
			logger.Int("trashed", c.Trashed))
	} else {
		r.logger.Info("no snapshot found")
	}

	if r.seedFile == "" {
		return nil
	}
	if c := r.shelf.Counts(); c.Active+c.Archived+c.Trashed > 0 {
		return nil
	}

	entries, err := homepage.NewLoader(r.seedFile).LoadEntries()
	if err != nil {
		r.logger.Warn("failed to load seed file",
			logger.String("file", r.seedFile),
			logger.Error(err))
		return nil
	}

	if ev, ok := r.shelf.Import(entries); ok {
		r.logger.Info("seeded shelf from homepage bookmarks",
			logger.String("file", r.seedFile),
			logger.Int("count", len(ev.IDs)))
	}
	return nil
}
