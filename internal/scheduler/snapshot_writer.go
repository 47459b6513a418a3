package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/logger"
	"github.com/MrSnakeDoc/linkshelf/internal/shelf"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
)

// SnapshotWriter persists the shelf on an interval and on demand.
type SnapshotWriter struct {
	shelf    *shelf.Store
	store    store.Snapshots
	logger   logger.Logger
	interval time.Duration
	trigger  chan struct{}
	stopCh   chan struct{}
	done     chan struct{}

	dirty   atomic.Bool
	writeMu sync.Mutex
}

// NewSnapshotWriter creates a new snapshot writer. trigger should be buffered
// (size 1) so pending requests coalesce.
func NewSnapshotWriter(
	sh *shelf.Store,
	st store.Snapshots,
	log logger.Logger,
	interval time.Duration,
	trigger chan struct{},
) *SnapshotWriter {
	return &SnapshotWriter{
		shelf:    sh,
		store:    st,
		logger:   log,
		interval: interval,
		trigger:  trigger,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the periodic write loop
func (sw *SnapshotWriter) Start(ctx context.Context) {
	ticker := time.NewTicker(sw.interval)
	go func() {
		defer close(sw.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !sw.dirty.Load() {
					continue
				}
				if err := sw.Flush(ctx); err != nil {
					sw.logger.Error("failed to write snapshot", logger.Error(err))
				}
			case <-sw.trigger:
				sw.logger.Debug("snapshot write triggered")
				if err := sw.Flush(ctx); err != nil {
					sw.logger.Error("failed to write snapshot", logger.Error(err))
				}
			case <-sw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the loop and waits for it to exit. It does not flush.
func (sw *SnapshotWriter) Stop() {
	close(sw.stopCh)
	<-sw.done
}

// MarkDirty records that the shelf changed since the last write.
func (sw *SnapshotWriter) MarkDirty() {
	sw.dirty.Store(true)
}

// Nudge marks the shelf dirty and queues a write without blocking.
// It reports false when a write is already queued.
func (sw *SnapshotWriter) Nudge() bool {
	sw.MarkDirty()
	select {
	case sw.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Flush writes the current shelf content now.
func (sw *SnapshotWriter) Flush(ctx context.Context) error {
	sw.writeMu.Lock()
	defer sw.writeMu.Unlock()

	// Cleared before reading so a change racing the write marks it dirty again.
	sw.dirty.Store(false)
	snap := sw.shelf.Snapshot()

	start := time.Now()
	if err := sw.store.SaveSnapshot(ctx, snap); err != nil {
		sw.dirty.Store(true)
		return fmt.Errorf("save snapshot: %w", err)
	}

	sw.logger.Debug("snapshot written",
		logger.Int("active", len(snap.Active)),
		logger.Int("archived", len(snap.Archived)),
		logger.Int("trashed", len(snap.Trashed)),
		logger.Duration("took", time.Since(start)))
	return nil
}
