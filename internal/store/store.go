// Package store defines where the shelf persists between restarts: the last
// snapshot of the three collections, and small string settings such as the
// link preview API key.
//
// The in-memory shelf stays the source of truth while running; backends only
// receive full snapshots and hand the last one back at startup.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
)

// PreviewKeySetting is the settings key holding the link preview API key.
const PreviewKeySetting = "preview_api_key"

// ErrClosed is returned by the memory backend after Close.
var ErrClosed = errors.New("store: backend closed")

// Snapshots persists whole-shelf snapshots.
type Snapshots interface {
	// SaveSnapshot replaces the stored snapshot.
	SaveSnapshot(ctx context.Context, snap domain.Snapshot) error
	// LoadSnapshot returns the stored snapshot; ok is false when none was ever saved.
	LoadSnapshot(ctx context.Context) (snap domain.Snapshot, ok bool, err error)
}

// Settings persists string values by key. A missing key reads as "".
type Settings interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// Backend is a complete persistence backend.
type Backend interface {
	Snapshots
	Settings
	Ping(ctx context.Context) error
	Name() string
	Close() error
}

// ─────────────────────────────────────────────────────────────────
// Setting slot
// ─────────────────────────────────────────────────────────────────

// SettingSlot exposes a single settings key as a read/write/clear slot.
type SettingSlot struct {
	settings Settings
	key      string
}

// Slot binds key in settings.
func Slot(settings Settings, key string) *SettingSlot {
	return &SettingSlot{settings: settings, key: key}
}

func (s *SettingSlot) Get(ctx context.Context) (string, error) {
	return s.settings.GetSetting(ctx, s.key)
}

func (s *SettingSlot) Set(ctx context.Context, value string) error {
	return s.settings.SetSetting(ctx, s.key, value)
}

func (s *SettingSlot) Clear(ctx context.Context) error {
	return s.settings.DeleteSetting(ctx, s.key)
}

// ─────────────────────────────────────────────────────────────────
// Memory backend
// ─────────────────────────────────────────────────────────────────

// Memory is a process-local backend. Nothing survives a restart; it backs
// the CLI dry paths and tests.
type Memory struct {
	mu       sync.RWMutex
	snap     *domain.Snapshot
	settings map[string]string
	closed   bool
}

// NewMemory creates an empty memory backend.
func NewMemory() *Memory {
	return &Memory{settings: make(map[string]string)}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *Memory) SaveSnapshot(_ context.Context, snap domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	c := copySnapshot(snap)
	m.snap = &c
	return nil
}

func (m *Memory) LoadSnapshot(context.Context) (domain.Snapshot, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return domain.Snapshot{}, false, ErrClosed
	}
	if m.snap == nil {
		return domain.Snapshot{}, false, nil
	}
	return copySnapshot(*m.snap), true, nil
}

func (m *Memory) GetSetting(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", ErrClosed
	}
	return m.settings[key], nil
}

func (m *Memory) SetSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.settings[key] = value
	return nil
}

func (m *Memory) DeleteSetting(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.settings, key)
	return nil
}

func copySnapshot(s domain.Snapshot) domain.Snapshot {
	out := domain.Snapshot{
		Active:   append([]domain.Bookmark(nil), s.Active...),
		Archived: append([]domain.Bookmark(nil), s.Archived...),
		Trashed:  append([]domain.Bookmark(nil), s.Trashed...),
	}
	if s.TrashedAt != nil {
		out.TrashedAt = make(map[string]time.Time, len(s.TrashedAt))
		for id, at := range s.TrashedAt {
			out.TrashedAt[id] = at
		}
	}
	return out
}
