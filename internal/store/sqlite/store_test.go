package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
)

var _ store.Backend = (*Store)(nil)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "linkshelf.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestDriverFor(t *testing.T) {
	tests := map[string]string{
		"file:linkshelf.db":             "sqlite",
		"/var/lib/linkshelf.db":         "sqlite",
		"libsql://shelf.turso.io":       "libsql",
		"wss://shelf.turso.io":          "libsql",
		"https://shelf.turso.io?x=1":    "libsql",
		"file:/tmp/libsql://not-remote": "sqlite",
	}
	for dsn, want := range tests {
		if got := DriverFor(dsn); got != want {
			t.Errorf("DriverFor(%q) = %q, want %q", dsn, got, want)
		}
	}
}

func TestLoadSnapshotBeforeAnySave(t *testing.T) {
	s, _ := openTemp(t)

	_, ok, err := s.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if ok {
		t.Error("LoadSnapshot() ok = true on a fresh database")
	}
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t)
	at := time.Date(2026, 7, 1, 10, 0, 0, 123, time.UTC)

	in := domain.Snapshot{
		Active: []domain.Bookmark{
			{ID: "z", URL: "https://z.com", Title: "Z", Domain: "z.com"},
			{ID: "a", URL: "https://a.com", Title: "A", Domain: "a.com", IsLoading: true},
		},
		Archived:  []domain.Bookmark{{ID: "r", URL: "https://r.com", Title: "R", Description: "desc"}},
		Trashed:   []domain.Bookmark{{ID: "t", URL: "https://t.com", Title: "T", ImageURL: "https://i/t.png"}},
		TrashedAt: map[string]time.Time{"t": at},
	}
	if err := s.SaveSnapshot(ctx, in); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	_ = s.Close()

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	out, ok, err := reopened.LoadSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("LoadSnapshot() = ok %v err %v", ok, err)
	}
	if len(out.Active) != 2 || out.Active[0].ID != "z" || out.Active[1].ID != "a" {
		t.Fatalf("active = %+v, want order z, a", out.Active)
	}
	if !out.Active[1].IsLoading {
		t.Error("IsLoading lost across save")
	}
	if len(out.Archived) != 1 || out.Archived[0].Description != "desc" {
		t.Errorf("archived = %+v", out.Archived)
	}
	if len(out.Trashed) != 1 || out.Trashed[0].ImageURL != "https://i/t.png" {
		t.Errorf("trashed = %+v", out.Trashed)
	}
	if !out.TrashedAt["t"].Equal(at) {
		t.Errorf("TrashedAt[t] = %v, want %v", out.TrashedAt["t"], at)
	}
}

func TestSaveSnapshotReplaces(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	_ = s.SaveSnapshot(ctx, domain.Snapshot{Active: []domain.Bookmark{{ID: "a", URL: "https://a.com"}}})
	if err := s.SaveSnapshot(ctx, domain.Snapshot{}); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	out, ok, err := s.LoadSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("LoadSnapshot() = ok %v err %v", ok, err)
	}
	if out.Len() != 0 {
		t.Errorf("snapshot has %d bookmarks, want 0", out.Len())
	}
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	if v, err := s.GetSetting(ctx, store.PreviewKeySetting); v != "" || err != nil {
		t.Fatalf("GetSetting() unset = %q, %v", v, err)
	}
	for _, v := range []string{"first", "second"} {
		if err := s.SetSetting(ctx, store.PreviewKeySetting, v); err != nil {
			t.Fatalf("SetSetting(%q) error = %v", v, err)
		}
	}
	if v, _ := s.GetSetting(ctx, store.PreviewKeySetting); v != "second" {
		t.Errorf("GetSetting() = %q, want second", v)
	}
	if err := s.DeleteSetting(ctx, store.PreviewKeySetting); err != nil {
		t.Fatalf("DeleteSetting() error = %v", err)
	}
	if v, _ := s.GetSetting(ctx, store.PreviewKeySetting); v != "" {
		t.Errorf("GetSetting() after delete = %q", v)
	}
}
