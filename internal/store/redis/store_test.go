package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/store"
)

var _ store.Backend = (*Store)(nil)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func bm(id string) domain.Bookmark {
	return domain.Bookmark{ID: id, URL: "https://" + id + ".com", Title: id, Domain: id + ".com"}
}

func TestLoadSnapshotEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	_, ok, err := s.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if ok {
		t.Error("LoadSnapshot() ok = true on an empty database")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	at := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)

	in := domain.Snapshot{
		Active:    []domain.Bookmark{bm("c"), bm("a"), bm("b")},
		Archived:  []domain.Bookmark{bm("d")},
		Trashed:   []domain.Bookmark{bm("e")},
		TrashedAt: map[string]time.Time{"e": at},
	}
	in.Active[0].IsLoading = true
	in.Active[1].ImageURL = "https://img/a.png"

	if err := s.SaveSnapshot(ctx, in); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	out, ok, err := s.LoadSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("LoadSnapshot() = ok %v err %v", ok, err)
	}

	checkOrder(t, "active", out.Active, "c", "a", "b")
	checkOrder(t, "archived", out.Archived, "d")
	checkOrder(t, "trashed", out.Trashed, "e")
	if !out.Active[0].IsLoading || out.Active[1].ImageURL != "https://img/a.png" {
		t.Errorf("fields lost in round trip: %+v", out.Active[:2])
	}
	if !out.TrashedAt["e"].Equal(at) {
		t.Errorf("TrashedAt[e] = %v, want %v", out.TrashedAt["e"], at)
	}
}

func TestSaveSnapshotRemovesStaleBookmarks(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	first := domain.Snapshot{Active: []domain.Bookmark{bm("a"), bm("b")}}
	if err := s.SaveSnapshot(ctx, first); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}
	second := domain.Snapshot{Archived: []domain.Bookmark{bm("a")}}
	if err := s.SaveSnapshot(ctx, second); err != nil {
		t.Fatalf("SaveSnapshot() error = %v", err)
	}

	if mr.Exists(BookmarkKey("b")) {
		t.Error("bookmark b should be removed after it left every collection")
	}
	if mr.Exists(ListKey("active")) {
		t.Error("empty active list should not exist")
	}

	out, _, _ := s.LoadSnapshot(ctx)
	if len(out.Active) != 0 {
		t.Errorf("active = %v, want empty", out.Active)
	}
	checkOrder(t, "archived", out.Archived, "a")
}

func TestLoadSnapshotSkipsMissingBookmarkKeys(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	_ = s.SaveSnapshot(ctx, domain.Snapshot{Active: []domain.Bookmark{bm("a"), bm("b")}})
	mr.Del(BookmarkKey("a"))

	out, ok, err := s.LoadSnapshot(ctx)
	if err != nil || !ok {
		t.Fatalf("LoadSnapshot() = ok %v err %v", ok, err)
	}
	checkOrder(t, "active", out.Active, "b")
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestStore(t)

	if v, err := s.GetSetting(ctx, store.PreviewKeySetting); v != "" || err != nil {
		t.Fatalf("GetSetting() on unset key = %q, %v", v, err)
	}
	if err := s.SetSetting(ctx, store.PreviewKeySetting, "k-123"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	if got, _ := mr.Get("linkshelf:settings:preview_api_key"); got != "k-123" {
		t.Errorf("raw key = %q, want k-123", got)
	}
	if v, _ := s.GetSetting(ctx, store.PreviewKeySetting); v != "k-123" {
		t.Errorf("GetSetting() = %q", v)
	}
	if err := s.DeleteSetting(ctx, store.PreviewKeySetting); err != nil {
		t.Fatalf("DeleteSetting() error = %v", err)
	}
	if v, _ := s.GetSetting(ctx, store.PreviewKeySetting); v != "" {
		t.Errorf("GetSetting() after delete = %q", v)
	}
}

func TestPingFailsWhenServerDown(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	s := NewStore(client)
	defer s.Close()

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	mr.Close()
	if err := s.Ping(context.Background()); err == nil {
		t.Error("Ping() should fail once the server is gone")
	}
}

func checkOrder(t *testing.T, name string, got []domain.Bookmark, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %d bookmarks, want %v", name, len(got), want)
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("%s[%d] = %s, want %s", name, i, got[i].ID, want[i])
		}
	}
}
