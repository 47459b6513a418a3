package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/redis/go-redis/v9"
)

// collections in snapshot order.
var collections = []string{"active", "archived", "trashed"}

// Store persists shelf snapshots and settings in Redis.
//
// Each bookmark is a JSON value under its own key; collection order lives in
// one list per collection. A snapshot write replaces everything in a single
// MULTI/EXEC so readers never see half a snapshot.
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

func (s *Store) Name() string { return "redis" }

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}

// SaveSnapshot replaces the persisted snapshot
func (s *Store) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	existing, err := s.client.SMembers(ctx, KeyAllBookmarks).Result()
	if err != nil {
		return fmt.Errorf("failed to list persisted bookmarks: %w", err)
	}

	lists := [][]domain.Bookmark{snap.Active, snap.Archived, snap.Trashed}
	current := make(map[string]struct{}, snap.Len())

	pipe := s.client.TxPipeline()
	for i, list := range lists {
		key := ListKey(collections[i])
		pipe.Del(ctx, key)

		ids := make([]interface{}, 0, len(list))
		for _, b := range list {
			data, err := json.Marshal(b)
			if err != nil {
				pipe.Discard()
				return fmt.Errorf("failed to marshal bookmark %s: %w", b.ID, err)
			}
			pipe.Set(ctx, BookmarkKey(b.ID), data, 0)
			ids = append(ids, b.ID)
			current[b.ID] = struct{}{}
		}
		if len(ids) > 0 {
			pipe.RPush(ctx, key, ids...)
		}
	}

	for _, id := range existing {
		if _, ok := current[id]; !ok {
			pipe.Del(ctx, BookmarkKey(id))
		}
	}

	pipe.Del(ctx, KeyAllBookmarks)
	if len(current) > 0 {
		members := make([]interface{}, 0, len(current))
		for id := range current {
			members = append(members, id)
		}
		pipe.SAdd(ctx, KeyAllBookmarks, members...)
	}

	pipe.Del(ctx, KeyTrashedAt)
	if len(snap.TrashedAt) > 0 {
		fields := make(map[string]interface{}, len(snap.TrashedAt))
		for id, at := range snap.TrashedAt {
			fields[id] = at.UTC().Format(time.RFC3339Nano)
		}
		pipe.HSet(ctx, KeyTrashedAt, fields)
	}

	pipe.Set(ctx, KeySavedAt, time.Now().UTC().Format(time.RFC3339Nano), 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads the persisted snapshot
func (s *Store) LoadSnapshot(ctx context.Context) (domain.Snapshot, bool, error) {
	n, err := s.client.Exists(ctx, KeySavedAt).Result()
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("failed to check snapshot: %w", err)
	}
	if n == 0 {
		return domain.Snapshot{}, false, nil
	}

	var lists [3][]domain.Bookmark
	for i, c := range collections {
		list, err := s.loadList(ctx, c)
		if err != nil {
			return domain.Snapshot{}, false, err
		}
		lists[i] = list
	}

	raw, err := s.client.HGetAll(ctx, KeyTrashedAt).Result()
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("failed to get trash times: %w", err)
	}
	trashedAt := make(map[string]time.Time, len(raw))
	for id, v := range raw {
		at, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			// Restore stamps unparsable entries with the current time.
			continue
		}
		trashedAt[id] = at
	}

	return domain.Snapshot{
		Active:    lists[0],
		Archived:  lists[1],
		Trashed:   lists[2],
		TrashedAt: trashedAt,
	}, true, nil
}

func (s *Store) loadList(ctx context.Context, collection string) ([]domain.Bookmark, error) {
	ids, err := s.client.LRange(ctx, ListKey(collection), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s ids: %w", collection, err)
	}
	if len(ids) == 0 {
		return []domain.Bookmark{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get %s bookmarks: %w", collection, err)
	}

	bookmarks := make([]domain.Bookmark, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			// Skip ids whose bookmark key is gone
			continue
		}
		var b domain.Bookmark
		if err := json.Unmarshal([]byte(str), &b); err != nil {
			continue
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}

// GetSetting retrieves a setting, "" when unset
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, SettingKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return v, nil
}

// SetSetting stores a setting
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, SettingKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a setting
func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, SettingKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}
