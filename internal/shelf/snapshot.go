package shelf

import (
	"strings"
	"time"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
)

// Snapshot returns a copy of all three collections and trash timestamps.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	trashedAt := make(map[string]time.Time, len(s.trashedAt))
	for id, at := range s.trashedAt {
		trashedAt[id] = at
	}

	return domain.Snapshot{
		Active:    clone(s.active),
		Archived:  clone(s.archived),
		Trashed:   clone(s.trashed),
		TrashedAt: trashedAt,
	}
}

// Restore replaces the store content with snap. Duplicate ids keep their
// first occurrence, checking active, then archived, then trashed. Selection,
// select mode and the search query are reset. Active bookmarks still marked
// loading get their preview fetched again.
func (s *Store) Restore(snap domain.Snapshot) Event {
	seen := make(map[string]struct{}, snap.Len())
	dedupe := func(list []domain.Bookmark) []domain.Bookmark {
		out := make([]domain.Bookmark, 0, len(list))
		for _, b := range list {
			if b.ID == "" {
				continue
			}
			if _, dup := seen[b.ID]; dup {
				s.logger.Warn("dropping duplicate bookmark from snapshot",
					logger.String("id", b.ID))
				continue
			}
			seen[b.ID] = struct{}{}
			out = append(out, b)
		}
		return out
	}

	active := dedupe(snap.Active)
	archived := dedupe(snap.Archived)
	trashed := dedupe(snap.Trashed)

	now := s.now()
	trashedAt := make(map[string]time.Time, len(trashed))
	for _, b := range trashed {
		if at, ok := snap.TrashedAt[b.ID]; ok {
			trashedAt[b.ID] = at
		} else {
			trashedAt[b.ID] = now
		}
	}

	ids := make([]string, 0, len(seen))
	for _, list := range [][]domain.Bookmark{active, archived, trashed} {
		for _, b := range list {
			ids = append(ids, b.ID)
		}
	}
	var pending []domain.Bookmark
	for _, b := range active {
		if b.IsLoading {
			pending = append(pending, b)
		}
	}

	s.mu.Lock()
	s.active = active
	s.archived = archived
	s.trashed = trashed
	s.trashedAt = trashedAt
	s.selected = nil
	s.selectMode = false
	s.query = ""
	s.mu.Unlock()

	// active now belongs to the store; only the copies in pending are read here.
	for _, b := range pending {
		s.enrich(b.ID, b.URL)
	}

	ev := Event{Kind: EventRestored, IDs: ids}
	s.publish(ev)
	return ev
}

// Import appends already-described bookmarks to the end of the active list.
// Entries with an invalid URL, or whose URL is already on the shelf, are
// skipped. No preview is fetched; untitled entries get the fallback title.
func (s *Store) Import(entries []domain.ImportEntry) (Event, bool) {
	s.mu.Lock()
	known := make(map[string]struct{}, len(s.active)+len(s.archived)+len(s.trashed))
	for _, list := range [][]domain.Bookmark{s.active, s.archived, s.trashed} {
		for _, b := range list {
			known[b.URL] = struct{}{}
		}
	}

	var ids []string
	for _, e := range entries {
		if _, err := domain.ParseURL(e.URL); err != nil {
			s.logger.Debug("skipping invalid import entry",
				logger.String("url", e.URL),
				logger.Error(err))
			continue
		}
		link := strings.TrimSpace(e.URL)
		if _, dup := known[link]; dup {
			continue
		}
		known[link] = struct{}{}

		host := domain.DomainOf(link)
		title := strings.TrimSpace(e.Title)
		if title == "" {
			title = domain.FallbackTitle(host)
		}
		b := domain.Bookmark{
			ID:     s.newID(),
			URL:    link,
			Title:  title,
			Domain: host,
		}
		s.active = append(s.active, b)
		ids = append(ids, b.ID)
	}
	s.mu.Unlock()

	if len(ids) == 0 {
		return Event{}, false
	}
	ev := Event{Kind: EventImported, IDs: ids}
	s.publish(ev)
	return ev, true
}
