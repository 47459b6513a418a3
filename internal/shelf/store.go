// Package shelf holds the bookmark state container: the active, archived
// and trashed collections, the search filter and the multi-select state.
//
// Every mutation is a single read-modify-write under one mutex, so a
// bookmark id is always in exactly one collection. Unknown ids are no-ops.
package shelf

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
	"github.com/MrSnakeDoc/linkshelf/internal/logger"
)

// PreviewUnavailable is the description set when the preview fetch fails.
const PreviewUnavailable = "Preview unavailable"

// Collection names one of the three disjoint bookmark lists.
type Collection string

const (
	Active   Collection = "active"
	Archived Collection = "archived"
	Trashed  Collection = "trashed"
)

// Previewer fetches link metadata for a URL.
type Previewer interface {
	Fetch(ctx context.Context, rawURL string) (domain.Preview, error)
}

// Counts is the size of each collection.
type Counts struct {
	Active   int `json:"active"`
	Archived int `json:"archived"`
	Trashed  int `json:"trashed"`
}

// Store is the in-memory bookmark shelf.
type Store struct {
	mu         sync.Mutex
	active     []domain.Bookmark
	archived   []domain.Bookmark
	trashed    []domain.Bookmark
	trashedAt  map[string]time.Time
	selectMode bool
	selected   []string
	query      string
	closed     bool

	previewer Previewer
	newID     func() string
	now       func() time.Time
	logger    logger.Logger

	subMu       sync.RWMutex
	subscribers []func(Event)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures the Store.
type Option func(*Store)

// WithIDGenerator overrides the id generator (UUIDv7 by default).
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithClock overrides time.Now.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		s.now = fn
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates an empty store. previewer may be nil, in which case added
// bookmarks are finalized immediately with a fallback title.
func New(previewer Previewer, opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		trashedAt: make(map[string]time.Time),
		previewer: previewer,
		newID:     newUUID,
		now:       time.Now,
		logger:    logger.Noop(),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newUUID returns a time-ordered id.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Subscribe registers fn to receive every applied event.
// fn runs outside the store lock and may call back into the store.
func (s *Store) Subscribe(fn func(Event)) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) publish(ev Event) {
	s.subMu.RLock()
	subs := make([]func(Event), len(s.subscribers))
	copy(subs, s.subscribers)
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// ─────────────────────────────────────────────────────────────────
// Add & preview patch
// ─────────────────────────────────────────────────────────────────

// Add validates rawURL, inserts a loading placeholder at the front of the
// active list and starts the preview fetch. The returned bookmark is the
// placeholder; the patch lands later, keyed by id.
func (s *Store) Add(rawURL string) (domain.Bookmark, Event, error) {
	if _, err := domain.ParseURL(rawURL); err != nil {
		return domain.Bookmark{}, Event{}, err
	}

	link := strings.TrimSpace(rawURL)
	host := domain.DomainOf(link)
	b := domain.Bookmark{
		ID:     s.newID(),
		URL:    link,
		Title:  domain.FallbackTitle(host),
		Domain: host,
	}

	s.mu.Lock()
	b.IsLoading = s.reserveFetchLocked()
	s.active = append([]domain.Bookmark{b}, s.active...)
	s.mu.Unlock()

	ev := Event{Kind: EventAdded, IDs: []string{b.ID}}
	s.publish(ev)

	if b.IsLoading {
		s.fetch(b.ID, b.URL)
	}

	return b, ev, nil
}

// reserveFetchLocked counts a new fetch in s.wg, unless the store has no
// previewer or is closed. s.mu must be held.
func (s *Store) reserveFetchLocked() bool {
	if s.previewer == nil || s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

// enrich starts a preview fetch for an existing bookmark when one can run.
func (s *Store) enrich(id, rawURL string) {
	s.mu.Lock()
	ok := s.reserveFetchLocked()
	s.mu.Unlock()

	if ok {
		s.fetch(id, rawURL)
	}
}

// fetch resolves a reserved preview in the background and patches the bookmark.
func (s *Store) fetch(id, rawURL string) {
	go func() {
		defer s.wg.Done()
		p, err := s.previewer.Fetch(s.ctx, rawURL)
		s.applyPreview(id, rawURL, p, err)
	}()
}

// applyPreview patches an active bookmark in place. It is a no-op when the
// bookmark left the active list (moved or deleted) before the fetch resolved,
// and after Close: the placeholder stays loading so the next restore refetches it.
func (s *Store) applyPreview(id, rawURL string, p domain.Preview, fetchErr error) {
	host := domain.DomainOf(rawURL)

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		s.logger.Debug("store closed, keeping preview placeholder",
			logger.String("id", id))
		return
	}
	i := indexOf(s.active, id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug("preview resolved for bookmark no longer active",
			logger.String("id", id))
		return
	}

	b := &s.active[i]
	kind := EventPreviewLoaded
	if fetchErr != nil {
		b.Title = domain.FallbackTitle(host)
		b.Description = PreviewUnavailable
		b.ImageURL = ""
		b.Domain = host
		kind = EventPreviewFailed
	} else {
		b.Title = p.Title
		if b.Title == "" {
			b.Title = domain.FallbackTitle(host)
		}
		b.Description = p.Description
		b.ImageURL = p.Image
		b.Domain = host
		if p.Domain != "" {
			b.Domain = p.Domain
		}
	}
	b.IsLoading = false
	s.mu.Unlock()

	if fetchErr != nil {
		s.logger.Warn("preview fetch failed, using fallback",
			logger.String("id", id),
			logger.String("url", rawURL),
			logger.Error(fetchErr))
	}
	s.publish(Event{Kind: kind, IDs: []string{id}})
}

// Wait blocks until all in-flight preview fetches have been applied.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight preview fetches and waits for them to finish.
// Their bookmarks keep the loading placeholder. The store stays readable and
// mutable afterwards, but no new fetches start.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// ─────────────────────────────────────────────────────────────────
// Transitions
// ─────────────────────────────────────────────────────────────────

// MoveToTrash moves an active bookmark to the end of the trash.
func (s *Store) MoveToTrash(id string) (Event, bool) {
	s.mu.Lock()
	_, ok := transfer(&s.active, &s.trashed, id)
	if ok {
		s.trashedAt[id] = s.now()
	}
	s.mu.Unlock()

	return s.result(ok, EventTrashed, id)
}

// MoveToArchive moves an active bookmark to the end of the archive.
func (s *Store) MoveToArchive(id string) (Event, bool) {
	s.mu.Lock()
	_, ok := transfer(&s.active, &s.archived, id)
	s.mu.Unlock()

	return s.result(ok, EventArchived, id)
}

// RestoreFromTrash moves a trashed bookmark to the end of the active list.
func (s *Store) RestoreFromTrash(id string) (Event, bool) {
	s.mu.Lock()
	b, ok := transfer(&s.trashed, &s.active, id)
	if ok {
		delete(s.trashedAt, id)
	}
	s.mu.Unlock()

	if ok && b.IsLoading {
		s.enrich(b.ID, b.URL)
	}
	return s.result(ok, EventRestoredFromTrash, id)
}

// RestoreFromArchive moves an archived bookmark to the end of the active list.
func (s *Store) RestoreFromArchive(id string) (Event, bool) {
	s.mu.Lock()
	b, ok := transfer(&s.archived, &s.active, id)
	s.mu.Unlock()

	if ok && b.IsLoading {
		s.enrich(b.ID, b.URL)
	}
	return s.result(ok, EventUnarchived, id)
}

// PermanentlyDelete removes a bookmark from the trash. Irreversible.
func (s *Store) PermanentlyDelete(id string) (Event, bool) {
	s.mu.Lock()
	i := indexOf(s.trashed, id)
	ok := i >= 0
	if ok {
		s.trashed = removeAt(s.trashed, i)
		delete(s.trashedAt, id)
	}
	s.mu.Unlock()

	return s.result(ok, EventDeleted, id)
}

func (s *Store) result(ok bool, kind EventKind, id string) (Event, bool) {
	if !ok {
		return Event{}, false
	}
	ev := Event{Kind: kind, IDs: []string{id}}
	s.publish(ev)
	return ev, true
}

// ─────────────────────────────────────────────────────────────────
// Selection & bulk
// ─────────────────────────────────────────────────────────────────

// ToggleSelectMode flips select mode and returns the new state.
// Leaving select mode clears the selection.
func (s *Store) ToggleSelectMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selectMode = !s.selectMode
	if !s.selectMode {
		s.selected = nil
	}
	return s.selectMode
}

// ToggleSelectBookmark adds or removes id from the selection and reports
// whether it is now selected. Ids are not validated. Ignored outside select mode.
func (s *Store) ToggleSelectBookmark(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.selectMode {
		return false
	}
	for i, sel := range s.selected {
		if sel == id {
			s.selected = append(s.selected[:i:i], s.selected[i+1:]...)
			return false
		}
	}
	s.selected = append(s.selected, id)
	return true
}

// BulkMoveToTrash moves every selected active bookmark to the trash,
// then clears the selection and leaves select mode.
func (s *Store) BulkMoveToTrash() (Event, bool) {
	return s.bulkMove(Trashed)
}

// BulkMoveToArchive moves every selected active bookmark to the archive,
// then clears the selection and leaves select mode.
func (s *Store) BulkMoveToArchive() (Event, bool) {
	return s.bulkMove(Archived)
}

func (s *Store) bulkMove(target Collection) (Event, bool) {
	s.mu.Lock()
	selected := make(map[string]struct{}, len(s.selected))
	for _, id := range s.selected {
		selected[id] = struct{}{}
	}

	now := s.now()
	keep := make([]domain.Bookmark, 0, len(s.active))
	var moved []string
	for _, b := range s.active {
		if _, ok := selected[b.ID]; !ok {
			keep = append(keep, b)
			continue
		}
		moved = append(moved, b.ID)
		if target == Trashed {
			s.trashed = append(s.trashed, b)
			s.trashedAt[b.ID] = now
		} else {
			s.archived = append(s.archived, b)
		}
	}
	s.active = keep
	s.selected = nil
	s.selectMode = false
	s.mu.Unlock()

	if len(moved) == 0 {
		return Event{}, false
	}

	kind := EventBulkArchived
	if target == Trashed {
		kind = EventBulkTrashed
	}
	ev := Event{Kind: kind, IDs: moved}
	s.publish(ev)
	return ev, true
}

// SelectMode reports whether select mode is on.
func (s *Store) SelectMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectMode
}

// Selection returns the selected ids in selection order.
func (s *Store) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.selected))
	copy(out, s.selected)
	return out
}

// ─────────────────────────────────────────────────────────────────
// Search & reads
// ─────────────────────────────────────────────────────────────────

// SetSearchQuery sets the active filter.
func (s *Store) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
}

// SearchQuery returns the active filter.
func (s *Store) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Filtered returns the active bookmarks whose title contains the search
// query, case-insensitively. A blank query returns the whole active list.
func (s *Store) Filtered() []domain.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(s.query) == "" {
		return clone(s.active)
	}

	needle := strings.ToLower(s.query)
	out := make([]domain.Bookmark, 0, len(s.active))
	for _, b := range s.active {
		if strings.Contains(strings.ToLower(b.Title), needle) {
			out = append(out, b)
		}
	}
	return out
}

// Active returns a copy of the active list.
func (s *Store) Active() []domain.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.active)
}

// Archived returns a copy of the archive.
func (s *Store) Archived() []domain.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.archived)
}

// Trashed returns a copy of the trash.
func (s *Store) Trashed() []domain.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.trashed)
}

// Get looks a bookmark up in all collections.
func (s *Store) Get(id string) (domain.Bookmark, Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.active, id); i >= 0 {
		return s.active[i], Active, true
	}
	if i := indexOf(s.archived, id); i >= 0 {
		return s.archived[i], Archived, true
	}
	if i := indexOf(s.trashed, id); i >= 0 {
		return s.trashed[i], Trashed, true
	}
	return domain.Bookmark{}, "", false
}

// Counts returns the size of each collection.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{
		Active:   len(s.active),
		Archived: len(s.archived),
		Trashed:  len(s.trashed),
	}
}

// TrashedBefore returns the ids of trashed bookmarks that entered the trash before cutoff.
func (s *Store) TrashedBefore(cutoff time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, b := range s.trashed {
		if at, ok := s.trashedAt[b.ID]; ok && at.Before(cutoff) {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// ─────────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────────

func indexOf(list []domain.Bookmark, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// removeAt returns a new slice without element i; the input is not modified
// so snapshots handed out earlier stay valid.
func removeAt(list []domain.Bookmark, i int) []domain.Bookmark {
	out := make([]domain.Bookmark, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

// transfer moves id from one list to the end of another.
func transfer(from, to *[]domain.Bookmark, id string) (domain.Bookmark, bool) {
	i := indexOf(*from, id)
	if i < 0 {
		return domain.Bookmark{}, false
	}
	b := (*from)[i]
	*from = removeAt(*from, i)
	*to = append(*to, b)
	return b, true
}

func clone(list []domain.Bookmark) []domain.Bookmark {
	out := make([]domain.Bookmark, len(list))
	copy(out, list)
	return out
}
