package homepage

import (
	"errors"
	"sort"
	"strings"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
)

// ErrNoBookmarks is returned when a config holds no usable bookmark.
var ErrNoBookmarks = errors.New("no valid bookmarks found in config")

// MapEntries converts BookmarksConfig to import entries, in file order.
// The bookmark name becomes the title. Entries without an href, and repeated
// hrefs, are skipped.
func MapEntries(config BookmarksConfig) ([]domain.ImportEntry, error) {
	entries := make([]domain.ImportEntry, 0)
	seen := make(map[string]bool)

	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			for _, bookmarkMap := range category[categoryName] {
				for _, bookmarkName := range sortedKeys(bookmarkMap) {
					entryList := bookmarkMap[bookmarkName]
					// Each bookmark has a list with a single entry
					if len(entryList) == 0 {
						continue
					}
					entry := entryList[0]

					href := strings.TrimSpace(entry.Href)
					if href == "" || seen[href] {
						continue
					}
					seen[href] = true

					title := strings.TrimSpace(bookmarkName)
					if title == "" {
						title = entry.Abbr
					}

					entries = append(entries, domain.ImportEntry{
						URL:   href,
						Title: title,
					})
				}
			}
		}
	}

	if len(entries) == 0 {
		return nil, ErrNoBookmarks
	}

	return entries, nil
}

// sortedKeys gives map iteration a stable order. Homepage files carry one
// key per map, so this only matters for hand-written files.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
