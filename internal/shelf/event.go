package shelf

import "strconv"

// EventKind identifies what a store mutation did.
type EventKind string

const (
	EventAdded             EventKind = "added"
	EventPreviewLoaded     EventKind = "preview_loaded"
	EventPreviewFailed     EventKind = "preview_failed"
	EventTrashed           EventKind = "trashed"
	EventArchived          EventKind = "archived"
	EventRestoredFromTrash EventKind = "restored_from_trash"
	EventUnarchived        EventKind = "unarchived"
	EventDeleted           EventKind = "deleted"
	EventBulkTrashed       EventKind = "bulk_trashed"
	EventBulkArchived      EventKind = "bulk_archived"
	EventImported          EventKind = "imported"
	EventRestored          EventKind = "snapshot_restored"
)

// Event describes an applied mutation. Views render it (toast, log line);
// the store itself has no presentation concerns.
type Event struct {
	Kind EventKind `json:"kind"`
	IDs  []string  `json:"ids,omitempty"`
}

// Message returns a short human readable notice for the event.
func (e Event) Message() string {
	switch e.Kind {
	case EventAdded:
		return "Bookmark added"
	case EventPreviewLoaded:
		return "Preview loaded"
	case EventPreviewFailed:
		return "Preview unavailable"
	case EventTrashed:
		return "Bookmark moved to trash"
	case EventArchived:
		return "Bookmark archived"
	case EventRestoredFromTrash:
		return "Bookmark restored from trash"
	case EventUnarchived:
		return "Bookmark restored from archive"
	case EventDeleted:
		return "Bookmark permanently deleted"
	case EventBulkTrashed:
		return plural(len(e.IDs), "bookmark") + " moved to trash"
	case EventBulkArchived:
		return plural(len(e.IDs), "bookmark") + " archived"
	case EventImported:
		return plural(len(e.IDs), "bookmark") + " imported"
	case EventRestored:
		return "Bookmarks restored"
	default:
		return ""
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}
