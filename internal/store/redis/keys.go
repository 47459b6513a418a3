package redis

const (
	// KeyPrefixBookmark is the prefix for bookmark JSON keys
	KeyPrefixBookmark = "linkshelf:bookmark:"
	// KeyPrefixList is the prefix for the ordered id list of a collection
	KeyPrefixList = "linkshelf:list:"
	// KeyAllBookmarks is the set of every persisted bookmark id
	KeyAllBookmarks = "linkshelf:bookmarks:all"
	// KeyTrashedAt is the hash of trashed id -> RFC3339 time
	KeyTrashedAt = "linkshelf:trashed_at"
	// KeySavedAt marks that a snapshot was written at least once
	KeySavedAt = "linkshelf:snapshot:saved_at"
	// KeyPrefixSetting is the prefix for settings values
	KeyPrefixSetting = "linkshelf:settings:"
)

// BookmarkKey returns the Redis key for a bookmark
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}

// ListKey returns the Redis key for a collection's ordered ids
func ListKey(collection string) string {
	return KeyPrefixList + collection
}

// SettingKey returns the Redis key for a setting
func SettingKey(key string) string {
	return KeyPrefixSetting + key
}
