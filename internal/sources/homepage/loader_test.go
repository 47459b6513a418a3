package homepage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookmarks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoadEntries(t *testing.T) {
	path := writeYAML(t, `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
    - Go docs:
        - abbr: GO
          href: https://go.dev/doc
- Social:
    - Reddit:
        - icon: reddit.png
          href: https://reddit.com/
`)

	entries, err := NewLoader(path).LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries() error = %v", err)
	}

	want := []struct{ url, title string }{
		{"https://github.com/", "Github"},
		{"https://go.dev/doc", "Go docs"},
		{"https://reddit.com/", "Reddit"},
	}
	if len(entries) != len(want) {
		t.Fatalf("LoadEntries() returned %d entries, want %d", len(entries), len(want))
	}
	for i, w := range want {
		if entries[i].URL != w.url || entries[i].Title != w.title {
			t.Errorf("entry[%d] = %+v, want %s %q", i, entries[i], w.url, w.title)
		}
	}
}

func TestLoaderLoadWithTemplateVariables(t *testing.T) {
	path := writeYAML(t, `---
- Private:
    - Secret:
        - href: {{HOMEPAGE_VAR_SECRET_URL}}
    - Public:
        - href: https://example.com
`)

	entries, err := NewLoader(path).LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries() error = %v", err)
	}
	if len(entries) != 1 || entries[0].URL != "https://example.com" {
		t.Errorf("LoadEntries() = %+v, want only the public bookmark", entries)
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	_, err := NewLoader("/nonexistent/path/bookmarks.yaml").Load()
	if err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestLoaderLoadInvalidYAML(t *testing.T) {
	path := writeYAML(t, "- : [unclosed")
	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Load() with invalid yaml should return error")
	}
}

func TestMapEntriesEmpty(t *testing.T) {
	_, err := MapEntries(BookmarksConfig{})
	if !errors.Is(err, ErrNoBookmarks) {
		t.Errorf("MapEntries() error = %v, want ErrNoBookmarks", err)
	}
}

func TestMapEntriesSkipsDuplicates(t *testing.T) {
	config := BookmarksConfig{
		{
			"A": []map[string][]BookmarkEntry{
				{"One": {{Href: "https://same.example"}}},
				{"Two": {{Href: " https://same.example "}}},
				{"Empty": {}},
			},
		},
	}

	entries, err := MapEntries(config)
	if err != nil {
		t.Fatalf("MapEntries() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Title != "One" {
		t.Errorf("MapEntries() = %+v, want single entry titled One", entries)
	}
}

func TestStripTemplateVariablesFunc(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "single template variable",
			input:    []byte("url: {{HOMEPAGE_VAR_URL}}"),
			expected: "url: \"\"",
		},
		{
			name:     "no template variables",
			input:    []byte("plain text"),
			expected: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := stripTemplateVariables(tt.input)
			if string(result) != tt.expected {
				t.Errorf("stripTemplateVariables() = %q, want %q", string(result), tt.expected)
			}
		})
	}
}
