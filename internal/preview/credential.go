package preview

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Slot is a single persisted string value (set/get/clear).
// Get returns an empty string when nothing is stored.
type Slot interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, value string) error
	Clear(ctx context.Context) error
}

// Credential holds the preview provider API key.
// The value is read from the slot once at construction; Set and Clear
// write through to the slot before updating the in-memory copy.
type Credential struct {
	mu   sync.RWMutex
	key  string
	slot Slot
}

// NewCredential loads the current key from slot. A nil slot keeps the key in memory only.
func NewCredential(ctx context.Context, slot Slot) (*Credential, error) {
	c := &Credential{slot: slot}
	if slot == nil {
		return c, nil
	}

	key, err := slot.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read preview key: %w", err)
	}
	c.key = strings.TrimSpace(key)
	return c, nil
}

// StaticCredential returns an in-memory credential holding key.
func StaticCredential(key string) *Credential {
	return &Credential{key: strings.TrimSpace(key)}
}

// Key returns the configured key, or "" if none.
func (c *Credential) Key() string {
	if c == nil {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key
}

// Configured reports whether a key is set.
func (c *Credential) Configured() bool {
	return c.Key() != ""
}

// Set stores a new key. A blank key clears the credential.
func (c *Credential) Set(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return c.Clear(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.slot != nil {
		if err := c.slot.Set(ctx, key); err != nil {
			return fmt.Errorf("failed to persist preview key: %w", err)
		}
	}
	c.key = key
	return nil
}

// Clear removes the key.
func (c *Credential) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.slot != nil {
		if err := c.slot.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear preview key: %w", err)
		}
	}
	c.key = ""
	return nil
}

// Masked returns the key with everything but the last four characters hidden.
func (c *Credential) Masked() string {
	key := c.Key()
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
