package preview

import (
	"context"
	"errors"
	"testing"
)

type memorySlot struct {
	value  string
	setErr error
}

func (m *memorySlot) Get(context.Context) (string, error) { return m.value, nil }

func (m *memorySlot) Set(_ context.Context, v string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.value = v
	return nil
}

func (m *memorySlot) Clear(context.Context) error {
	m.value = ""
	return nil
}

func TestNewCredentialReadsSlotOnce(t *testing.T) {
	slot := &memorySlot{value: "  abc123  "}
	cred, err := NewCredential(context.Background(), slot)
	if err != nil {
		t.Fatalf("NewCredential() error = %v", err)
	}
	if cred.Key() != "abc123" {
		t.Errorf("Key() = %q, want abc123", cred.Key())
	}

	// Later slot changes are not observed; the credential is the source of truth.
	slot.value = "other"
	if cred.Key() != "abc123" {
		t.Errorf("Key() = %q after external slot change, want abc123", cred.Key())
	}
}

func TestCredentialSetAndClear(t *testing.T) {
	slot := &memorySlot{}
	cred, err := NewCredential(context.Background(), slot)
	if err != nil {
		t.Fatalf("NewCredential() error = %v", err)
	}
	if cred.Configured() {
		t.Fatal("Configured() = true on empty slot")
	}

	if err := cred.Set(context.Background(), "key-0001"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if slot.value != "key-0001" {
		t.Errorf("slot value = %q, want key-0001", slot.value)
	}
	if got := cred.Masked(); got != "****0001" {
		t.Errorf("Masked() = %q, want ****0001", got)
	}

	if err := cred.Set(context.Background(), "   "); err != nil {
		t.Fatalf("Set(blank) error = %v", err)
	}
	if cred.Configured() || slot.value != "" {
		t.Error("Set(blank) should clear the credential and the slot")
	}
}

func TestCredentialSetFailureKeepsOldKey(t *testing.T) {
	slot := &memorySlot{value: "old"}
	cred, _ := NewCredential(context.Background(), slot)
	slot.setErr = errors.New("disk full")

	if err := cred.Set(context.Background(), "new"); err == nil {
		t.Fatal("Set() should fail when the slot fails")
	}
	if cred.Key() != "old" {
		t.Errorf("Key() = %q, want old", cred.Key())
	}
}
