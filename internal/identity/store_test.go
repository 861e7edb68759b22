package identity

import (
	"context"
	"strings"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "0xABC", "Alice"); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Address lookup is case-insensitive: the key is the normalized form.
	name, err := store.Get(ctx, "0xabc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if name != "Alice" {
		t.Errorf("name = %q, want %q", name, "Alice")
	}
}

func TestMemoryStoreUnknownAddressIsUnset(t *testing.T) {
	store := NewMemoryStore()

	name, err := store.Get(context.Background(), "0xnobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if name != "" {
		t.Errorf("name = %q, want empty", name)
	}
}

func TestMemoryStoreRejectsInvalidNames(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{"", "   ", strings.Repeat("a", 33)} {
		if err := store.Set(ctx, "0xabc", name); err == nil {
			t.Errorf("Set(%q) succeeded, want error", name)
		}
	}
}

func TestMemoryStoreTrimsBeforePersisting(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "0xabc", "  Alice  "); err != nil {
		t.Fatalf("set: %v", err)
	}
	name, _ := store.Get(ctx, "0xabc")
	if name != "Alice" {
		t.Errorf("name = %q, want trimmed %q", name, "Alice")
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Set(ctx, "0xabc", "Alice")
	_ = store.Set(ctx, "0xabc", "Bob")

	name, _ := store.Get(ctx, "0xabc")
	if name != "Bob" {
		t.Errorf("name = %q, want %q", name, "Bob")
	}
}

func TestNameKeyLayout(t *testing.T) {
	if got := NameKey("0xAbCd"); got != "userName_0xabcd" {
		t.Errorf("NameKey = %q, want %q", got, "userName_0xabcd")
	}
}
