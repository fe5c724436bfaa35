package session

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryPreferenceStore(t *testing.T) {
	store := NewMemoryPreferenceStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "u1"); !errors.Is(err, ErrNoPreference) {
		t.Fatalf("fresh store: err = %v, want ErrNoPreference", err)
	}

	if err := store.Set(ctx, "u1", "acme"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	slug, err := store.Get(ctx, "u1")
	if err != nil || slug != "acme" {
		t.Fatalf("Get = %q, %v", slug, err)
	}

	// Preferences are per-user.
	if _, err := store.Get(ctx, "u2"); !errors.Is(err, ErrNoPreference) {
		t.Fatalf("other user sees preference: %v", err)
	}

	// Last explicit switch wins.
	if err := store.Set(ctx, "u1", "beta"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if slug, _ := store.Get(ctx, "u1"); slug != "beta" {
		t.Fatalf("Get after overwrite = %q", slug)
	}

	if err := store.Clear(ctx, "u1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Get(ctx, "u1"); !errors.Is(err, ErrNoPreference) {
		t.Fatalf("after Clear: err = %v, want ErrNoPreference", err)
	}
}
