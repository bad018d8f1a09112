package redis

import (
	"context"
	"testing"

	"timed-quiz-service/internal/domain"
)

func TestPreferenceStoreRoundTrip(t *testing.T) {
	mr, client := newMiniredis(t)
	store := NewPreferenceStore(client)
	ctx := context.Background()

	if _, ok, err := store.Theme(ctx, "ada"); err != nil || ok {
		t.Fatalf("expected no theme yet, ok=%v err=%v", ok, err)
	}

	if err := store.SetTheme(ctx, "ada", domain.ThemeLight); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if got, _ := mr.Get("theme:ada"); got != "light" {
		t.Fatalf("expected stored light, got %q", got)
	}

	theme, ok, err := store.Theme(ctx, "ada")
	if err != nil || !ok || theme != domain.ThemeLight {
		t.Fatalf("expected light, got %q ok=%v err=%v", theme, ok, err)
	}
}

func TestPreferenceStoreIgnoresUnknownValue(t *testing.T) {
	mr, client := newMiniredis(t)
	mr.Set("theme:ada", "neon")
	store := NewPreferenceStore(client)

	if _, ok, err := store.Theme(context.Background(), "ada"); err != nil || ok {
		t.Fatalf("expected unknown value to read as unset, ok=%v err=%v", ok, err)
	}
}
