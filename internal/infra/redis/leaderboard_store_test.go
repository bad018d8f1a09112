package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"timed-quiz-service/internal/domain"
)

func TestLeaderboardStoreKeepsLatestAndRanks(t *testing.T) {
	mr, client := newMiniredis(t)
	store := NewLeaderboardStore(client, 3)
	ctx := context.Background()
	base := time.UnixMilli(1_700_000_000_000)

	entries := []domain.LeaderboardEntry{
		{Name: "ada", Score: 12, Timestamp: base},
		{Name: "bob", Score: 40, Timestamp: base.Add(time.Second)},
		{Name: "cy", Score: 12, Timestamp: base.Add(2 * time.Second)},
		{Name: "dee", Score: -3, Timestamp: base.Add(3 * time.Second)},
	}
	for _, e := range entries {
		if err := store.Add(ctx, e); err != nil {
			t.Fatalf("add %s: %v", e.Name, err)
		}
	}

	top, err := store.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	// ada is the oldest attempt and falls out; the rest are ranked by score
	want := []string{"bob", "cy", "dee"}
	if len(top) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(top))
	}
	for i, name := range want {
		if top[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, top[i].Name)
		}
	}

	raw, err := mr.Get(leaderboardKey)
	if err != nil {
		t.Fatalf("expected leaderboard key: %v", err)
	}
	var stored []map[string]any
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		t.Fatalf("decode stored leaderboard: %v", err)
	}
	if stored[0]["name"] != "dee" || stored[0]["ts"] != float64(base.Add(3*time.Second).UnixMilli()) {
		t.Fatalf("expected newest entry first with unix ms timestamp, got %v", stored[0])
	}
}

func TestLeaderboardStoreEmpty(t *testing.T) {
	_, client := newMiniredis(t)
	store := NewLeaderboardStore(client, 10)

	top, err := store.Top(context.Background(), 3)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 0 {
		t.Fatalf("expected empty leaderboard, got %d", len(top))
	}
}

func TestLeaderboardStoreConcurrentAdds(t *testing.T) {
	_, client := newMiniredis(t)
	store := NewLeaderboardStore(client, 10)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry := domain.LeaderboardEntry{Name: fmt.Sprintf("p%d", i), Score: i, Timestamp: time.Now()}
			if err := store.Add(ctx, entry); err != nil {
				t.Errorf("add: %v", err)
			}
		}(i)
	}
	wg.Wait()

	top, err := store.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 4 {
		t.Fatalf("expected all 4 entries kept, got %d", len(top))
	}
}

func TestLeaderboardStoreRejectsCorruptValue(t *testing.T) {
	mr, client := newMiniredis(t)
	mr.Set(leaderboardKey, "not-json")
	store := NewLeaderboardStore(client, 10)

	if _, err := store.Top(context.Background(), 3); err == nil {
		t.Fatalf("expected decode error")
	}
}
