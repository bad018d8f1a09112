package domain

import "sort"

const (
	// LeaderboardSize is how many of the latest attempts are retained.
	LeaderboardSize = 10
	// LeaderboardDisplay is how many entries the results screen shows.
	LeaderboardDisplay = 3
)

// RankLeaderboard sorts in place: score descending, then the earlier timestamp first.
func RankLeaderboard(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
}

// RetainRecent keeps the max most recent entries, newest first. Ranking happens on read.
func RetainRecent(entries []LeaderboardEntry, max int) []LeaderboardEntry {
	if max <= 0 {
		max = LeaderboardSize
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if len(entries) > max {
		entries = entries[:max]
	}
	return entries
}

// TopN returns a ranked copy of at most n entries.
func TopN(entries []LeaderboardEntry, n int) []LeaderboardEntry {
	out := make([]LeaderboardEntry, len(entries))
	copy(out, entries)
	RankLeaderboard(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
