package leaderboard

import (
	"sort"

	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/streak"
)

// Rank produces the display rows. Streaks are recomputed first so the table is
// never stale. With a non-empty frozen snapshot the order follows the frozen
// ranks, otherwise the live rating order.
func Rank(players []models.Player, matches []models.Match, snap models.Snapshot, initialRating int) []models.LeaderboardRow {
	streak.Compute(players, matches)

	var order []int
	if len(snap.CurrentRanks) > 0 {
		order = FrozenOrder(players, snap.CurrentRanks)
	} else {
		order = LiveOrder(players)
	}

	rows := make([]models.LeaderboardRow, 0, len(order))
	for pos, idx := range order {
		p := players[idx]
		rows = append(rows, models.LeaderboardRow{
			Position:      pos + 1,
			PlayerID:      p.ID,
			Name:          p.Name,
			Rating:        p.Rating,
			Wins:          p.Wins,
			Losses:        p.Losses,
			Draws:         p.Draws,
			MatchesPlayed: p.MatchesPlayed(),
			WinRate:       p.WinRate(),
			StreakType:    p.StreakType,
			StreakLength:  p.StreakLength,
			RankChange:    rankChange(p.ID, snap),
			RatingChange:  ratingChange(p, snap, initialRating),
		})
	}
	return rows
}

// LiveOrder returns player indexes by rating descending, roster order on ties.
func LiveOrder(players []models.Player) []int {
	order := indexes(len(players))
	sort.SliceStable(order, func(i, j int) bool {
		return players[order[i]].Rating > players[order[j]].Rating
	})
	return order
}

// FrozenOrder returns player indexes by frozen rank. Players added after the
// snapshot was taken have no rank and follow, in live order.
func FrozenOrder(players []models.Player, ranks map[string]int) []int {
	order := LiveOrder(players)
	sort.SliceStable(order, func(i, j int) bool {
		ri, okI := ranks[players[order[i]].ID]
		rj, okJ := ranks[players[order[j]].ID]
		switch {
		case okI && okJ:
			return ri < rj
		case okI != okJ:
			return okI
		default:
			return false
		}
	})
	return order
}

// Capture freezes the live order into per-player rank and rating maps.
func Capture(players []models.Player) (ranks map[string]int, ratings map[string]int) {
	ranks = make(map[string]int, len(players))
	ratings = make(map[string]int, len(players))
	for pos, idx := range LiveOrder(players) {
		ranks[players[idx].ID] = pos + 1
		ratings[players[idx].ID] = players[idx].Rating
	}
	return ranks, ratings
}

// rankChange is positive when the player moved up between the two snapshots.
func rankChange(id string, snap models.Snapshot) int {
	cur, okCur := snap.CurrentRanks[id]
	prev, okPrev := snap.PreviousRanks[id]
	if !okCur || !okPrev {
		return 0
	}
	return prev - cur
}

func ratingChange(p models.Player, snap models.Snapshot, initialRating int) int {
	cur, ok := snap.CurrentRatings[p.ID]
	if !ok {
		cur = p.Rating
	}
	prev, ok := snap.PreviousRatings[p.ID]
	if !ok {
		prev = initialRating
	}
	return cur - prev
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
