package streak

import (
	"sort"

	"github.com/vytor/duelrank/internal/models"
)

// Compute recomputes every player's current streak from the full match log and
// writes it back into players. Nothing from a previous run is trusted.
func Compute(players []models.Player, matches []models.Match) {
	order := recentFirst(matches)
	for i := range players {
		players[i].StreakType, players[i].StreakLength = walk(players[i].ID, matches, order)
	}
}

// ForPlayer returns the streak of a single player.
func ForPlayer(playerID string, matches []models.Match) (models.StreakType, int) {
	return walk(playerID, matches, recentFirst(matches))
}

// recentFirst returns match indexes ordered newest first: timestamp descending,
// later insertion first on equal timestamps.
func recentFirst(matches []models.Match) []int {
	order := make([]int, len(matches))
	for i := range order {
		order[i] = len(matches) - 1 - i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return matches[order[a]].PlayedAt.After(matches[order[b]].PlayedAt)
	})
	return order
}

func walk(playerID string, matches []models.Match, order []int) (models.StreakType, int) {
	kind := models.StreakNone
	length := 0
	for _, idx := range order {
		var step models.StreakType
		switch matches[idx].ResultFor(playerID) {
		case models.ResultNotInvolved:
			continue
		case models.ResultWin:
			step = models.StreakWin
		case models.ResultLoss:
			step = models.StreakLoss
		default:
			// a draw ends the run, and a leading draw means no run at all
			return kind, length
		}
		if kind == models.StreakNone {
			kind = step
		} else if step != kind {
			break
		}
		length++
	}
	return kind, length
}
