// Package export moves a whole session in and out of tabular files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/rating"
	"github.com/vytor/duelrank/internal/session"
)

const (
	sectionPlayers  = "#players"
	sectionMatches  = "#matches"
	sectionSettings = "#settings"
)

var playerHeader = []string{
	"id", "name", "rating", "wins", "losses", "draws", "last_rating_change", "streak_type",
	"streak_length", "frozen_rank", "frozen_rating", "previous_rank", "previous_rating", "created_at",
}

var matchHeader = []string{
	"id", "played_at", "player1_id", "player1_name", "player2_id", "player2_name",
	"player1_rating_before", "player2_rating_before", "player1_rating_after", "player2_rating_after",
	"player1_delta", "player2_delta", "outcome",
}

var settingsHeader = []string{"k_factor", "initial_rating"}

// WriteCSV writes the roster, the match log and the rating settings as three
// sections, each introduced by a marker row and a header row.
func WriteCSV(w io.Writer, s *session.State) error {
	cw := csv.NewWriter(w)

	records := [][]string{{sectionPlayers}, playerHeader}
	for _, p := range s.Players {
		records = append(records, []string{
			p.ID, p.Name, itoa(p.Rating), itoa(p.Wins), itoa(p.Losses), itoa(p.Draws),
			itoa(p.LastRatingChange), string(p.StreakType), itoa(p.StreakLength),
			itoa(p.FrozenRank), itoa(p.FrozenRating), itoa(p.PreviousRank), itoa(p.PreviousRating),
			formatTime(p.CreatedAt),
		})
	}

	records = append(records, []string{sectionMatches}, matchHeader)
	for _, m := range s.Matches {
		records = append(records, []string{
			m.ID, formatTime(m.PlayedAt), m.Player1ID, m.Player1Name, m.Player2ID, m.Player2Name,
			itoa(m.Player1RatingBefore), itoa(m.Player2RatingBefore),
			itoa(m.Player1RatingAfter), itoa(m.Player2RatingAfter),
			itoa(m.Player1Delta), itoa(m.Player2Delta), string(m.Outcome),
		})
	}

	records = append(records, []string{sectionSettings}, settingsHeader, []string{
		strconv.FormatFloat(s.Rating.KFactor, 'g', -1, 64), itoa(s.Rating.Initial),
	})

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// ReadCSV parses a file produced by WriteCSV. Empty numeric cells read as 0,
// an empty player rating as the initial rating and a missing settings section
// as defaults.
func ReadCSV(r io.Reader, defaults rating.Config) (*session.State, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	state := session.NewState(defaults)
	playerIDs := make(map[string]bool)
	matchIDs := make(map[string]bool)
	section := ""
	expectHeader := false
	for i, rec := range records {
		line := i + 1
		if isBlank(rec) {
			continue
		}
		if marker := strings.TrimSpace(rec[0]); strings.HasPrefix(marker, "#") {
			switch marker {
			case sectionPlayers, sectionMatches, sectionSettings:
				section, expectHeader = marker, true
				continue
			default:
				return nil, fmt.Errorf("line %d: unknown section %q", line, marker)
			}
		}
		if expectHeader {
			expectHeader = false
			continue
		}

		switch section {
		case sectionPlayers:
			p, err := parsePlayer(rec, state.Rating.InitialRating())
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if playerIDs[p.ID] {
				return nil, fmt.Errorf("line %d: duplicate player id %q", line, p.ID)
			}
			playerIDs[p.ID] = true
			state.Players = append(state.Players, p)
		case sectionMatches:
			m, err := parseMatch(rec)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if matchIDs[m.ID] {
				return nil, fmt.Errorf("line %d: duplicate match id %q", line, m.ID)
			}
			matchIDs[m.ID] = true
			state.Matches = append(state.Matches, m)
		case sectionSettings:
			cfg, err := parseSettings(rec, defaults)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			state.Rating = cfg
		default:
			return nil, fmt.Errorf("line %d: row outside of any section", line)
		}
	}

	return state, nil
}

func parsePlayer(rec []string, initial int) (models.Player, error) {
	if len(rec) < 2 {
		return models.Player{}, fmt.Errorf("player row needs at least id and name")
	}
	col := columns(rec)
	p := models.Player{ID: col(0), Name: col(1)}
	if p.ID == "" {
		return p, fmt.Errorf("player row has no id")
	}
	if p.Name == "" {
		return p, fmt.Errorf("player %s has no name", p.ID)
	}

	var err error
	if col(2) == "" {
		p.Rating = initial
	} else if p.Rating, err = strconv.Atoi(col(2)); err != nil {
		return p, fmt.Errorf("rating: %w", err)
	}
	ints := []*int{&p.Wins, &p.Losses, &p.Draws, &p.LastRatingChange}
	for i, dst := range ints {
		if *dst, err = atoiOrZero(col(3 + i)); err != nil {
			return p, fmt.Errorf("%s: %w", playerHeader[3+i], err)
		}
	}
	switch st := models.StreakType(col(7)); st {
	case models.StreakWin, models.StreakLoss:
		p.StreakType = st
	default:
		p.StreakType = models.StreakNone
	}
	ints = []*int{&p.StreakLength, &p.FrozenRank, &p.FrozenRating, &p.PreviousRank, &p.PreviousRating}
	for i, dst := range ints {
		if *dst, err = atoiOrZero(col(8 + i)); err != nil {
			return p, fmt.Errorf("%s: %w", playerHeader[8+i], err)
		}
	}
	if p.CreatedAt, err = parseTime(col(13)); err != nil {
		return p, fmt.Errorf("created_at: %w", err)
	}
	return p, nil
}

func parseMatch(rec []string) (models.Match, error) {
	col := columns(rec)
	m := models.Match{
		ID:          col(0),
		Player1ID:   col(2),
		Player1Name: col(3),
		Player2ID:   col(4),
		Player2Name: col(5),
		Outcome:     models.Outcome(col(12)),
	}
	if m.ID == "" {
		return m, fmt.Errorf("match row has no id")
	}
	if !m.Outcome.Valid() {
		return m, fmt.Errorf("match %s: unknown outcome %q", m.ID, m.Outcome)
	}

	var err error
	if m.PlayedAt, err = parseTime(col(1)); err != nil {
		return m, fmt.Errorf("played_at: %w", err)
	}
	ints := []*int{
		&m.Player1RatingBefore, &m.Player2RatingBefore, &m.Player1RatingAfter,
		&m.Player2RatingAfter, &m.Player1Delta, &m.Player2Delta,
	}
	for i, dst := range ints {
		if *dst, err = atoiOrZero(col(6 + i)); err != nil {
			return m, fmt.Errorf("%s: %w", matchHeader[6+i], err)
		}
	}
	return m, nil
}

func parseSettings(rec []string, defaults rating.Config) (rating.Config, error) {
	col := columns(rec)
	cfg := defaults
	if v := col(0); v != "" {
		k, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("k_factor: %w", err)
		}
		cfg.KFactor = k
	}
	if v := col(1); v != "" {
		initial, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("initial_rating: %w", err)
		}
		cfg.Initial = initial
	}
	return cfg, nil
}

func columns(rec []string) func(int) string {
	return func(i int) string {
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
