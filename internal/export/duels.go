package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/session"
)

// DrawMarker is what the duel sheet puts in the winner column for a draw.
const DrawMarker = "NUL"

// duelHeaderLines is the number of title rows above the first duel.
const duelHeaderLines = 3

// Duel is one row of a duel sheet.
type Duel struct {
	Number  int
	Player1 string
	Player2 string
	Winner  string
}

// Outcome maps the winner column onto the two slots. Anything other than the
// draw marker or player 1's name counts as a player 2 win.
func (d Duel) Outcome() models.Outcome {
	switch d.Winner {
	case DrawMarker:
		return models.OutcomeDraw
	case d.Player1:
		return models.OutcomePlayer1Win
	default:
		return models.OutcomePlayer2Win
	}
}

// ParseDuels reads a duel sheet: three header lines, then rows of
// number,player1,_,player2,_,winner. Short or blank rows are skipped.
func ParseDuels(r io.Reader) ([]Duel, error) {
	sc := bufio.NewScanner(r)
	var duels []Duel
	line := 0
	for sc.Scan() {
		line++
		if line <= duelHeaderLines {
			continue
		}
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		parts := strings.Split(text, ",")
		if len(parts) < 6 {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: duel number %q: %w", line, parts[0], err)
		}
		d := Duel{
			Number:  n,
			Player1: strings.TrimSpace(parts[1]),
			Player2: strings.TrimSpace(parts[3]),
			Winner:  strings.TrimSpace(parts[5]),
		}
		if d.Player1 == "" || d.Player2 == "" {
			return nil, fmt.Errorf("line %d: duel %d is missing a player", line, n)
		}
		duels = append(duels, d)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read duel sheet: %w", err)
	}
	return duels, nil
}

// ReplayResult summarises a replay.
type ReplayResult struct {
	Duels        int `json:"duels"`
	PlayersAdded int `json:"players_added"`
}

// ReplayDuels records every duel into s in sheet order. Players are matched by
// name and added on first appearance.
func ReplayDuels(rec *session.Recorder, s *session.State, duels []Duel) (ReplayResult, error) {
	var res ReplayResult
	ids := make(map[string]string, len(s.Players))
	for _, p := range s.Players {
		ids[p.Name] = p.ID
	}
	resolve := func(name string) (string, error) {
		if id, ok := ids[name]; ok {
			return id, nil
		}
		p, err := rec.AddPlayer(s, name)
		if err != nil {
			return "", err
		}
		ids[name] = p.ID
		res.PlayersAdded++
		return p.ID, nil
	}

	for _, d := range duels {
		p1, err := resolve(d.Player1)
		if err != nil {
			return res, fmt.Errorf("duel %d: %w", d.Number, err)
		}
		p2, err := resolve(d.Player2)
		if err != nil {
			return res, fmt.Errorf("duel %d: %w", d.Number, err)
		}
		if _, err := rec.Record(s, p1, p2, d.Outcome()); err != nil {
			return res, fmt.Errorf("duel %d: %w", d.Number, err)
		}
		res.Duels++
	}
	return res, nil
}
