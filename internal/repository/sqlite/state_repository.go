package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/duelrank/internal/logger"
	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/rating"
	"github.com/vytor/duelrank/internal/repository"
	"github.com/vytor/duelrank/internal/session"
	"golang.org/x/sync/errgroup"
)

const (
	settingKFactor       = "k_factor"
	settingInitialRating = "initial_rating"
)

var playerColumns = []string{
	"id", "name", "position", "rating", "wins", "losses", "draws", "last_rating_change",
	"streak_type", "streak_length", "frozen_rank", "frozen_rating", "previous_rank",
	"previous_rating", "created_at",
}

var matchColumns = []string{
	"id", "played_at", "player1_id", "player1_name", "player2_id", "player2_name",
	"player1_rating_before", "player2_rating_before", "player1_rating_after",
	"player2_rating_after", "player1_delta", "player2_delta", "outcome",
}

type stateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a new StateRepository implementation
func NewStateRepository(db *sql.DB) repository.StateRepository {
	return &stateRepository{db: db}
}

func (r *stateRepository) Load(ctx context.Context, defaults rating.Config) (*session.State, error) {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("loading session state")

	state := session.NewState(defaults)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		players, err := r.loadPlayers(gCtx)
		if err != nil {
			return fmt.Errorf("load players: %w", err)
		}
		state.Players = players
		return nil
	})
	g.Go(func() error {
		matches, err := r.loadMatches(gCtx)
		if err != nil {
			return fmt.Errorf("load matches: %w", err)
		}
		state.Matches = matches
		return nil
	})
	g.Go(func() error {
		cfg, err := r.loadSettings(gCtx, defaults)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		state.Rating = cfg
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to load session state: %v", err)
		return nil, err
	}

	log.Info("session loaded: players=%d, matches=%d, k_factor=%g", len(state.Players), len(state.Matches), state.Rating.KFactor)
	return state, nil
}

func (r *stateRepository) loadPlayers(ctx context.Context) ([]models.Player, error) {
	query, args, err := sqlBuilder.Select(playerColumns...).From("players").OrderBy("position ASC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []models.Player{}
	for rows.Next() {
		var p models.Player
		var position int
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.Name, &position, &p.Rating, &p.Wins, &p.Losses, &p.Draws, &p.LastRatingChange,
			&p.StreakType, &p.StreakLength, &p.FrozenRank, &p.FrozenRating, &p.PreviousRank, &p.PreviousRating, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = fromNanos(createdAt)
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *stateRepository) loadMatches(ctx context.Context) ([]models.Match, error) {
	query, args, err := sqlBuilder.Select(matchColumns...).From("matches").OrderBy("seq ASC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []models.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *stateRepository) loadSettings(ctx context.Context, defaults rating.Config) (rating.Config, error) {
	cfg := defaults
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return cfg, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return cfg, err
		}
		switch key {
		case settingKFactor:
			if k, err := strconv.ParseFloat(value, 64); err == nil {
				cfg.KFactor = k
			}
		case settingInitialRating:
			if v, err := strconv.Atoi(value); err == nil {
				cfg.Initial = v
			}
		}
	}
	return cfg, rows.Err()
}

func (r *stateRepository) SaveRoster(ctx context.Context, players []models.Player) error {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("saving roster: players=%d", len(players))

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		return writeRoster(ctx, tx, players)
	})
	if err != nil {
		log.Error("failed to save roster: %v", err)
	}
	return err
}

func (r *stateRepository) AppendMatch(ctx context.Context, m models.Match, players []models.Player) error {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("appending match: id=%s, outcome=%s", m.ID, m.Outcome)

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertMatch(ctx, tx, m); err != nil {
			return fmt.Errorf("insert match %s: %w", m.ID, err)
		}
		return writeRoster(ctx, tx, players)
	})
	if err != nil {
		log.Error("failed to append match: %v", err)
	}
	return err
}

func (r *stateRepository) Reset(ctx context.Context, players []models.Player) error {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Info("clearing match history")

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM matches`); err != nil {
			return err
		}
		return writeRoster(ctx, tx, players)
	})
	if err != nil {
		log.Error("failed to clear history: %v", err)
	}
	return err
}

func (r *stateRepository) Replace(ctx context.Context, state *session.State) error {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Info("replacing session state: players=%d, matches=%d", len(state.Players), len(state.Matches))

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM matches`); err != nil {
			return err
		}
		for _, m := range state.Matches {
			if err := insertMatch(ctx, tx, m); err != nil {
				return fmt.Errorf("insert match %s: %w", m.ID, err)
			}
		}
		if err := writeRoster(ctx, tx, state.Players); err != nil {
			return err
		}
		return writeSettings(ctx, tx, state.Rating)
	})
	if err != nil {
		log.Error("failed to replace session state: %v", err)
	}
	return err
}

func (r *stateRepository) SaveSettings(ctx context.Context, cfg rating.Config) error {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("saving settings: k_factor=%g, initial_rating=%d", cfg.KFactor, cfg.Initial)

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		return writeSettings(ctx, tx, cfg)
	})
	if err != nil {
		log.Error("failed to save settings: %v", err)
	}
	return err
}

// writeRoster upserts every player with its roster position and drops rows
// for players no longer in the roster.
func writeRoster(ctx context.Context, tx *sql.Tx, players []models.Player) error {
	ids := make([]string, 0, len(players))
	for i, p := range players {
		ids = append(ids, p.ID)
		upsert := sqlBuilder.Insert("players").Columns(playerColumns...).Values(
			p.ID, p.Name, i, p.Rating, p.Wins, p.Losses, p.Draws, p.LastRatingChange,
			string(p.StreakType), p.StreakLength, p.FrozenRank, p.FrozenRating, p.PreviousRank,
			p.PreviousRating, toNanos(p.CreatedAt),
		).Suffix(`ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    position = excluded.position,
    rating = excluded.rating,
    wins = excluded.wins,
    losses = excluded.losses,
    draws = excluded.draws,
    last_rating_change = excluded.last_rating_change,
    streak_type = excluded.streak_type,
    streak_length = excluded.streak_length,
    frozen_rank = excluded.frozen_rank,
    frozen_rating = excluded.frozen_rating,
    previous_rank = excluded.previous_rank,
    previous_rating = excluded.previous_rating`)
		if err := execBuilt(ctx, tx, upsert); err != nil {
			return fmt.Errorf("upsert player %s: %w", p.ID, err)
		}
	}
	return execBuilt(ctx, tx, sqlBuilder.Delete("players").Where(squirrel.NotEq{"id": ids}))
}

func insertMatch(ctx context.Context, tx *sql.Tx, m models.Match) error {
	return execBuilt(ctx, tx, sqlBuilder.Insert("matches").Columns(matchColumns...).Values(
		m.ID, toNanos(m.PlayedAt), m.Player1ID, m.Player1Name, m.Player2ID, m.Player2Name,
		m.Player1RatingBefore, m.Player2RatingBefore, m.Player1RatingAfter, m.Player2RatingAfter,
		m.Player1Delta, m.Player2Delta, string(m.Outcome),
	))
}

func writeSettings(ctx context.Context, tx *sql.Tx, cfg rating.Config) error {
	values := map[string]string{
		settingKFactor:       strconv.FormatFloat(cfg.KFactor, 'g', -1, 64),
		settingInitialRating: strconv.Itoa(cfg.Initial),
	}
	for key, value := range values {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value
`, key, value); err != nil {
			return fmt.Errorf("write setting %s: %w", key, err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (models.Match, error) {
	var m models.Match
	var playedAt int64
	err := row.Scan(&m.ID, &playedAt, &m.Player1ID, &m.Player1Name, &m.Player2ID, &m.Player2Name,
		&m.Player1RatingBefore, &m.Player2RatingBefore, &m.Player1RatingAfter, &m.Player2RatingAfter,
		&m.Player1Delta, &m.Player2Delta, &m.Outcome)
	if err != nil {
		return m, err
	}
	m.PlayedAt = fromNanos(playedAt)
	return m, nil
}
