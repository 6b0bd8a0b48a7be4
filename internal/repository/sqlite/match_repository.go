package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/duelrank/internal/logger"
	"github.com/vytor/duelrank/internal/models"
	"github.com/vytor/duelrank/internal/repository"
)

type matchRepository struct {
	db *sql.DB
}

// NewMatchRepository creates a new MatchRepository implementation
func NewMatchRepository(db *sql.DB) repository.MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Get(ctx context.Context, id string) (*models.Match, error) {
	log := logger.FromContext(ctx).WithPrefix("match_repo")
	log.Debug("getting match: id=%s", id)

	query, args, err := sqlBuilder.Select(matchColumns...).From("matches").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	m, err := scanMatch(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("match not found: id=%s", id)
		} else {
			log.Error("failed to get match: %v", err)
		}
		return nil, err
	}
	return &m, nil
}

func applyMatchFilter(query squirrel.SelectBuilder, filter models.MatchFilter) squirrel.SelectBuilder {
	if filter.PlayerID != "" {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"player1_id": filter.PlayerID},
			squirrel.Eq{"player2_id": filter.PlayerID},
		})
	}
	if filter.Outcome != "" {
		query = query.Where(squirrel.Eq{"outcome": string(filter.Outcome)})
	}
	if filter.Since != nil {
		query = query.Where(squirrel.GtOrEq{"played_at": toNanos(*filter.Since)})
	}
	if filter.Until != nil {
		query = query.Where(squirrel.Lt{"played_at": toNanos(*filter.Until)})
	}
	return query
}

func (r *matchRepository) List(ctx context.Context, filter models.MatchFilter) ([]models.Match, error) {
	log := logger.FromContext(ctx).WithPrefix("match_repo")
	log.Debug("listing matches with filter: player_id=%s, outcome=%s, limit=%d, offset=%d",
		filter.PlayerID, filter.Outcome, filter.Limit, filter.Offset)

	query := applyMatchFilter(sqlBuilder.Select(matchColumns...).From("matches"), filter)

	orderDir := "DESC"
	if filter.OrderDir == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy("played_at "+orderDir, "seq "+orderDir)

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		log.Error("failed to list matches: %v", err)
		return nil, err
	}
	defer rows.Close()
	matches := []models.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Error("failed to scan match row: %v", err)
			return nil, err
		}
		matches = append(matches, m)
	}
	log.Debug("found %d matches", len(matches))
	return matches, rows.Err()
}

func (r *matchRepository) Count(ctx context.Context, filter models.MatchFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("match_repo")

	query := applyMatchFilter(sqlBuilder.Select("COUNT(*)").From("matches"), filter)
	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build count query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sql, args...).Scan(&count); err != nil {
		log.Error("failed to count matches: %v", err)
		return 0, err
	}
	return count, nil
}
