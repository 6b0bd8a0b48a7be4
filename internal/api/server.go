package api

import (
	"context"

	"github.com/vytor/duelrank/internal/jobs"
	"github.com/vytor/duelrank/internal/services"
)

// Pinger is satisfied by *sql.DB and *db.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	DB                 Pinger
	SessionService     services.SessionService
	LeaderboardService services.LeaderboardService
	RotationService    services.RotationService
	HistoryService     services.HistoryService
	ImportService      services.ImportService
	JobQueue           jobs.JobQueue
	CORSOrigins        []string
}
