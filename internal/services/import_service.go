package services

import (
	"context"
	"io"

	"github.com/vytor/duelrank/internal/errors"
	"github.com/vytor/duelrank/internal/export"
	"github.com/vytor/duelrank/internal/logger"
	"github.com/vytor/duelrank/internal/session"
)

// ImportService moves whole sessions in and out of files
type ImportService interface {
	ExportCSV(ctx context.Context, w io.Writer) error
	ImportCSV(ctx context.Context, r io.Reader) error
	ImportDuels(ctx context.Context, r io.Reader) (export.ReplayResult, error)
}

type importService struct {
	sessions SessionService
	recorder *session.Recorder
}

// NewImportService creates a new ImportService
func NewImportService(sessions SessionService, recorder *session.Recorder) ImportService {
	if recorder == nil {
		recorder = session.NewRecorder(nil, nil)
	}
	return &importService{sessions: sessions, recorder: recorder}
}

func (s *importService) ExportCSV(ctx context.Context, w io.Writer) error {
	st := s.sessions.State(ctx)
	logger.FromContext(ctx).Debug("exporting session: players=%d, matches=%d", len(st.Players), len(st.Matches))
	if err := export.WriteCSV(w, st); err != nil {
		return errors.NewInternalError(err)
	}
	return nil
}

// ImportCSV replaces the live session with the one in r.
func (s *importService) ImportCSV(ctx context.Context, r io.Reader) error {
	log := logger.FromContext(ctx)

	next, err := export.ReadCSV(r, s.sessions.Settings(ctx))
	if err != nil {
		log.Warn("rejected csv import: %v", err)
		return errors.NewBadRequestError(err.Error())
	}
	if err := s.sessions.Replace(ctx, next); err != nil {
		return err
	}
	log.Info("csv imported: players=%d, matches=%d", len(next.Players), len(next.Matches))
	return nil
}

// ImportDuels replays a duel sheet onto an empty session with the current
// settings and swaps it in.
func (s *importService) ImportDuels(ctx context.Context, r io.Reader) (export.ReplayResult, error) {
	log := logger.FromContext(ctx)

	duels, err := export.ParseDuels(r)
	if err != nil {
		log.Warn("rejected duel sheet: %v", err)
		return export.ReplayResult{}, errors.NewBadRequestError(err.Error())
	}

	next := session.NewState(s.sessions.Settings(ctx))
	res, err := export.ReplayDuels(s.recorder, next, duels)
	if err != nil {
		log.Error("failed to replay duels: %v", err)
		return res, appError(err)
	}
	if err := s.sessions.Replace(ctx, next); err != nil {
		return res, err
	}
	log.Info("duel sheet imported: duels=%d, players=%d", res.Duels, res.PlayersAdded)
	return res, nil
}
