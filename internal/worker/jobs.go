package worker

import (
	"bytes"
	"context"
	"io"

	"github.com/vytor/duelrank/internal/export"
	"github.com/vytor/duelrank/internal/logger"
	"github.com/vytor/duelrank/internal/sheets"
)

// DuelImporter replays a duel sheet into the live session.
// Declared here so this package does not import services.
type DuelImporter interface {
	ImportDuels(ctx context.Context, r io.Reader) (export.ReplayResult, error)
}

// ImportDuelsJob replays an uploaded duel sheet in the background.
type ImportDuelsJob struct {
	Importer DuelImporter
	Source   string
	Data     []byte
}

func (j *ImportDuelsJob) Name() string { return "import_duels" }

func (j *ImportDuelsJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"source": j.Source,
		"bytes":  len(j.Data),
	})
	log.Info("starting duel sheet import")

	res, err := j.Importer.ImportDuels(ctx, bytes.NewReader(j.Data))
	if err != nil {
		log.Error("duel sheet import failed after %d duels: %v", res.Duels, err)
		return err
	}
	log.Info("duel sheet import finished: duels=%d, players_added=%d", res.Duels, res.PlayersAdded)
	return nil
}

// ImportSheetJob downloads a published duel sheet and replays it.
type ImportSheetJob struct {
	Client   sheets.ClientInterface
	Importer DuelImporter
	URL      string
}

func (j *ImportSheetJob) Name() string { return "import_sheet" }

func (j *ImportSheetJob) Run(ctx context.Context) error {
	data, err := j.Client.FetchSheet(ctx, j.URL)
	if err != nil {
		return err
	}
	return (&ImportDuelsJob{Importer: j.Importer, Source: j.URL, Data: data}).Run(ctx)
}
