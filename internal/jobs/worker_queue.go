package jobs

import (
	"github.com/vytor/duelrank/internal/sheets"
	"github.com/vytor/duelrank/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	importPool  *worker.Pool
	importer    worker.DuelImporter
	sheetClient sheets.ClientInterface
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(importPool *worker.Pool, importer worker.DuelImporter, sheetClient sheets.ClientInterface) JobQueue {
	return &WorkerQueue{
		importPool:  importPool,
		importer:    importer,
		sheetClient: sheetClient,
	}
}

func (q *WorkerQueue) EnqueueDuelImport(source string, data []byte) error {
	return q.importPool.Submit(&worker.ImportDuelsJob{
		Importer: q.importer,
		Source:   source,
		Data:     data,
	})
}

func (q *WorkerQueue) EnqueueSheetImport(sheetURL string) error {
	if err := sheets.ValidateURL(sheetURL); err != nil {
		return err
	}
	return q.importPool.Submit(&worker.ImportSheetJob{
		Client:   q.sheetClient,
		Importer: q.importer,
		URL:      sheetURL,
	})
}
