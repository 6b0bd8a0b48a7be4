package jobs

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueDuelImport(source string, data []byte) error
	EnqueueSheetImport(sheetURL string) error
}
