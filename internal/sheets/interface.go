package sheets

import "context"

// ClientInterface is what import jobs need from a sheet downloader.
type ClientInterface interface {
	FetchSheet(ctx context.Context, sheetURL string) ([]byte, error)
}

// Ensure Client implements the interface
var _ ClientInterface = (*Client)(nil)
