package storage

import "context"

// Exporter publishes a finished video to object storage for download.
type Exporter interface {
	ExportVideo(ctx context.Context, localPath, objectName string) (string, error)
}
