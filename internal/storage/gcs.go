package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSExporter uploads finished videos to a Cloud Storage bucket so they can
// be offered for download.
type GCSExporter struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSExporter(ctx context.Context, bucket, prefix string) (*GCSExporter, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}

	return &GCSExporter{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (e *GCSExporter) Close() error {
	return e.client.Close()
}

// ExportVideo uploads the file and returns its gs:// URL.
func (e *GCSExporter) ExportVideo(ctx context.Context, localPath, objectName string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open video: %w", err)
	}
	defer func() { _ = f.Close() }()

	object := path.Join(e.prefix, objectName)
	w := e.client.Bucket(e.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "video/mp4"

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload video: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finish upload: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", e.bucket, object), nil
}

// ListExports returns the object names of previously exported videos.
func (e *GCSExporter) ListExports(ctx context.Context) ([]string, error) {
	query := &storage.Query{Prefix: e.prefix}

	var names []string
	it := e.client.Bucket(e.bucket).Objects(ctx, query)
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list exports: %w", err)
		}
		names = append(names, attrs.Name)
	}

	return names, nil
}
