package storage

import "context"

// FileStore persists optimized image bytes. Metadata never lives here;
// the repository owns it. Remove tolerates already-missing files.
type FileStore interface {
	Save(ctx context.Context, filename string, data []byte, contentType string) error
	Remove(ctx context.Context, filename string) error
	URL(filename string) string
}
