package storage

import "context"

// ObjectStorage captures the minimal operations upload archiving needs.
type ObjectStorage interface {
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
}

// Noop discards every object; used when archiving is disabled.
type Noop struct{}

func (Noop) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	return nil
}
