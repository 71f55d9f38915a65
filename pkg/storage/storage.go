package storage

import (
	"context"
	"io"
)

// ObjectStorage accepts a file and returns a publicly resolvable URL.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}
