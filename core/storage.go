package core

import (
	"context"
	"io"
	"time"
)

// FileStorage is a narrow interface over an external object store; homework
// attachments are the only callers.
type FileStorage interface {
	UploadFile(ctx context.Context, key string, content io.Reader, contentType string) error
	DeleteObject(ctx context.Context, key string) error
	// SignedReadURL returns a pre-signed GET URL valid for ttl.
	SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
