package storage

import (
	"context"
	"io"
)

// Options conveys upload destination metadata.
type Options struct {
	Bucket        string
	KeyPrefix     string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// Service uploads user avatars to remote object storage and hands back a
// retrievable URL.
type Service interface {
	UploadObject(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}
