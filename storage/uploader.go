// Package storage keeps closure reports in an S3 compatible bucket (Cloudflare R2).
package storage

import (
	"context"
	"io"
)

// StoredObject is what the bucket returns for one upload. Location is the public URL.
type StoredObject struct {
	Key      string
	Location string
	ETag     string
}

// Uploader puts a single object into the bucket.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (*StoredObject, error)
}

var _ Uploader = (*R2Uploader)(nil)
