package service

import (
	"context"
	"errors"
	"io"
)

var ErrBlobNotFound = errors.New("blob not found")

type BlobStore interface {
	// Upload writes r to path, replacing any existing object, makes it
	// publicly readable and returns its media link.
	Upload(ctx context.Context, path string, r io.Reader, contentType string, size int64) (string, error)
	// MediaLink returns the public link of path or ErrBlobNotFound.
	MediaLink(ctx context.Context, path string) (string, error)
	// Delete removes path. A missing object is not an error.
	Delete(ctx context.Context, path string) error
}
