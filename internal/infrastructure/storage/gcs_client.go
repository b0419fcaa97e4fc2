package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"userhub/internal/domain/service"
	"userhub/pkg/logger"
)

// Objects up to this size are sent in a single request instead of a
// resumable upload.
const singleRequestUploadLimit = 8 * 1024 * 1024

const publicReadACL = "publicRead"

type CloudStorageClient struct {
	bucket     *storage.BucketHandle
	bucketName string
}

func NewCloudStorageClient(ctx context.Context, bucket *storage.BucketHandle, bucketName string) *CloudStorageClient {
	storageClient := &CloudStorageClient{
		bucket:     bucket,
		bucketName: bucketName,
	}

	if err := storageClient.setBucketCORS(ctx); err != nil {
		logger.Warn("Failed to set CORS configuration on %s: %v", bucketName, err)
	}

	return storageClient
}

var _ service.BlobStore = (*CloudStorageClient)(nil)

// setBucketCORS lets browsers load profile pictures through their media links.
func (c *CloudStorageClient) setBucketCORS(ctx context.Context) error {
	corsConfig := storage.CORS{
		MaxAge:          3600,
		Methods:         []string{"GET", "HEAD", "OPTIONS"},
		Origins:         []string{"*"},
		ResponseHeaders: []string{"Content-Type"},
	}

	bucketAttrs, err := c.bucket.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bucket attributes: %v", err)
	}

	if len(bucketAttrs.CORS) == 0 {
		bucketUpdate := storage.BucketAttrsToUpdate{
			CORS: []storage.CORS{corsConfig},
		}

		if _, err := c.bucket.Update(ctx, bucketUpdate); err != nil {
			return fmt.Errorf("failed to update bucket CORS: %v", err)
		}
	}

	return nil
}

func (c *CloudStorageClient) Upload(ctx context.Context, path string, file io.Reader, contentType string, size int64) (string, error) {
	// Cancelling the writer's context is the only way to abort a partial upload.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wc := c.bucket.Object(path).NewWriter(ctx)
	configureWriter(wc, contentType, size)

	written, err := io.Copy(wc, file)
	if err != nil {
		cancel()
		return "", fmt.Errorf("failed to copy file to GCS: %v", err)
	}

	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %v", err)
	}
	if size > 0 && written != size {
		logger.Warn("Uploaded %d bytes to %s, expected %d", written, path, size)
	}

	return wc.Attrs().MediaLink, nil
}

// configureWriter makes the object public as part of the upload itself, so
// a failed request never leaves a private picture behind.
func configureWriter(wc *storage.Writer, contentType string, size int64) {
	wc.ContentType = contentType
	wc.PredefinedACL = publicReadACL
	// The path is reused on every upload, so clients must revalidate.
	wc.CacheControl = "no-cache"
	if size > 0 && size <= singleRequestUploadLimit {
		wc.ChunkSize = 0
	}
}

func (c *CloudStorageClient) MediaLink(ctx context.Context, path string) (string, error) {
	attrs, err := c.bucket.Object(path).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", service.ErrBlobNotFound
		}
		return "", fmt.Errorf("failed to get object attributes: %v", err)
	}
	return attrs.MediaLink, nil
}

func (c *CloudStorageClient) Delete(ctx context.Context, path string) error {
	if err := c.bucket.Object(path).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %v", err)
	}
	return nil
}
