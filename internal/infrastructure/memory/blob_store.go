package memory

import (
	"context"
	"fmt"
	"io"
	"sync"

	"userhub/internal/domain/service"
)

type Blob struct {
	Data        []byte
	ContentType string
	Generation  int64
}

// BlobStore keeps objects in memory and hands out links under baseURL.
type BlobStore struct {
	mu         sync.RWMutex
	baseURL    string
	objects    map[string]Blob
	generation int64
}

func NewBlobStore(baseURL string) *BlobStore {
	return &BlobStore{baseURL: baseURL, objects: make(map[string]Blob)}
}

var _ service.BlobStore = (*BlobStore)(nil)

func (b *BlobStore) Upload(ctx context.Context, path string, r io.Reader, contentType string, size int64) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.generation++
	b.objects[path] = Blob{Data: data, ContentType: contentType, Generation: b.generation}
	return b.link(path, b.generation), nil
}

func (b *BlobStore) MediaLink(ctx context.Context, path string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, ok := b.objects[path]
	if !ok {
		return "", service.ErrBlobNotFound
	}
	return b.link(path, obj.Generation), nil
}

func (b *BlobStore) Delete(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, path)
	return nil
}

// Object returns the stored blob at path.
func (b *BlobStore) Object(path string) (Blob, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, ok := b.objects[path]
	return obj, ok
}

func (b *BlobStore) link(path string, generation int64) string {
	return fmt.Sprintf("%s/%s?generation=%d&alt=media", b.baseURL, path, generation)
}
