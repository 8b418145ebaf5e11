package memory

import (
	"context"
	"sync"

	"go-jobboard-backend/internal/domain"
)

// BlobStore keeps uploaded files in memory. URLs use the memory:// scheme.
type BlobStore struct {
	mu      sync.Mutex
	objects map[string]domain.BlobObject
}

var _ domain.BlobStore = (*BlobStore)(nil)

func NewBlobStore() *BlobStore {
	return &BlobStore{objects: make(map[string]domain.BlobObject)}
}

func (b *BlobStore) Store(_ context.Context, obj domain.BlobObject) (*domain.FileReference, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	obj.Data = append([]byte(nil), obj.Data...)
	b.objects[obj.Key] = obj
	return &domain.FileReference{BlobID: obj.Key, URL: "memory://" + obj.Key}, nil
}

func (b *BlobStore) Delete(_ context.Context, blobID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.objects, blobID)
	return nil
}

// Has reports whether a blob is currently stored.
func (b *BlobStore) Has(blobID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.objects[blobID]
	return ok
}

func (b *BlobStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.objects)
}
