package blob

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps blobs in a map. Test use only.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	// SaveErr, when set, fails the next Save. Lets tests exercise the
	// rollback path without touching the filesystem.
	SaveErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Save(ctx context.Context, up Upload) (*Stored, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return nil, s.SaveErr
	}
	if len(up.Content) == 0 {
		return nil, ErrEmptyFile
	}
	publicID := uuid.NewString()
	s.blobs[publicID] = up.Content
	return &Stored{
		PublicID:     publicID,
		URL:          "/media/" + publicID,
		ThumbnailURL: "/media/" + publicID + "_thumb.webp",
	}, nil
}

func (s *MemoryStore) Delete(ctx context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, publicID)
	return nil
}

// Len reports how many blobs are stored.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
