package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/dmitrijs2005/graphpass/internal/logging"
	"github.com/dmitrijs2005/graphpass/internal/server/blobs"
	"github.com/dmitrijs2005/graphpass/internal/server/images"
	"github.com/dmitrijs2005/graphpass/internal/server/models"
	"github.com/dmitrijs2005/graphpass/internal/server/repositories/accounts"
)

type fixture struct {
	repo   accounts.Repository
	signup *SignupService
	auth   *AuthService
}

func newFixture(t *testing.T, store blobs.Store) *fixture {
	t.Helper()
	if store == nil {
		store = blobs.InlineStore{}
	}
	repo := accounts.NewMemoryRepository()
	return &fixture{
		repo:   repo,
		signup: NewSignupService(repo, images.NewValidator(images.DefaultLimits()), store, logging.Nop()),
		auth:   NewAuthService(repo, store, logging.Nop()),
	}
}

func jpeg(name string) images.Upload {
	return images.NewUpload(name, "image/jpeg", []byte("jpeg:"+name))
}

// memStore offloads image content into a map, like S3Store does into a bucket.
type memStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	n          int
	offloadErr error
	discarded  []string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Offload(_ context.Context, imgs []models.Image) ([]models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.offloadErr != nil {
		return nil, m.offloadErr
	}
	out := make([]models.Image, 0, len(imgs))
	for _, img := range imgs {
		m.n++
		img.StorageKey = fmt.Sprintf("k%d", m.n)
		m.objects[img.StorageKey] = img.Data
		img.Data = nil
		out = append(out, img)
	}
	return out, nil
}

func (m *memStore) Resolve(_ context.Context, imgs []models.Image) ([]models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Image, 0, len(imgs))
	for _, img := range imgs {
		data, ok := m.objects[img.StorageKey]
		if !ok {
			return nil, fmt.Errorf("%w: %s missing", common.ErrorMalformedStoredData, img.StorageKey)
		}
		img.Data = data
		img.StorageKey = ""
		out = append(out, img)
	}
	return out, nil
}

func (m *memStore) Discard(_ context.Context, imgs []models.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, img := range imgs {
		m.discarded = append(m.discarded, img.StorageKey)
		delete(m.objects, img.StorageKey)
	}
	return nil
}
