package accounts

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/graphpass/internal/common"
	"github.com/dmitrijs2005/graphpass/internal/keylock"
	"github.com/dmitrijs2005/graphpass/internal/server/models"
)

// MemoryRepository keeps accounts in process memory. Records are cloned on
// the way in and out so callers never share state with the store.
type MemoryRepository struct {
	mu     sync.RWMutex
	data   map[string]*models.Account
	nextID int64
	locks  *keylock.Locker
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		data:  make(map[string]*models.Account),
		locks: keylock.New(),
	}
}

func (r *MemoryRepository) Get(ctx context.Context, email string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.data[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return acc.Clone(), nil
}

func (r *MemoryRepository) Create(ctx context.Context, acc *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[acc.Email]; ok {
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, acc.Email)
	}
	r.nextID++
	acc.ID = r.nextID
	r.data[acc.Email] = acc.Clone()

	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, email string, fn MutateFunc) (*models.Account, error) {
	unlock := r.locks.Lock(email)
	defer unlock()

	acc, err := r.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := apply(acc, fn); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.data[email] = acc.Clone()
	r.mu.Unlock()

	return acc, nil
}
