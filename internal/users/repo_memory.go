package users

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu         sync.RWMutex
	nextID     int64
	byID       map[int64]Account
	byUsername map[string]int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:       make(map[int64]Account),
		byUsername: make(map[string]int64),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, account Account) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byUsername[account.Username]; exists {
		return Account{}, ErrUsernameTaken
	}
	r.nextID++
	account.ID = r.nextID
	account.CreatedAt = time.Now().UTC()
	r.byID[account.ID] = account
	r.byUsername[account.Username] = account.ID
	return account, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.byID[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return account, nil
}

func (r *MemoryRepo) GetByUsername(ctx context.Context, username string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[username]
	if !ok {
		return Account{}, ErrNotFound
	}
	return r.byID[id], nil
}
