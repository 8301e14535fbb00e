package state

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/futig/blueprint-backend/internal/wizard"
	"github.com/patrickmn/go-cache"
)

var ErrNotFound = errors.New("wizard not found")

// Storage defines the interface for per-user wizard persistence
type Storage interface {
	// Get returns a copy of the user's wizard or ErrNotFound
	Get(ctx context.Context, userID int64) (*wizard.Wizard, error)

	// Set saves a copy of the wizard and refreshes its expiry
	Set(ctx context.Context, userID int64, w *wizard.Wizard) error

	// Delete removes the user's wizard
	Delete(ctx context.Context, userID int64) error
}

// MemoryStorage keeps wizards in process memory and forgets them after ttl of inactivity
type MemoryStorage struct {
	cache *cache.Cache
}

func NewMemoryStorage(ttl time.Duration) *MemoryStorage {
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &MemoryStorage{
		cache: cache.New(ttl, cleanup),
	}
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (s *MemoryStorage) Get(_ context.Context, userID int64) (*wizard.Wizard, error) {
	v, ok := s.cache.Get(key(userID))
	if !ok {
		return nil, ErrNotFound
	}
	w := v.(wizard.Wizard)
	return &w, nil
}

func (s *MemoryStorage) Set(_ context.Context, userID int64, w *wizard.Wizard) error {
	s.cache.SetDefault(key(userID), *w)
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, userID int64) error {
	s.cache.Delete(key(userID))
	return nil
}

// Len reports how many wizards are currently held
func (s *MemoryStorage) Len() int {
	return s.cache.ItemCount()
}
