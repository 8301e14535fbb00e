package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/futig/blueprint-backend/internal/wizard"
)

// Manager serializes wizard reads and writes for telegram users.
// Mutations run under a single lock and must not block.
type Manager struct {
	storage Storage
	mu      sync.Mutex
}

func NewManager(storage Storage) *Manager {
	return &Manager{
		storage: storage,
	}
}

// Get returns a snapshot of the user's wizard, starting a new one on first contact
func (m *Manager) Get(ctx context.Context, userID int64) (*wizard.Wizard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.load(ctx, userID)
}

// Update applies fn to the user's wizard and saves the result when fn succeeds.
// The returned snapshot reflects the stored state either way.
func (m *Manager) Update(ctx context.Context, userID int64, fn func(w *wizard.Wizard) error) (*wizard.Wizard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, err := m.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := *w
	if err := fn(w); err != nil {
		return &snapshot, err
	}

	if err := m.storage.Set(ctx, userID, w); err != nil {
		return nil, fmt.Errorf("save wizard: %w", err)
	}

	updated := *w
	return &updated, nil
}

// Restart replaces the user's wizard with a fresh one under a new id
func (m *Manager) Restart(ctx context.Context, userID int64) (*wizard.Wizard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w := wizard.New()
	if err := m.storage.Set(ctx, userID, w); err != nil {
		return nil, fmt.Errorf("save wizard: %w", err)
	}
	return w, nil
}

func (m *Manager) Delete(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.storage.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete wizard: %w", err)
	}
	return nil
}

func (m *Manager) load(ctx context.Context, userID int64) (*wizard.Wizard, error) {
	w, err := m.storage.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		w = wizard.New()
		if err := m.storage.Set(ctx, userID, w); err != nil {
			return nil, fmt.Errorf("save wizard: %w", err)
		}
		return w, nil
	case err != nil:
		return nil, fmt.Errorf("get wizard: %w", err)
	}
	return w, nil
}
