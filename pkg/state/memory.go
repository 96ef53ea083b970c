package state

import (
	"context"
	"fmt"
	"sync"
)

type InMemoryStateManager struct {
	lock     sync.RWMutex
	snapshot *GameSnapshot
}

func NewInMemoryStateManager(gameID string) *InMemoryStateManager {
	return &InMemoryStateManager{
		snapshot: NewGameSnapshot(gameID),
	}
}

func (m *InMemoryStateManager) Get(ctx context.Context) (*GameSnapshot, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.snapshot.Copy(), nil
}

func (m *InMemoryStateManager) Set(ctx context.Context, snapshot *GameSnapshot) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if snapshot == nil {
		return fmt.Errorf("game snapshot is nil")
	}

	m.snapshot = snapshot.Copy()
	return nil
}

func (m *InMemoryStateManager) Update(ctx context.Context, fn func(snapshot *GameSnapshot)) error {
	if fn == nil {
		return fmt.Errorf("update function is nil")
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	fn(m.snapshot)
	return nil
}
