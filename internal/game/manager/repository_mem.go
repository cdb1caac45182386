package manager

import (
	"context"
	"sync"
)

type memRepo struct {
	mu       sync.Mutex
	balances map[string]Balance
}

func NewMemoryRepo() BalanceRepo {
	return &memRepo{balances: make(map[string]Balance)}
}

func (m *memRepo) Save(ctx context.Context, playerID string, b Balance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[playerID] = b
	return nil
}

func (m *memRepo) Load(ctx context.Context, playerID string) (Balance, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[playerID]
	return b, ok, nil
}

func (m *memRepo) Delete(ctx context.Context, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.balances, playerID)
	return nil
}
