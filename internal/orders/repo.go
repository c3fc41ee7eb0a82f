package orders

import (
	"context"
	"sync"

	"github.com/ariefcatur/go-tcp-fabric/internal/model"
)

// Repo is an append-only order log.
type Repo interface {
	Append(ctx context.Context, o model.Order) error
	List(ctx context.Context) ([]model.Order, error)
}

type MemoryOrders struct {
	mu     sync.RWMutex
	orders []model.Order
}

func NewMemoryOrders() *MemoryOrders { return &MemoryOrders{} }

func (m *MemoryOrders) Append(_ context.Context, o model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, o)
	return nil
}

func (m *MemoryOrders) List(_ context.Context) ([]model.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Order, len(m.orders))
	copy(out, m.orders)
	return out, nil
}

func (m *MemoryOrders) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}
