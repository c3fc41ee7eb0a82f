package products

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/ariefcatur/go-tcp-fabric/internal/model"
)

var ErrProductNotFound = errors.New("product not found")

type Repo interface {
	Create(ctx context.Context, p model.Product) error
	Get(ctx context.Context, id string) (model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	// AdjustStock adds delta to a tracked stock, flooring at zero.
	// Untracked products are returned unchanged.
	AdjustStock(ctx context.Context, id string, delta int) (model.Product, error)
}

type MemoryProducts struct {
	mu   sync.RWMutex
	byID map[string]model.Product
}

func NewMemoryProducts() *MemoryProducts {
	return &MemoryProducts{byID: make(map[string]model.Product)}
}

func (m *MemoryProducts) Create(_ context.Context, p model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ID] = clone(p)
	return nil
}

func (m *MemoryProducts) Get(_ context.Context, id string) (model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byID[id]
	if !ok {
		return model.Product{}, ErrProductNotFound
	}
	return clone(p), nil
}

// List returns products in id order.
func (m *MemoryProducts) List(_ context.Context) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i].ID, out[j].ID) })
	return out, nil
}

func (m *MemoryProducts) AdjustStock(_ context.Context, id string, delta int) (model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return model.Product{}, ErrProductNotFound
	}
	if p.Stock != nil {
		n := max(*p.Stock+delta, 0)
		p.Stock = &n
		m.byID[id] = p
	}
	return clone(p), nil
}

func clone(p model.Product) model.Product {
	if p.Stock != nil {
		n := *p.Stock
		p.Stock = &n
	}
	return p
}

// lessID orders numeric ids numerically and falls back to string order.
func lessID(a, b string) bool {
	ai, errA := strconv.ParseInt(a, 10, 64)
	bi, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}
