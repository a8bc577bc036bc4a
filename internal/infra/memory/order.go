package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"bookmarket/internal/domain/order"
	"bookmarket/internal/infra"

	"github.com/google/uuid"
)

type OrderRepository struct {
	mu    sync.RWMutex
	table map[uuid.UUID]*order.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{table: make(map[uuid.UUID]*order.Order)}
}

func (r *OrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.table[o.ID()]; exists {
		return infra.NewRepoErr(infra.KindDuplicateKey, "order already exists")
	}
	r.table[o.ID()] = o
	return nil
}

func (r *OrderRepository) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.table[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "order not found")
	}
	return o, nil
}

func (r *OrderRepository) Update(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.table[o.ID()]; !ok {
		return infra.NewRepoErr(infra.KindNotFound, "order not found")
	}
	r.table[o.ID()] = o
	return nil
}

func (r *OrderRepository) FindByCustomerID(_ context.Context, customerID uuid.UUID) ([]*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*order.Order
	for _, o := range r.table {
		if o.CustomerID() == customerID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (r *OrderRepository) FindStale(_ context.Context, statuses []order.Status, cutoff time.Time) ([]*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*order.Order
	for _, o := range r.table {
		if slices.Contains(statuses, o.Status()) && o.UpdatedAt().Before(cutoff) {
			result = append(result, o)
		}
	}
	return result, nil
}
