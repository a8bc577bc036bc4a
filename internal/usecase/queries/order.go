package queries

import (
	"context"

	"bookmarket/internal/domain/order"
	"bookmarket/internal/infra"
	"bookmarket/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errs.New("order not found")

type OrderReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*order.Order, error)
}

type OrderQueries interface {
	// GetByID scopes reads to the requesting customer's own orders.
	GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*order.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*order.Order, error)
}

type orderQueriesImpl struct {
	store OrderReadStore
}

func NewOrderQueries(store OrderReadStore) OrderQueries {
	return &orderQueriesImpl{store: store}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*order.Order, error) {
	o, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, errs.Mark(err, ErrOrderNotFound)
	}
	if o.CustomerID() != actor {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (q *orderQueriesImpl) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*order.Order, error) {
	return q.store.FindByCustomerID(ctx, customerID)
}
