package queries

import (
	"context"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/infra"
	"bookmarket/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrListingNotFound = errs.New("listing not found")

type ListingReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error)
	FindByStatus(ctx context.Context, status listing.Status) ([]*listing.Listing, error)
}

type ListingQueries interface {
	GetByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error)
	ListAvailable(ctx context.Context) ([]*listing.Listing, error)
}

type listingQueriesImpl struct {
	store ListingReadStore
}

func NewListingQueries(store ListingReadStore) ListingQueries {
	return &listingQueriesImpl{store: store}
}

func (q *listingQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	l, err := q.store.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, errs.Mark(err, ErrListingNotFound)
	}
	return l, nil
}

func (q *listingQueriesImpl) ListAvailable(ctx context.Context) ([]*listing.Listing, error) {
	return q.store.FindByStatus(ctx, listing.StatusAvailable)
}
