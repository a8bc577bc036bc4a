package memory

import (
	"context"
	"sync"
	"time"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/infra"

	"github.com/google/uuid"
)

// ListingRepository is the in-memory listing adapter. A single mutex guards
// the table, which makes UpdateIfStatus a true atomic check-and-set: the
// status comparison and the swap happen under one critical section.
type ListingRepository struct {
	mu    sync.RWMutex
	table map[uuid.UUID]*listing.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{table: make(map[uuid.UUID]*listing.Listing)}
}

func (r *ListingRepository) Create(_ context.Context, l *listing.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.table[l.ID()]; exists {
		return infra.NewRepoErr(infra.KindDuplicateKey, "listing already exists")
	}
	r.table[l.ID()] = l
	return nil
}

func (r *ListingRepository) FindByID(_ context.Context, id uuid.UUID) (*listing.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.table[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "listing not found")
	}
	return l, nil
}

func (r *ListingRepository) UpdateIfStatus(_ context.Context, next *listing.Listing, expected listing.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.table[next.ID()]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "listing not found")
	}
	if current.Status() != expected {
		return infra.NewRepoErr(infra.KindConflict, "listing status changed")
	}
	r.table[next.ID()] = next
	return nil
}

func (r *ListingRepository) UpdateIfHeldBy(_ context.Context, next *listing.Listing, holder uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.table[next.ID()]
	if !ok {
		return infra.NewRepoErr(infra.KindNotFound, "listing not found")
	}
	hb := current.HeldByOrderID()
	if current.Status() != listing.StatusHeld || hb == nil || *hb != holder {
		return infra.NewRepoErr(infra.KindConflict, "listing not held by order")
	}
	r.table[next.ID()] = next
	return nil
}

func (r *ListingRepository) FindByStatus(_ context.Context, status listing.Status) ([]*listing.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*listing.Listing
	for _, l := range r.table {
		if l.Status() == status {
			result = append(result, l)
		}
	}
	return result, nil
}

func (r *ListingRepository) FindExpiredHeld(_ context.Context, now time.Time) ([]*listing.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*listing.Listing
	for _, l := range r.table {
		if l.IsHoldExpired(now) {
			result = append(result, l)
		}
	}
	return result, nil
}
