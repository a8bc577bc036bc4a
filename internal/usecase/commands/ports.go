package commands

import (
	"context"
	"time"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/domain/money"
	"bookmarket/internal/domain/order"
	"bookmarket/internal/domain/user"

	"github.com/google/uuid"
)

type ListingRepository interface {
	Create(ctx context.Context, l *listing.Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error)
	// UpdateIfStatus persists next only while the stored row is still in
	// expected status. This is the atomic check-and-set the hold handoff
	// relies on; a lost race surfaces as infra.KindConflict.
	UpdateIfStatus(ctx context.Context, next *listing.Listing, expected listing.Status) error
	// UpdateIfHeldBy persists next only while the stored row is Held by the
	// given order. A stale canceller whose hold has since moved to another
	// order must not strip the new holder; mismatches surface as
	// infra.KindConflict.
	UpdateIfHeldBy(ctx context.Context, next *listing.Listing, holder uuid.UUID) error
	FindByStatus(ctx context.Context, status listing.Status) ([]*listing.Listing, error)
	FindExpiredHeld(ctx context.Context, now time.Time) ([]*listing.Listing, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	Update(ctx context.Context, o *order.Order) error
	FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*order.Order, error)
	// FindStale returns orders in one of the given statuses whose updatedAt is
	// older than cutoff. Used by the checkout-expiry sweep.
	FindStale(ctx context.Context, statuses []order.Status, cutoff time.Time) ([]*order.Order, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByEmail(ctx context.Context, email user.Email) (*user.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// ListingSnapshot is the write-side picture of a listing as seen across the
// domain boundary. The order side never touches the listing aggregate itself.
type ListingSnapshot struct {
	ID        uuid.UUID
	ISBN      string
	Title     string
	Author    string
	Condition listing.Condition
	Price     money.Money
	Status    listing.Status
}

// ListingClient is the order domain's only channel to listings. The checkout
// saga is written against this contract alone; swapping the transport must not
// change the saga. Implementations map their failures onto ErrListingNotFound,
// ErrListingAlreadyHeld, ErrListingAlreadySold and ErrListingNotHeld.
type ListingClient interface {
	GetByID(ctx context.Context, listingID uuid.UUID) (*ListingSnapshot, error)
	HoldForOrder(ctx context.Context, listingID, orderID uuid.UUID) error
	// ReleaseHold and MarkSold act only on the caller's own hold. If the
	// listing is now held by a different order both report ErrListingNotHeld.
	ReleaseHold(ctx context.Context, listingID, orderID uuid.UUID) error
	MarkSold(ctx context.Context, listingID, orderID uuid.UUID) error
}
