package listing

import (
	"errors"
	"time"

	"bookmarket/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrAlreadyHeld        = errors.New("listing is already held")
	ErrAlreadySold        = errors.New("listing is already sold")
	ErrAlreadyWithdrawn   = errors.New("listing is already withdrawn")
	ErrNotHeld            = errors.New("listing is not held")
	ErrCannotWithdrawSold = errors.New("cannot withdraw a sold listing")
	ErrHoldNotInFuture    = errors.New("hold expiry must be after the hold time")
)

// Listing is one sellable book copy. All mutation goes through the transition
// methods, each of which returns a new value; a *Listing is never modified
// after construction.
type Listing struct {
	id                uuid.UUID
	book              BookInfo
	sourceAppraisalID uuid.UUID
	purchaseRequestID uuid.UUID
	status            Status
	offerPrice        money.Money
	listingPrice      money.Money
	heldByOrderID     *uuid.UUID
	heldUntil         *time.Time
	soldAt            *time.Time
	withdrawReason    *string
	createdAt         time.Time
	updatedAt         time.Time
}

// NewListing publishes a copy for sale. Listings come into existence when an
// appraisal completes, already Available.
func NewListing(
	book BookInfo,
	sourceAppraisalID, purchaseRequestID uuid.UUID,
	offerPrice, listingPrice money.Money,
	now time.Time,
) (*Listing, error) {
	if offerPrice.Currency() != listingPrice.Currency() {
		return nil, money.ErrCurrencyMismatch
	}

	return &Listing{
		id:                uuid.New(),
		book:              book,
		sourceAppraisalID: sourceAppraisalID,
		purchaseRequestID: purchaseRequestID,
		status:            StatusAvailable,
		offerPrice:        offerPrice,
		listingPrice:      listingPrice,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

func ReconstructListing(
	id uuid.UUID,
	book BookInfo,
	sourceAppraisalID, purchaseRequestID uuid.UUID,
	status Status,
	offerPrice, listingPrice money.Money,
	heldByOrderID *uuid.UUID,
	heldUntil, soldAt *time.Time,
	withdrawReason *string,
	createdAt, updatedAt time.Time,
) *Listing {
	return &Listing{
		id:                id,
		book:              book,
		sourceAppraisalID: sourceAppraisalID,
		purchaseRequestID: purchaseRequestID,
		status:            status,
		offerPrice:        offerPrice,
		listingPrice:      listingPrice,
		heldByOrderID:     heldByOrderID,
		heldUntil:         heldUntil,
		soldAt:            soldAt,
		withdrawReason:    withdrawReason,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (l *Listing) clone() *Listing {
	c := *l
	return &c
}

// Hold reserves the listing for orderID until now+holdFor. Only an Available
// listing can be held; exactly one of two racing holds can observe Available.
func (l *Listing) Hold(orderID uuid.UUID, now time.Time, holdFor time.Duration) (*Listing, error) {
	switch l.status {
	case StatusHeld:
		return nil, ErrAlreadyHeld
	case StatusSold:
		return nil, ErrAlreadySold
	case StatusWithdrawn:
		return nil, ErrAlreadyWithdrawn
	}

	until := now.Add(holdFor)
	if !until.After(now) {
		return nil, ErrHoldNotInFuture
	}

	next := l.clone()
	next.status = StatusHeld
	next.heldByOrderID = &orderID
	next.heldUntil = &until
	next.updatedAt = now
	return next, nil
}

// Release puts a held listing back on the shelf and clears the hold fields.
func (l *Listing) Release(now time.Time) (*Listing, error) {
	if l.status != StatusHeld {
		return nil, ErrNotHeld
	}

	next := l.clone()
	next.status = StatusAvailable
	next.heldByOrderID = nil
	next.heldUntil = nil
	next.updatedAt = now
	return next, nil
}

// MarkSold converts an active hold into a sale. The hold fields are cleared;
// soldAt is the only trace of the transaction on the listing side.
func (l *Listing) MarkSold(now time.Time) (*Listing, error) {
	if l.status != StatusHeld {
		return nil, ErrNotHeld
	}

	soldAt := now
	next := l.clone()
	next.status = StatusSold
	next.heldByOrderID = nil
	next.heldUntil = nil
	next.soldAt = &soldAt
	next.updatedAt = now
	return next, nil
}

// Withdraw pulls the listing off the marketplace. Succeeds from Available or
// Held (dropping any hold); sold and already-withdrawn listings stay put.
func (l *Listing) Withdraw(reason string, now time.Time) (*Listing, error) {
	switch l.status {
	case StatusSold:
		return nil, ErrCannotWithdrawSold
	case StatusWithdrawn:
		return nil, ErrAlreadyWithdrawn
	}

	next := l.clone()
	next.status = StatusWithdrawn
	next.heldByOrderID = nil
	next.heldUntil = nil
	if reason != "" {
		next.withdrawReason = &reason
	}
	next.updatedAt = now
	return next, nil
}

// IsHoldExpired is a pure query; expiry is only realized when the sweep
// releases the listing.
func (l *Listing) IsHoldExpired(now time.Time) bool {
	return l.status == StatusHeld && l.heldUntil != nil && now.After(*l.heldUntil)
}

func (l *Listing) IsHeldBy(orderID uuid.UUID) bool {
	return l.status == StatusHeld && l.heldByOrderID != nil && *l.heldByOrderID == orderID
}

func (l *Listing) ID() uuid.UUID                { return l.id }
func (l *Listing) Book() BookInfo               { return l.book }
func (l *Listing) SourceAppraisalID() uuid.UUID { return l.sourceAppraisalID }
func (l *Listing) PurchaseRequestID() uuid.UUID { return l.purchaseRequestID }
func (l *Listing) Status() Status               { return l.status }
func (l *Listing) OfferPrice() money.Money      { return l.offerPrice }
func (l *Listing) ListingPrice() money.Money    { return l.listingPrice }
func (l *Listing) HeldByOrderID() *uuid.UUID    { return l.heldByOrderID }
func (l *Listing) HeldUntil() *time.Time        { return l.heldUntil }
func (l *Listing) SoldAt() *time.Time           { return l.soldAt }
func (l *Listing) WithdrawReason() *string      { return l.withdrawReason }
func (l *Listing) CreatedAt() time.Time         { return l.createdAt }
func (l *Listing) UpdatedAt() time.Time         { return l.updatedAt }
