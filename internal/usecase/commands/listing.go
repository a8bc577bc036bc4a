package commands

import (
	"context"
	"errors"
	"log/slog"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/domain/money"
	"bookmarket/internal/events"
	"bookmarket/internal/infra"
	"bookmarket/internal/pkg/clock"
	"bookmarket/internal/pkg/config"
	"bookmarket/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrListingNotFound    = errs.New("listing not found")
	ErrListingAlreadyHeld = errs.New("listing is already held")
	ErrListingAlreadySold = errs.New("listing is already sold")
	ErrListingNotHeld     = errs.New("listing is not held")
)

type PublishListingInput struct {
	ISBN              string
	Title             string
	Author            string
	Condition         listing.Condition
	SourceAppraisalID uuid.UUID
	PurchaseRequestID uuid.UUID
	OfferPrice        money.Money
	ListingPrice      money.Money
}

type ListingCommands interface {
	// Publish puts an appraised copy up for sale.
	Publish(ctx context.Context, input PublishListingInput) (*listing.Listing, error)
	Hold(ctx context.Context, listingID, orderID uuid.UUID) (*listing.Listing, error)
	// Release and MarkSold require the holding order's id: a hold belongs to
	// exactly one order, and only that order may consume or undo it.
	Release(ctx context.Context, listingID, orderID uuid.UUID) (*listing.Listing, error)
	MarkSold(ctx context.Context, listingID, orderID uuid.UUID) (*listing.Listing, error)
	Withdraw(ctx context.Context, listingID uuid.UUID, reason string) (*listing.Listing, error)
	// ReleaseExpiredHolds reconciles time-expired holds back to Available.
	// Per-listing failures are independent; the sweep keeps going.
	ReleaseExpiredHolds(ctx context.Context) (int, error)
}

type listingCommandsImpl struct {
	listingRepo ListingRepository
	bus         *events.Bus
	clock       clock.Clock
	checkout    config.CheckoutConfig
}

func NewListingCommands(
	listingRepo ListingRepository,
	bus *events.Bus,
	clk clock.Clock,
	checkout config.CheckoutConfig,
) ListingCommands {
	return &listingCommandsImpl{
		listingRepo: listingRepo,
		bus:         bus,
		clock:       clk,
		checkout:    checkout,
	}
}

func (s *listingCommandsImpl) Publish(ctx context.Context, input PublishListingInput) (*listing.Listing, error) {
	book, err := listing.NewBookInfo(input.ISBN, input.Title, input.Author, input.Condition)
	if err != nil {
		return nil, err
	}

	l, err := listing.NewListing(book, input.SourceAppraisalID, input.PurchaseRequestID, input.OfferPrice, input.ListingPrice, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.listingRepo.Create(ctx, l); err != nil {
		return nil, errs.Wrap(err, "failed to persist listing")
	}

	s.bus.Publish(ctx, events.EventListingPublished, events.ListingPublishedPayload{
		ListingID:         l.ID(),
		SourceAppraisalID: l.SourceAppraisalID(),
		ListingPrice:      l.ListingPrice(),
	})
	return l, nil
}

// Hold reserves a listing for an order. The persist is conditional on the
// listing still being Available, so exactly one of two racing holds wins; the
// loser gets the error matching the state that beat it.
func (s *listingCommandsImpl) Hold(ctx context.Context, listingID, orderID uuid.UUID) (*listing.Listing, error) {
	l, err := s.findListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	held, err := l.Hold(orderID, now, s.checkout.HoldTimeout)
	if err != nil {
		return nil, markListingErr(err)
	}

	if err := s.listingRepo.UpdateIfStatus(ctx, held, listing.StatusAvailable); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, s.reloadHoldError(ctx, listingID, orderID)
		}
		return nil, errs.Wrap(err, "failed to persist hold")
	}

	s.bus.Publish(ctx, events.EventListingHeld, events.ListingHeldPayload{
		ListingID: held.ID(),
		OrderID:   orderID,
		HeldUntil: *held.HeldUntil(),
	})
	return held, nil
}

// Release puts orderID's hold on a listing back on sale. A hold that has
// since expired and moved to another order is not this caller's to undo, so
// a holder mismatch reports ErrListingNotHeld just like a missing hold; the
// persist re-checks the holder so a handoff racing the re-read cannot strip
// the new owner either.
func (s *listingCommandsImpl) Release(ctx context.Context, listingID, orderID uuid.UUID) (*listing.Listing, error) {
	l, err := s.findListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	released, err := l.Release(s.clock.Now())
	if err != nil {
		return nil, markListingErr(err)
	}
	if hb := l.HeldByOrderID(); hb == nil || *hb != orderID {
		return nil, ErrListingNotHeld
	}

	if err := s.listingRepo.UpdateIfHeldBy(ctx, released, orderID); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			// The hold moved on between the read and the write.
			return nil, ErrListingNotHeld
		}
		return nil, errs.Wrap(err, "failed to persist release")
	}

	s.bus.Publish(ctx, events.EventListingHoldReleased, events.ListingHoldReleasedPayload{
		ListingID:       released.ID(),
		PreviousOrderID: orderID,
	})
	return released, nil
}

// MarkSold converts orderID's hold into a sale, with the same holder guard
// as Release: a sale may only consume the caller's own hold.
func (s *listingCommandsImpl) MarkSold(ctx context.Context, listingID, orderID uuid.UUID) (*listing.Listing, error) {
	l, err := s.findListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	sold, err := l.MarkSold(s.clock.Now())
	if err != nil {
		return nil, markListingErr(err)
	}
	if hb := l.HeldByOrderID(); hb == nil || *hb != orderID {
		return nil, ErrListingNotHeld
	}

	if err := s.listingRepo.UpdateIfHeldBy(ctx, sold, orderID); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, ErrListingNotHeld
		}
		return nil, errs.Wrap(err, "failed to persist sale")
	}

	s.bus.Publish(ctx, events.EventListingSold, events.ListingSoldPayload{
		ListingID: sold.ID(),
		SoldAt:    *sold.SoldAt(),
	})
	return sold, nil
}

func (s *listingCommandsImpl) Withdraw(ctx context.Context, listingID uuid.UUID, reason string) (*listing.Listing, error) {
	l, err := s.findListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	withdrawn, err := l.Withdraw(reason, s.clock.Now())
	if err != nil {
		// Withdraw guards surface as-is; "cannot withdraw a sold listing" is
		// the user-facing message, not a client-contract error.
		return nil, err
	}

	if err := s.listingRepo.UpdateIfStatus(ctx, withdrawn, l.Status()); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return nil, s.reloadWithdrawError(ctx, listingID, reason)
		}
		return nil, errs.Wrap(err, "failed to persist withdrawal")
	}

	s.bus.Publish(ctx, events.EventListingWithdrawn, events.ListingWithdrawnPayload{
		ListingID: withdrawn.ID(),
		Reason:    reason,
	})
	return withdrawn, nil
}

func (s *listingCommandsImpl) ReleaseExpiredHolds(ctx context.Context) (int, error) {
	now := s.clock.Now()
	expired, err := s.listingRepo.FindExpiredHeld(ctx, now)
	if err != nil {
		return 0, errs.Wrap(err, "failed to scan expired holds")
	}

	released := 0
	for _, l := range expired {
		hb := l.HeldByOrderID()
		if hb == nil {
			continue
		}
		// Releasing on behalf of the order seen during the scan: if the hold
		// was handed to another order in the meantime it is no longer expired
		// and must stay.
		if _, err := s.Release(ctx, l.ID(), *hb); err != nil {
			slog.Warn("expired hold release failed", "listing_id", l.ID(), "error", err)
			continue
		}
		released++
	}
	return released, nil
}

func (s *listingCommandsImpl) findListing(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	l, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, errs.Mark(err, ErrListingNotFound)
	}
	return l, nil
}

// reloadHoldError re-reads a listing that won't hold and reports why in the
// client error taxonomy.
func (s *listingCommandsImpl) reloadHoldError(ctx context.Context, listingID, orderID uuid.UUID) error {
	l, err := s.findListing(ctx, listingID)
	if err != nil {
		return err
	}
	if _, holdErr := l.Hold(orderID, s.clock.Now(), s.checkout.HoldTimeout); holdErr != nil {
		return markListingErr(holdErr)
	}
	// The listing bounced back to Available between the lost write and the
	// re-read. Tell the caller to retry rather than guessing a winner.
	return ErrListingAlreadyHeld
}

func (s *listingCommandsImpl) reloadWithdrawError(ctx context.Context, listingID uuid.UUID, reason string) error {
	l, err := s.findListing(ctx, listingID)
	if err != nil {
		return err
	}
	if _, wErr := l.Withdraw(reason, s.clock.Now()); wErr != nil {
		return wErr
	}
	// Still withdrawable after the lost write; retry at the caller.
	return infra.NewRepoErr(infra.KindConflict, "listing changed during withdraw")
}

// markListingErr maps listing domain guards onto the boundary error taxonomy
// so callers on either side of the ListingClient contract see the same set.
// A withdrawn listing is simply gone from the order domain's point of view.
func markListingErr(err error) error {
	switch {
	case errors.Is(err, listing.ErrAlreadyHeld):
		return errs.Mark(err, ErrListingAlreadyHeld)
	case errors.Is(err, listing.ErrAlreadySold):
		return errs.Mark(err, ErrListingAlreadySold)
	case errors.Is(err, listing.ErrNotHeld):
		return errs.Mark(err, ErrListingNotHeld)
	case errors.Is(err, listing.ErrAlreadyWithdrawn):
		return errs.Mark(err, ErrListingNotFound)
	default:
		return err
	}
}
