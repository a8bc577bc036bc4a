//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/domain/money"
	"bookmarket/internal/events"
	"bookmarket/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublish(t *testing.T) {
	f := newFixture(t)

	l := f.publishListing(t, 1999)
	assert.Equal(t, listing.StatusAvailable, l.Status())
	assert.Equal(t, int64(1999), l.ListingPrice().Amount())
	assert.Len(t, f.eventsOfType(events.EventListingPublished), 1)

	t.Run("currency mismatch rejected", func(t *testing.T) {
		offer, err := money.New(500, money.EUR)
		require.NoError(t, err)
		price, err := money.New(1999, money.USD)
		require.NoError(t, err)

		_, err = f.listings.Publish(context.Background(), commands.PublishListingInput{
			ISBN:              "9780134190440",
			Title:             "Mismatch",
			Condition:         listing.ConditionGood,
			SourceAppraisalID: uuid.New(),
			PurchaseRequestID: uuid.New(),
			OfferPrice:        offer,
			ListingPrice:      price,
		})
		require.ErrorIs(t, err, money.ErrCurrencyMismatch)
	})
}

func TestHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown listing", func(t *testing.T) {
		_, err := f.listings.Hold(ctx, uuid.New(), uuid.New())
		require.ErrorIs(t, err, commands.ErrListingNotFound)
	})

	t.Run("second hold loses", func(t *testing.T) {
		l := f.publishListing(t, 1999)
		_, err := f.listings.Hold(ctx, l.ID(), uuid.New())
		require.NoError(t, err)

		_, err = f.listings.Hold(ctx, l.ID(), uuid.New())
		require.ErrorIs(t, err, commands.ErrListingAlreadyHeld)
	})

	t.Run("sold listing reports sold", func(t *testing.T) {
		l := f.publishListing(t, 1999)
		buyer := uuid.New()
		_, err := f.listings.Hold(ctx, l.ID(), buyer)
		require.NoError(t, err)
		_, err = f.listings.MarkSold(ctx, l.ID(), buyer)
		require.NoError(t, err)

		_, err = f.listings.Hold(ctx, l.ID(), uuid.New())
		require.ErrorIs(t, err, commands.ErrListingAlreadySold)
	})

	t.Run("withdrawn listing reports not found", func(t *testing.T) {
		l := f.publishListing(t, 1999)
		_, err := f.listings.Withdraw(ctx, l.ID(), "shelf damage")
		require.NoError(t, err)

		_, err = f.listings.Hold(ctx, l.ID(), uuid.New())
		require.ErrorIs(t, err, commands.ErrListingNotFound)
	})
}

func TestReleaseAndMarkSold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("release without hold", func(t *testing.T) {
		l := f.publishListing(t, 1999)
		_, err := f.listings.Release(ctx, l.ID(), uuid.New())
		require.ErrorIs(t, err, commands.ErrListingNotHeld)
	})

	t.Run("mark sold without hold", func(t *testing.T) {
		l := f.publishListing(t, 1999)
		_, err := f.listings.MarkSold(ctx, l.ID(), uuid.New())
		require.ErrorIs(t, err, commands.ErrListingNotHeld)
	})

	t.Run("release by a non-holder leaves the hold intact", func(t *testing.T) {
		l := f.publishListing(t, 1999)
		owner := uuid.New()
		_, err := f.listings.Hold(ctx, l.ID(), owner)
		require.NoError(t, err)

		_, err = f.listings.Release(ctx, l.ID(), uuid.New())
		require.ErrorIs(t, err, commands.ErrListingNotHeld)
		assert.Equal(t, listing.StatusHeld, f.listingStatus(t, l.ID()))
	})

	t.Run("mark sold by a non-holder is rejected", func(t *testing.T) {
		l := f.publishListing(t, 1999)
		owner := uuid.New()
		_, err := f.listings.Hold(ctx, l.ID(), owner)
		require.NoError(t, err)

		_, err = f.listings.MarkSold(ctx, l.ID(), uuid.New())
		require.ErrorIs(t, err, commands.ErrListingNotHeld)
		assert.Equal(t, listing.StatusHeld, f.listingStatus(t, l.ID()))
	})

	t.Run("release carries the previous holder", func(t *testing.T) {
		l := f.publishListing(t, 1999)
		orderID := uuid.New()
		_, err := f.listings.Hold(ctx, l.ID(), orderID)
		require.NoError(t, err)

		released, err := f.listings.Release(ctx, l.ID(), orderID)
		require.NoError(t, err)
		assert.Equal(t, listing.StatusAvailable, released.Status())

		evs := f.eventsOfType(events.EventListingHoldReleased)
		require.Len(t, evs, 1)
		payload := evs[0].Payload.(events.ListingHoldReleasedPayload)
		assert.Equal(t, orderID, payload.PreviousOrderID)
	})
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("sold listing keeps its descriptive error", func(t *testing.T) {
		l := f.publishListing(t, 1999)
		buyer := uuid.New()
		_, err := f.listings.Hold(ctx, l.ID(), buyer)
		require.NoError(t, err)
		_, err = f.listings.MarkSold(ctx, l.ID(), buyer)
		require.NoError(t, err)

		_, err = f.listings.Withdraw(ctx, l.ID(), "too late")
		require.ErrorIs(t, err, listing.ErrCannotWithdrawSold)
	})

	t.Run("withdrawing a held listing drops the hold", func(t *testing.T) {
		l := f.publishListing(t, 1999)
		_, err := f.listings.Hold(ctx, l.ID(), uuid.New())
		require.NoError(t, err)

		withdrawn, err := f.listings.Withdraw(ctx, l.ID(), "water damage")
		require.NoError(t, err)
		assert.Equal(t, listing.StatusWithdrawn, withdrawn.Status())
		assert.Nil(t, withdrawn.HeldByOrderID())
	})
}

func TestReleaseExpiredHoldsIsSelective(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	expired := f.publishListing(t, 1000)
	_, err := f.listings.Hold(ctx, expired.ID(), uuid.New())
	require.NoError(t, err)

	f.clock.Add(holdTimeout / 2)

	fresh := f.publishListing(t, 2000)
	_, err = f.listings.Hold(ctx, fresh.ID(), uuid.New())
	require.NoError(t, err)

	// Past the first hold's window but inside the second's.
	f.clock.Add(holdTimeout/2 + time.Second)

	released, err := f.listings.ReleaseExpiredHolds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	assert.Equal(t, listing.StatusAvailable, f.listingStatus(t, expired.ID()))
	assert.Equal(t, listing.StatusHeld, f.listingStatus(t, fresh.ID()))
}
