//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/domain/money"
	"bookmarket/internal/domain/order"
	"bookmarket/internal/events"
	"bookmarket/internal/infra/listingclient"
	"bookmarket/internal/infra/memory"
	"bookmarket/internal/pkg/clock"
	"bookmarket/internal/pkg/config"
	"bookmarket/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const holdTimeout = 15 * time.Minute

// fixture wires the command services against in-memory stores, exactly as the
// production wiring does minus the database and the HTTP transport.
type fixture struct {
	clock       *clock.MockClock
	bus         *events.Bus
	listingRepo *memory.ListingRepository
	orderRepo   *memory.OrderRepository
	listings    commands.ListingCommands
	orders      commands.OrderCommands

	mu       sync.Mutex
	recorded []events.Envelope
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clock:       clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		bus:         events.NewBus(),
		listingRepo: memory.NewListingRepository(),
		orderRepo:   memory.NewOrderRepository(),
	}

	checkout := config.CheckoutConfig{HoldTimeout: holdTimeout, SweepInterval: time.Minute}
	f.listings = commands.NewListingCommands(f.listingRepo, f.bus, f.clock, checkout)
	client := listingclient.NewLocalClient(f.listings, f.listingRepo)
	f.orders = commands.NewOrderCommands(f.orderRepo, client, f.bus, f.clock, checkout)

	for _, eventType := range []string{
		events.EventOrderCreated, events.EventOrderCheckoutStarted,
		events.EventOrderPaymentProcessed, events.EventOrderConfirmed,
		events.EventOrderShipped, events.EventOrderDelivered, events.EventOrderCancelled,
		events.EventListingPublished, events.EventListingHeld,
		events.EventListingHoldReleased, events.EventListingSold, events.EventListingWithdrawn,
	} {
		f.bus.Subscribe(eventType, func(_ context.Context, e events.Envelope) {
			f.mu.Lock()
			f.recorded = append(f.recorded, e)
			f.mu.Unlock()
		})
	}
	return f
}

func (f *fixture) eventsOfType(eventType string) []events.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []events.Envelope
	for _, e := range f.recorded {
		if e.EventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (f *fixture) publishListing(t *testing.T, priceCents int64) *listing.Listing {
	t.Helper()

	offer, err := money.New(priceCents/2, money.USD)
	require.NoError(t, err)
	price, err := money.New(priceCents, money.USD)
	require.NoError(t, err)

	l, err := f.listings.Publish(context.Background(), commands.PublishListingInput{
		ISBN:              "9780134190440",
		Title:             "The Go Programming Language",
		Author:            "Alan A. A. Donovan",
		Condition:         listing.ConditionGood,
		SourceAppraisalID: uuid.New(),
		PurchaseRequestID: uuid.New(),
		OfferPrice:        offer,
		ListingPrice:      price,
	})
	require.NoError(t, err)
	return l
}

func (f *fixture) createOrder(t *testing.T, customerID uuid.UUID) *order.Order {
	t.Helper()

	addr, err := order.NewAddress("123 Elm Street", "", "Portland", "97201", "US")
	require.NoError(t, err)
	tax, err := money.New(160, money.USD)
	require.NoError(t, err)
	shipping, err := money.New(500, money.USD)
	require.NoError(t, err)

	o, err := f.orders.Create(context.Background(), commands.CreateOrderInput{
		CustomerID:      customerID,
		ShippingAddress: addr,
		Tax:             tax,
		Shipping:        shipping,
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) orderWithItems(t *testing.T, customerID uuid.UUID, listings ...*listing.Listing) *order.Order {
	t.Helper()

	o := f.createOrder(t, customerID)
	for _, l := range listings {
		var err error
		o, err = f.orders.AddLineItem(context.Background(), o.ID(), customerID, l.ID())
		require.NoError(t, err)
	}
	return o
}

func (f *fixture) listingStatus(t *testing.T, id uuid.UUID) listing.Status {
	t.Helper()
	l, err := f.listingRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return l.Status()
}

func (f *fixture) orderStatus(t *testing.T, id uuid.UUID) order.Status {
	t.Helper()
	o, err := f.orderRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return o.Status()
}
