package commands

import (
	"context"
	"errors"
	"log/slog"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/domain/money"
	"bookmarket/internal/domain/order"
	"bookmarket/internal/events"
	"bookmarket/internal/infra"
	"bookmarket/internal/pkg/clock"
	"bookmarket/internal/pkg/config"
	"bookmarket/internal/pkg/errs"
	"bookmarket/internal/pkg/keylock"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound      = errs.New("order not found")
	ErrListingUnavailable = errs.New("listing is not available for sale")
)

const checkoutTimeoutReason = "Checkout timeout"

type CreateOrderInput struct {
	CustomerID      uuid.UUID
	ShippingAddress order.Address
	BillingAddress  *order.Address
	Tax             money.Money
	Shipping        money.Money
}

type PaymentInput struct {
	Method        string
	TransactionID string
}

type ShipmentInput struct {
	Carrier        string
	TrackingNumber string
}

type OrderCommands interface {
	Create(ctx context.Context, input CreateOrderInput) (*order.Order, error)
	AddLineItem(ctx context.Context, orderID, customerID, listingID uuid.UUID) (*order.Order, error)
	RemoveLineItem(ctx context.Context, orderID, customerID, listingID uuid.UUID) (*order.Order, error)
	// Checkout runs the hold-all-or-rollback saga. On failure the order stays
	// in CheckingOut with zero listings held; the caller retries or cancels.
	Checkout(ctx context.Context, orderID, customerID uuid.UUID) (*order.Order, error)
	ProcessPayment(ctx context.Context, orderID, customerID uuid.UUID, input PaymentInput) (*order.Order, error)
	Ship(ctx context.Context, orderID uuid.UUID, input ShipmentInput) (*order.Order, error)
	MarkDelivered(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	Cancel(ctx context.Context, orderID, customerID uuid.UUID, reason string) (*order.Order, error)
	// CancelExpired sweeps orders stuck in CheckingOut/PaymentPending past the
	// checkout window through the same cancel path as manual cancellation.
	CancelExpired(ctx context.Context) (int, error)
}

type orderCommandsImpl struct {
	orderRepo OrderRepository
	listings  ListingClient
	bus       *events.Bus
	clock     clock.Clock
	checkout  config.CheckoutConfig

	// orderLocks serializes read-modify-write cycles per order id. Calls on
	// different orders proceed concurrently and only meet at the shared
	// listing resource.
	orderLocks *keylock.KeyedMutex
}

func NewOrderCommands(
	orderRepo OrderRepository,
	listings ListingClient,
	bus *events.Bus,
	clk clock.Clock,
	checkout config.CheckoutConfig,
) OrderCommands {
	return &orderCommandsImpl{
		orderRepo:  orderRepo,
		listings:   listings,
		bus:        bus,
		clock:      clk,
		checkout:   checkout,
		orderLocks: keylock.New(),
	}
}

func (s *orderCommandsImpl) Create(ctx context.Context, input CreateOrderInput) (*order.Order, error) {
	o, err := order.NewOrder(input.CustomerID, input.ShippingAddress, input.BillingAddress, input.Tax, input.Shipping, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, errs.Wrap(err, "failed to persist order")
	}

	s.bus.Publish(ctx, events.EventOrderCreated, events.OrderCreatedPayload{
		OrderID:    o.ID(),
		CustomerID: o.CustomerID(),
	})
	return o, nil
}

func (s *orderCommandsImpl) AddLineItem(ctx context.Context, orderID, customerID, listingID uuid.UUID) (*order.Order, error) {
	defer s.orderLocks.Lock(orderID.String())()

	o, err := s.findOwnedOrder(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}

	snap, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if snap.Status != listing.StatusAvailable {
		return nil, ErrListingUnavailable
	}

	item := order.NewLineItem(snap.ID, snap.ISBN, snap.Title, snap.Author, snap.Condition, snap.Price)
	next, err := o.AddLineItem(item, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Update(ctx, next); err != nil {
		return nil, errs.Wrap(err, "failed to persist order")
	}
	return next, nil
}

func (s *orderCommandsImpl) RemoveLineItem(ctx context.Context, orderID, customerID, listingID uuid.UUID) (*order.Order, error) {
	defer s.orderLocks.Lock(orderID.String())()

	o, err := s.findOwnedOrder(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}

	next, err := o.RemoveLineItem(listingID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Update(ctx, next); err != nil {
		return nil, errs.Wrap(err, "failed to persist order")
	}
	return next, nil
}

// Checkout is a saga over two aggregates with no shared transaction. Holds are
// taken in line-item order; the undo list grows one entry per successful hold
// and is drained best-effort on the first failure, after which the original
// error is re-raised untouched.
func (s *orderCommandsImpl) Checkout(ctx context.Context, orderID, customerID uuid.UUID) (*order.Order, error) {
	defer s.orderLocks.Lock(orderID.String())()

	o, err := s.findOwnedOrder(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}

	checkingOut, err := o.StartCheckout(s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, checkingOut); err != nil {
		return nil, errs.Wrap(err, "failed to persist order")
	}

	var held []uuid.UUID
	for _, li := range checkingOut.LineItems() {
		if holdErr := s.listings.HoldForOrder(ctx, li.ListingID(), orderID); holdErr != nil {
			s.compensate(ctx, orderID, held)
			return nil, holdErr
		}
		held = append(held, li.ListingID())
	}

	pending, err := checkingOut.ConfirmHoldings(held, s.clock.Now())
	if err != nil {
		s.compensate(ctx, orderID, held)
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, pending); err != nil {
		s.compensate(ctx, orderID, held)
		return nil, errs.Wrap(err, "failed to persist order")
	}

	s.bus.Publish(ctx, events.EventOrderCheckoutStarted, events.OrderCheckoutStartedPayload{
		OrderID:    pending.ID(),
		ListingIDs: held,
	})
	return pending, nil
}

// compensate releases every listing this checkout pass managed to hold.
// Release failures are swallowed: one bad release must not mask the
// triggering error or stop the remaining releases.
func (s *orderCommandsImpl) compensate(ctx context.Context, orderID uuid.UUID, held []uuid.UUID) {
	for _, listingID := range held {
		if err := s.listings.ReleaseHold(ctx, listingID, orderID); err != nil {
			slog.Warn("compensating release failed",
				"order_id", orderID, "listing_id", listingID, "error", err)
		}
	}
}

func (s *orderCommandsImpl) ProcessPayment(ctx context.Context, orderID, customerID uuid.UUID, input PaymentInput) (*order.Order, error) {
	defer s.orderLocks.Lock(orderID.String())()

	o, err := s.findOwnedOrder(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	payment, err := order.NewPayment(input.Method, input.TransactionID, now)
	if err != nil {
		return nil, err
	}

	confirmed, err := o.ProcessPayment(payment, now)
	if err != nil {
		return nil, err
	}

	// Convert every hold to a sale before the order commits. A failure here
	// leaves the order in PaymentPending; listings already marked sold stay
	// sold, which is safe because they are held by this very order.
	for _, li := range confirmed.LineItems() {
		if soldErr := s.listings.MarkSold(ctx, li.ListingID(), orderID); soldErr != nil {
			slog.Warn("mark-sold failed during payment",
				"order_id", orderID, "listing_id", li.ListingID(), "error", soldErr)
			return nil, soldErr
		}
	}

	if err := s.orderRepo.Update(ctx, confirmed); err != nil {
		return nil, errs.Wrap(err, "failed to persist order")
	}

	total, err := confirmed.Total()
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.EventOrderPaymentProcessed, events.OrderPaymentProcessedPayload{
		OrderID:       confirmed.ID(),
		Method:        payment.Method(),
		TransactionID: payment.TransactionID(),
		Total:         total,
	})
	s.bus.Publish(ctx, events.EventOrderConfirmed, confirmedPayload(confirmed))
	return confirmed, nil
}

func (s *orderCommandsImpl) Ship(ctx context.Context, orderID uuid.UUID, input ShipmentInput) (*order.Order, error) {
	defer s.orderLocks.Lock(orderID.String())()

	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	tracking, err := order.NewShipmentTracking(input.Carrier, input.TrackingNumber, now)
	if err != nil {
		return nil, err
	}

	shipped, err := o.Ship(tracking, now)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, shipped); err != nil {
		return nil, errs.Wrap(err, "failed to persist order")
	}

	s.bus.Publish(ctx, events.EventOrderShipped, events.OrderShippedPayload{
		OrderID:        shipped.ID(),
		Carrier:        tracking.Carrier(),
		TrackingNumber: tracking.TrackingNumber(),
	})
	return shipped, nil
}

func (s *orderCommandsImpl) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	defer s.orderLocks.Lock(orderID.String())()

	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	delivered, err := o.MarkDelivered(s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, delivered); err != nil {
		return nil, errs.Wrap(err, "failed to persist order")
	}

	s.bus.Publish(ctx, events.EventOrderDelivered, events.OrderDeliveredPayload{OrderID: delivered.ID()})
	return delivered, nil
}

func (s *orderCommandsImpl) Cancel(ctx context.Context, orderID, customerID uuid.UUID, reason string) (*order.Order, error) {
	defer s.orderLocks.Lock(orderID.String())()

	o, err := s.findOwnedOrder(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}
	return s.cancelOrder(ctx, o, reason)
}

// cancelOrder is the single cancellation path shared by manual cancellation
// and the expiry sweep. Releases are keyed to this order's own holds and
// best-effort: a hold the listing sweep already freed, or one that has since
// been handed to another order, comes back as not-held and is skipped.
func (s *orderCommandsImpl) cancelOrder(ctx context.Context, o *order.Order, reason string) (*order.Order, error) {
	heldIDs := o.HeldListingIDs()

	cancelled, err := o.Cancel(reason, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, cancelled); err != nil {
		return nil, errs.Wrap(err, "failed to persist order")
	}

	for _, listingID := range heldIDs {
		if relErr := s.listings.ReleaseHold(ctx, listingID, o.ID()); relErr != nil {
			if errors.Is(relErr, ErrListingNotHeld) {
				continue
			}
			slog.Warn("release failed during cancellation",
				"order_id", o.ID(), "listing_id", listingID, "error", relErr)
		}
	}

	s.bus.Publish(ctx, events.EventOrderCancelled, events.OrderCancelledPayload{
		OrderID: cancelled.ID(),
		Reason:  reason,
	})
	return cancelled, nil
}

func (s *orderCommandsImpl) CancelExpired(ctx context.Context) (int, error) {
	cutoff := s.clock.Now().Add(-s.checkout.HoldTimeout)
	stale, err := s.orderRepo.FindStale(ctx, []order.Status{order.StatusCheckingOut, order.StatusPaymentPending}, cutoff)
	if err != nil {
		return 0, errs.Wrap(err, "failed to scan stale orders")
	}

	cancelled := 0
	for _, o := range stale {
		if err := s.cancelExpiredOne(ctx, o.ID()); err != nil {
			slog.Warn("expired order cancellation failed", "order_id", o.ID(), "error", err)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// cancelExpiredOne re-reads the order under its lock so a payment or manual
// cancellation racing the sweep is not clobbered.
func (s *orderCommandsImpl) cancelExpiredOne(ctx context.Context, orderID uuid.UUID) error {
	defer s.orderLocks.Lock(orderID.String())()

	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status() != order.StatusCheckingOut && o.Status() != order.StatusPaymentPending {
		return nil
	}
	_, err = s.cancelOrder(ctx, o, checkoutTimeoutReason)
	return err
}

func (s *orderCommandsImpl) findOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, errs.Mark(err, ErrOrderNotFound)
	}
	return o, nil
}

// findOwnedOrder scopes customer-facing operations to the customer's own
// orders; other customers' orders are indistinguishable from absent ones.
func (s *orderCommandsImpl) findOwnedOrder(ctx context.Context, orderID, customerID uuid.UUID) (*order.Order, error) {
	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.CustomerID() != customerID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func confirmedPayload(o *order.Order) events.OrderConfirmedPayload {
	items := make([]events.LineItemSnapshot, 0, len(o.LineItems()))
	for _, li := range o.LineItems() {
		items = append(items, events.LineItemSnapshot{
			ListingID: li.ListingID(),
			ISBN:      li.ISBN(),
			Title:     li.Title(),
			Author:    li.Author(),
			Condition: li.Condition(),
			Price:     li.Price(),
		})
	}

	addr := o.ShippingAddress()
	return events.OrderConfirmedPayload{
		OrderID:    o.ID(),
		CustomerID: o.CustomerID(),
		LineItems:  items,
		ShippingAddress: events.AddressSnapshot{
			Line1:      addr.Line1(),
			Line2:      addr.Line2(),
			City:       addr.City(),
			PostalCode: addr.PostalCode(),
			Country:    addr.Country(),
		},
	}
}
