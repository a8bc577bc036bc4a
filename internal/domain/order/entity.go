package order

import (
	"errors"
	"time"

	"bookmarket/internal/domain/money"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition  = errors.New("invalid order transition")
	ErrDuplicateLineItem  = errors.New("listing is already in the order")
	ErrLineItemNotFound   = errors.New("listing is not in the order")
	ErrEmptyOrder         = errors.New("order has no line items")
	ErrHoldingsIncomplete = errors.New("not every line item was held")
	ErrCurrencyMixed      = errors.New("line item currency differs from order currency")
)

// Order is a customer's in-progress or completed purchase. It owns its line
// items and their shadow statuses but only references listings by id; keeping
// the two aggregates in agreement is the checkout saga's job, not the order's.
//
// Every transition returns a new *Order; callers never observe a
// partially-applied state change.
type Order struct {
	id              uuid.UUID
	customerID      uuid.UUID
	shippingAddress Address
	billingAddress  *Address
	lineItems       []LineItem
	status          Status
	tax             money.Money
	shipping        money.Money
	payment         *Payment
	tracking        *ShipmentTracking
	cancelledAt     *time.Time
	cancelReason    *string
	createdAt       time.Time
	updatedAt       time.Time
}

func NewOrder(customerID uuid.UUID, shippingAddress Address, billingAddress *Address, tax, shipping money.Money, now time.Time) (*Order, error) {
	if tax.Currency() != shipping.Currency() {
		return nil, money.ErrCurrencyMismatch
	}

	return &Order{
		id:              uuid.New(),
		customerID:      customerID,
		shippingAddress: shippingAddress,
		billingAddress:  billingAddress,
		lineItems:       nil,
		status:          StatusDraft,
		tax:             tax,
		shipping:        shipping,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

func ReconstructOrder(
	id, customerID uuid.UUID,
	shippingAddress Address,
	billingAddress *Address,
	lineItems []LineItem,
	status Status,
	tax, shipping money.Money,
	payment *Payment,
	tracking *ShipmentTracking,
	cancelledAt *time.Time,
	cancelReason *string,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:              id,
		customerID:      customerID,
		shippingAddress: shippingAddress,
		billingAddress:  billingAddress,
		lineItems:       lineItems,
		status:          status,
		tax:             tax,
		shipping:        shipping,
		payment:         payment,
		tracking:        tracking,
		cancelledAt:     cancelledAt,
		cancelReason:    cancelReason,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (o *Order) clone() *Order {
	c := *o
	c.lineItems = make([]LineItem, len(o.lineItems))
	copy(c.lineItems, o.lineItems)
	return &c
}

// AddLineItem appends a snapshot of a listing. Draft only; one line item per
// listing id.
func (o *Order) AddLineItem(item LineItem, now time.Time) (*Order, error) {
	if o.status != StatusDraft {
		return nil, ErrInvalidTransition
	}
	if o.hasLineItem(item.ListingID()) {
		return nil, ErrDuplicateLineItem
	}
	if item.Price().Currency() != o.tax.Currency() {
		return nil, ErrCurrencyMixed
	}

	next := o.clone()
	next.lineItems = append(next.lineItems, item)
	next.updatedAt = now
	return next, nil
}

func (o *Order) RemoveLineItem(listingID uuid.UUID, now time.Time) (*Order, error) {
	if o.status != StatusDraft {
		return nil, ErrInvalidTransition
	}

	idx := -1
	for i, li := range o.lineItems {
		if li.ListingID() == listingID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrLineItemNotFound
	}

	next := o.clone()
	next.lineItems = append(next.lineItems[:idx], next.lineItems[idx+1:]...)
	next.updatedAt = now
	return next, nil
}

func (o *Order) StartCheckout(now time.Time) (*Order, error) {
	if o.status != StatusDraft {
		return nil, ErrInvalidTransition
	}
	if len(o.lineItems) == 0 {
		return nil, ErrEmptyOrder
	}

	next := o.clone()
	next.status = StatusCheckingOut
	next.updatedAt = now
	return next, nil
}

// ConfirmHoldings moves the order to PaymentPending once every line item's
// listing appears in heldIDs. Items flip to Held together or not at all.
func (o *Order) ConfirmHoldings(heldIDs []uuid.UUID, now time.Time) (*Order, error) {
	if o.status != StatusCheckingOut {
		return nil, ErrInvalidTransition
	}

	held := make(map[uuid.UUID]bool, len(heldIDs))
	for _, id := range heldIDs {
		held[id] = true
	}
	for _, li := range o.lineItems {
		if !held[li.ListingID()] {
			return nil, ErrHoldingsIncomplete
		}
	}

	next := o.clone()
	for i, li := range next.lineItems {
		next.lineItems[i] = li.withStatus(ItemStatusHeld)
	}
	next.status = StatusPaymentPending
	next.updatedAt = now
	return next, nil
}

func (o *Order) ProcessPayment(p Payment, now time.Time) (*Order, error) {
	if o.status != StatusPaymentPending {
		return nil, ErrInvalidTransition
	}

	next := o.clone()
	for i, li := range next.lineItems {
		next.lineItems[i] = li.withStatus(ItemStatusSold)
	}
	next.status = StatusConfirmed
	next.payment = &p
	next.updatedAt = now
	return next, nil
}

func (o *Order) Ship(t ShipmentTracking, now time.Time) (*Order, error) {
	if o.status != StatusConfirmed {
		return nil, ErrInvalidTransition
	}

	next := o.clone()
	next.status = StatusShipped
	next.tracking = &t
	next.updatedAt = now
	return next, nil
}

func (o *Order) MarkDelivered(now time.Time) (*Order, error) {
	if o.status != StatusShipped {
		return nil, ErrInvalidTransition
	}

	next := o.clone()
	next.status = StatusCompleted
	next.updatedAt = now
	return next, nil
}

// Cancel is legal from any state before shipment. Held items become Released;
// the corresponding listing releases happen in the service layer.
func (o *Order) Cancel(reason string, now time.Time) (*Order, error) {
	if !o.status.CanCancel() {
		return nil, ErrInvalidTransition
	}

	next := o.clone()
	for i, li := range next.lineItems {
		if li.Status() == ItemStatusHeld {
			next.lineItems[i] = li.withStatus(ItemStatusReleased)
		}
	}
	next.status = StatusCancelled
	cancelledAt := now
	next.cancelledAt = &cancelledAt
	if reason != "" {
		next.cancelReason = &reason
	}
	next.updatedAt = now
	return next, nil
}

// Subtotal sums the line item prices. Empty orders total zero in the order's
// own currency.
func (o *Order) Subtotal() (money.Money, error) {
	sum := money.Zero(o.tax.Currency())
	for _, li := range o.lineItems {
		var err error
		sum, err = sum.Add(li.Price())
		if err != nil {
			return money.Money{}, err
		}
	}
	return sum, nil
}

func (o *Order) Total() (money.Money, error) {
	subtotal, err := o.Subtotal()
	if err != nil {
		return money.Money{}, err
	}
	withTax, err := subtotal.Add(o.tax)
	if err != nil {
		return money.Money{}, err
	}
	return withTax.Add(o.shipping)
}

// HeldListingIDs returns the listings this order believes it currently holds.
func (o *Order) HeldListingIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, li := range o.lineItems {
		if li.Status() == ItemStatusHeld {
			ids = append(ids, li.ListingID())
		}
	}
	return ids
}

func (o *Order) ListingIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(o.lineItems))
	for i, li := range o.lineItems {
		ids[i] = li.ListingID()
	}
	return ids
}

func (o *Order) hasLineItem(listingID uuid.UUID) bool {
	for _, li := range o.lineItems {
		if li.ListingID() == listingID {
			return true
		}
	}
	return false
}

func (o *Order) ID() uuid.UUID               { return o.id }
func (o *Order) CustomerID() uuid.UUID       { return o.customerID }
func (o *Order) ShippingAddress() Address    { return o.shippingAddress }
func (o *Order) BillingAddress() *Address    { return o.billingAddress }
func (o *Order) Status() Status              { return o.status }
func (o *Order) Tax() money.Money            { return o.tax }
func (o *Order) Shipping() money.Money       { return o.shipping }
func (o *Order) Payment() *Payment           { return o.payment }
func (o *Order) Tracking() *ShipmentTracking { return o.tracking }
func (o *Order) CancelledAt() *time.Time     { return o.cancelledAt }
func (o *Order) CancelReason() *string       { return o.cancelReason }
func (o *Order) CreatedAt() time.Time        { return o.createdAt }
func (o *Order) UpdatedAt() time.Time        { return o.updatedAt }

// LineItems returns a copy; callers cannot reach into the aggregate's slice.
func (o *Order) LineItems() []LineItem {
	items := make([]LineItem, len(o.lineItems))
	copy(items, o.lineItems)
	return items
}
