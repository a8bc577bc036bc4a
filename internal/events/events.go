package events

import (
	"time"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/domain/money"

	"github.com/google/uuid"
)

const (
	EventOrderCreated          = "OrderCreated"
	EventOrderCheckoutStarted  = "OrderCheckoutStarted"
	EventOrderPaymentProcessed = "OrderPaymentProcessed"
	EventOrderConfirmed        = "OrderConfirmed"
	EventOrderShipped          = "OrderShipped"
	EventOrderDelivered        = "OrderDelivered"
	EventOrderCancelled        = "OrderCancelled"

	EventListingPublished    = "ListingPublished"
	EventListingHeld         = "ListingHeld"
	EventListingHoldReleased = "ListingHoldReleased"
	EventListingSold         = "ListingSold"
	EventListingWithdrawn    = "ListingWithdrawn"
)

// Envelope wraps every published event. Delivery is synchronous and
// in-process; the envelope exists so handlers get uniform metadata.
type Envelope struct {
	EventID    uuid.UUID
	EventType  string
	OccurredAt time.Time
	Payload    any
}

// ---- Order payloads ----

type OrderCreatedPayload struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
}

type OrderCheckoutStartedPayload struct {
	OrderID    uuid.UUID
	ListingIDs []uuid.UUID
}

type OrderPaymentProcessedPayload struct {
	OrderID       uuid.UUID
	Method        string
	TransactionID string
	Total         money.Money
}

type LineItemSnapshot struct {
	ListingID uuid.UUID
	ISBN      string
	Title     string
	Author    string
	Condition listing.Condition
	Price     money.Money
}

type OrderConfirmedPayload struct {
	OrderID         uuid.UUID
	CustomerID      uuid.UUID
	LineItems       []LineItemSnapshot
	ShippingAddress AddressSnapshot
}

type AddressSnapshot struct {
	Line1      string
	Line2      string
	City       string
	PostalCode string
	Country    string
}

type OrderShippedPayload struct {
	OrderID        uuid.UUID
	Carrier        string
	TrackingNumber string
}

type OrderDeliveredPayload struct {
	OrderID uuid.UUID
}

type OrderCancelledPayload struct {
	OrderID uuid.UUID
	Reason  string
}

// ---- Listing payloads ----

type ListingPublishedPayload struct {
	ListingID         uuid.UUID
	SourceAppraisalID uuid.UUID
	ListingPrice      money.Money
}

type ListingHeldPayload struct {
	ListingID uuid.UUID
	OrderID   uuid.UUID
	HeldUntil time.Time
}

type ListingHoldReleasedPayload struct {
	ListingID       uuid.UUID
	PreviousOrderID uuid.UUID
}

type ListingSoldPayload struct {
	ListingID uuid.UUID
	SoldAt    time.Time
}

type ListingWithdrawnPayload struct {
	ListingID uuid.UUID
	Reason    string
}
