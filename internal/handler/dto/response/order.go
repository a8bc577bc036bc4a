package response

import (
	"time"

	"bookmarket/internal/domain/money"
	"bookmarket/internal/domain/order"

	"github.com/google/uuid"
)

type AddressResponse struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type LineItemResponse struct {
	ListingID uuid.UUID   `json:"listing_id"`
	ISBN      string      `json:"isbn"`
	Title     string      `json:"title"`
	Author    string      `json:"author"`
	Condition string      `json:"condition"`
	Price     money.Money `json:"price"`
	Status    string      `json:"status"`
}

type PaymentResponse struct {
	Method        string    `json:"method"`
	TransactionID string    `json:"transaction_id"`
	PaidAt        time.Time `json:"paid_at"`
}

type TrackingResponse struct {
	Carrier        string    `json:"carrier"`
	TrackingNumber string    `json:"tracking_number"`
	ShippedAt      time.Time `json:"shipped_at"`
}

type OrderResponse struct {
	ID              uuid.UUID          `json:"id"`
	CustomerID      uuid.UUID          `json:"customer_id"`
	Status          string             `json:"status"`
	LineItems       []LineItemResponse `json:"line_items"`
	ShippingAddress AddressResponse    `json:"shipping_address"`
	BillingAddress  *AddressResponse   `json:"billing_address,omitempty"`
	Subtotal        money.Money        `json:"subtotal"`
	Tax             money.Money        `json:"tax"`
	Shipping        money.Money        `json:"shipping"`
	Total           money.Money        `json:"total"`
	Payment         *PaymentResponse   `json:"payment,omitempty"`
	Tracking        *TrackingResponse  `json:"tracking,omitempty"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason    *string            `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func FromOrder(o *order.Order) (*OrderResponse, error) {
	subtotal, err := o.Subtotal()
	if err != nil {
		return nil, err
	}
	total, err := o.Total()
	if err != nil {
		return nil, err
	}

	items := make([]LineItemResponse, 0, len(o.LineItems()))
	for _, li := range o.LineItems() {
		items = append(items, LineItemResponse{
			ListingID: li.ListingID(),
			ISBN:      li.ISBN(),
			Title:     li.Title(),
			Author:    li.Author(),
			Condition: li.Condition().String(),
			Price:     li.Price(),
			Status:    string(li.Status()),
		})
	}

	resp := &OrderResponse{
		ID:              o.ID(),
		CustomerID:      o.CustomerID(),
		Status:          string(o.Status()),
		LineItems:       items,
		ShippingAddress: fromAddress(o.ShippingAddress()),
		Subtotal:        subtotal,
		Tax:             o.Tax(),
		Shipping:        o.Shipping(),
		Total:           total,
		CancelledAt:     o.CancelledAt(),
		CancelReason:    o.CancelReason(),
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
	}
	if b := o.BillingAddress(); b != nil {
		a := fromAddress(*b)
		resp.BillingAddress = &a
	}
	if p := o.Payment(); p != nil {
		resp.Payment = &PaymentResponse{
			Method:        p.Method(),
			TransactionID: p.TransactionID(),
			PaidAt:        p.PaidAt(),
		}
	}
	if t := o.Tracking(); t != nil {
		resp.Tracking = &TrackingResponse{
			Carrier:        t.Carrier(),
			TrackingNumber: t.TrackingNumber(),
			ShippedAt:      t.ShippedAt(),
		}
	}
	return resp, nil
}

func FromOrders(os []*order.Order) ([]*OrderResponse, error) {
	out := make([]*OrderResponse, len(os))
	for i, o := range os {
		resp, err := FromOrder(o)
		if err != nil {
			return nil, err
		}
		out[i] = resp
	}
	return out, nil
}

func fromAddress(a order.Address) AddressResponse {
	return AddressResponse{
		Line1:      a.Line1(),
		Line2:      a.Line2(),
		City:       a.City(),
		PostalCode: a.PostalCode(),
		Country:    a.Country(),
	}
}
