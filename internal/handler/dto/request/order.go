package request

import (
	"bookmarket/internal/domain/money"
	"bookmarket/internal/domain/order"
	"bookmarket/internal/usecase/commands"

	"github.com/google/uuid"
)

type AddressRequest struct {
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

func (r AddressRequest) ToDomain() (order.Address, error) {
	return order.NewAddress(r.Line1, r.Line2, r.City, r.PostalCode, r.Country)
}

type MoneyRequest struct {
	Amount   int64  `json:"amount" binding:"min=0"`
	Currency string `json:"currency" binding:"required"`
}

func (r MoneyRequest) ToDomain() (money.Money, error) {
	currency, err := money.NewCurrency(r.Currency)
	if err != nil {
		return money.Money{}, err
	}
	return money.New(r.Amount, currency)
}

type CreateOrderRequest struct {
	ShippingAddress AddressRequest  `json:"shipping_address" binding:"required"`
	BillingAddress  *AddressRequest `json:"billing_address,omitempty"`
	Tax             MoneyRequest    `json:"tax" binding:"required"`
	Shipping        MoneyRequest    `json:"shipping" binding:"required"`
}

func (r CreateOrderRequest) ToInput(customerID uuid.UUID) (commands.CreateOrderInput, error) {
	shippingAddr, err := r.ShippingAddress.ToDomain()
	if err != nil {
		return commands.CreateOrderInput{}, err
	}

	var billingAddr *order.Address
	if r.BillingAddress != nil {
		a, err := r.BillingAddress.ToDomain()
		if err != nil {
			return commands.CreateOrderInput{}, err
		}
		billingAddr = &a
	}

	tax, err := r.Tax.ToDomain()
	if err != nil {
		return commands.CreateOrderInput{}, err
	}
	shipping, err := r.Shipping.ToDomain()
	if err != nil {
		return commands.CreateOrderInput{}, err
	}

	return commands.CreateOrderInput{
		CustomerID:      customerID,
		ShippingAddress: shippingAddr,
		BillingAddress:  billingAddr,
		Tax:             tax,
		Shipping:        shipping,
	}, nil
}

type AddLineItemRequest struct {
	ListingID uuid.UUID `json:"listing_id" binding:"required"`
}

type PaymentRequest struct {
	Method        string `json:"method" binding:"required"`
	TransactionID string `json:"transaction_id" binding:"required"`
}

type ShipmentRequest struct {
	Carrier        string `json:"carrier" binding:"required"`
	TrackingNumber string `json:"tracking_number" binding:"required"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}
