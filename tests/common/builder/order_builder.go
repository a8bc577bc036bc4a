//go:build unit || e2e

package builder

import (
	"time"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/domain/money"
	"bookmarket/internal/domain/order"

	"github.com/google/uuid"
)

type OrderBuilder struct {
	CustomerID     uuid.UUID
	ShippingLine1  string
	ShippingCity   string
	ShippingPostal string
	Country        string
	BillingAddress *order.Address
	Tax            money.Money
	Shipping       money.Money
	CreatedAt      time.Time
}

func NewOrderBuilder() *OrderBuilder {
	tax, _ := money.New(160, money.USD)
	shipping, _ := money.New(500, money.USD)
	return &OrderBuilder{
		CustomerID:     uuid.New(),
		ShippingLine1:  "123 Elm Street",
		ShippingCity:   "Portland",
		ShippingPostal: "97201",
		Country:        "US",
		Tax:            tax,
		Shipping:       shipping,
		CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

func (b *OrderBuilder) BuildDomain() (*order.Order, error) {
	addr, err := order.NewAddress(b.ShippingLine1, "", b.ShippingCity, b.ShippingPostal, b.Country)
	if err != nil {
		return nil, err
	}
	return order.NewOrder(b.CustomerID, addr, b.BillingAddress, b.Tax, b.Shipping, b.CreatedAt)
}

// BuildLineItem makes a snapshot line item priced in USD cents.
func BuildLineItem(priceCents int64) order.LineItem {
	price, _ := money.New(priceCents, money.USD)
	return order.NewLineItem(uuid.New(), "9780134190440", "The Go Programming Language", "Alan A. A. Donovan", listing.ConditionGood, price)
}
