package order

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrIncompleteAddress = errors.New("address requires line1, city, postal code and country")
	ErrEmptyPaymentField = errors.New("payment method and transaction id are required")
	ErrEmptyTracking     = errors.New("carrier and tracking number are required")
)

type Address struct {
	line1      string
	line2      string
	city       string
	postalCode string
	country    string
}

func NewAddress(line1, line2, city, postalCode, country string) (Address, error) {
	line1 = strings.TrimSpace(line1)
	city = strings.TrimSpace(city)
	postalCode = strings.TrimSpace(postalCode)
	country = strings.TrimSpace(country)
	if line1 == "" || city == "" || postalCode == "" || country == "" {
		return Address{}, ErrIncompleteAddress
	}

	return Address{
		line1:      line1,
		line2:      strings.TrimSpace(line2),
		city:       city,
		postalCode: postalCode,
		country:    country,
	}, nil
}

func (a Address) Line1() string      { return a.line1 }
func (a Address) Line2() string      { return a.line2 }
func (a Address) City() string       { return a.city }
func (a Address) PostalCode() string { return a.postalCode }
func (a Address) Country() string    { return a.country }

// Payment is the record attached when an order is confirmed. The gateway
// interaction itself happens elsewhere; only its outcome lands here.
type Payment struct {
	method        string
	transactionID string
	paidAt        time.Time
}

func NewPayment(method, transactionID string, paidAt time.Time) (Payment, error) {
	method = strings.TrimSpace(method)
	transactionID = strings.TrimSpace(transactionID)
	if method == "" || transactionID == "" {
		return Payment{}, ErrEmptyPaymentField
	}

	return Payment{method: method, transactionID: transactionID, paidAt: paidAt}, nil
}

func (p Payment) Method() string        { return p.method }
func (p Payment) TransactionID() string { return p.transactionID }
func (p Payment) PaidAt() time.Time     { return p.paidAt }

type ShipmentTracking struct {
	carrier        string
	trackingNumber string
	shippedAt      time.Time
}

func NewShipmentTracking(carrier, trackingNumber string, shippedAt time.Time) (ShipmentTracking, error) {
	carrier = strings.TrimSpace(carrier)
	trackingNumber = strings.TrimSpace(trackingNumber)
	if carrier == "" || trackingNumber == "" {
		return ShipmentTracking{}, ErrEmptyTracking
	}

	return ShipmentTracking{carrier: carrier, trackingNumber: trackingNumber, shippedAt: shippedAt}, nil
}

func (t ShipmentTracking) Carrier() string        { return t.carrier }
func (t ShipmentTracking) TrackingNumber() string { return t.trackingNumber }
func (t ShipmentTracking) ShippedAt() time.Time   { return t.shippedAt }
