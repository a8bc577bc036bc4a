//go:build unit || e2e

package builder

import (
	"time"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/domain/money"

	"github.com/google/uuid"
)

type ListingBuilder struct {
	ISBN              string
	Title             string
	Author            string
	Condition         listing.Condition
	SourceAppraisalID uuid.UUID
	PurchaseRequestID uuid.UUID
	OfferPrice        money.Money
	ListingPrice      money.Money
	CreatedAt         time.Time
}

func NewListingBuilder() *ListingBuilder {
	offer, _ := money.New(800, money.USD)
	price, _ := money.New(1999, money.USD)
	return &ListingBuilder{
		ISBN:              "9780134190440",
		Title:             "The Go Programming Language",
		Author:            "Alan A. A. Donovan",
		Condition:         listing.ConditionGood,
		SourceAppraisalID: uuid.New(),
		PurchaseRequestID: uuid.New(),
		OfferPrice:        offer,
		ListingPrice:      price,
		CreatedAt:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (b *ListingBuilder) With(mutate func(*ListingBuilder)) *ListingBuilder {
	mutate(b)
	return b
}

func (b *ListingBuilder) BuildDomain() (*listing.Listing, error) {
	book, err := listing.NewBookInfo(b.ISBN, b.Title, b.Author, b.Condition)
	if err != nil {
		return nil, err
	}
	return listing.NewListing(book, b.SourceAppraisalID, b.PurchaseRequestID, b.OfferPrice, b.ListingPrice, b.CreatedAt)
}
