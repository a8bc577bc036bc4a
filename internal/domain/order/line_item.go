package order

import (
	"bookmarket/internal/domain/listing"
	"bookmarket/internal/domain/money"

	"github.com/google/uuid"
)

// LineItem is the order's record of one listing, frozen at add-time. Price and
// condition do not track later listing changes; the status field shadows the
// listing's state as seen by this order.
type LineItem struct {
	listingID uuid.UUID
	isbn      string
	title     string
	author    string
	condition listing.Condition
	price     money.Money
	status    ItemStatus
}

func NewLineItem(listingID uuid.UUID, isbn, title, author string, condition listing.Condition, price money.Money) LineItem {
	return LineItem{
		listingID: listingID,
		isbn:      isbn,
		title:     title,
		author:    author,
		condition: condition,
		price:     price,
		status:    ItemStatusPending,
	}
}

func ReconstructLineItem(listingID uuid.UUID, isbn, title, author string, condition listing.Condition, price money.Money, status ItemStatus) LineItem {
	return LineItem{
		listingID: listingID,
		isbn:      isbn,
		title:     title,
		author:    author,
		condition: condition,
		price:     price,
		status:    status,
	}
}

func (li LineItem) withStatus(s ItemStatus) LineItem {
	li.status = s
	return li
}

func (li LineItem) ListingID() uuid.UUID         { return li.listingID }
func (li LineItem) ISBN() string                 { return li.isbn }
func (li LineItem) Title() string                { return li.title }
func (li LineItem) Author() string               { return li.author }
func (li LineItem) Condition() listing.Condition { return li.condition }
func (li LineItem) Price() money.Money           { return li.price }
func (li LineItem) Status() ItemStatus           { return li.status }
