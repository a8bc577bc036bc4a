package response

import (
	"time"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/domain/money"

	"github.com/google/uuid"
)

type ListingResponse struct {
	ID                uuid.UUID   `json:"id"`
	ISBN              string      `json:"isbn"`
	Title             string      `json:"title"`
	Author            string      `json:"author"`
	Condition         string      `json:"condition"`
	Status            string      `json:"status"`
	ListingPrice      money.Money `json:"listing_price"`
	HeldByOrderID     *uuid.UUID  `json:"held_by_order_id,omitempty"`
	HeldUntil         *time.Time  `json:"held_until,omitempty"`
	SoldAt            *time.Time  `json:"sold_at,omitempty"`
	WithdrawReason    *string     `json:"withdraw_reason,omitempty"`
	SourceAppraisalID uuid.UUID   `json:"source_appraisal_id"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func FromListing(l *listing.Listing) *ListingResponse {
	return &ListingResponse{
		ID:                l.ID(),
		ISBN:              l.Book().ISBN(),
		Title:             l.Book().Title(),
		Author:            l.Book().Author(),
		Condition:         l.Book().Condition().String(),
		Status:            string(l.Status()),
		ListingPrice:      l.ListingPrice(),
		HeldByOrderID:     l.HeldByOrderID(),
		HeldUntil:         l.HeldUntil(),
		SoldAt:            l.SoldAt(),
		WithdrawReason:    l.WithdrawReason(),
		SourceAppraisalID: l.SourceAppraisalID(),
		CreatedAt:         l.CreatedAt(),
		UpdatedAt:         l.UpdatedAt(),
	}
}

func FromListings(ls []*listing.Listing) []*ListingResponse {
	out := make([]*ListingResponse, len(ls))
	for i, l := range ls {
		out[i] = FromListing(l)
	}
	return out
}
