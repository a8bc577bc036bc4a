package request

import (
	"bookmarket/internal/domain/listing"
	"bookmarket/internal/usecase/commands"

	"github.com/google/uuid"
)

type PublishListingRequest struct {
	ISBN              string       `json:"isbn" binding:"required"`
	Title             string       `json:"title" binding:"required"`
	Author            string       `json:"author"`
	Condition         string       `json:"condition" binding:"required"`
	SourceAppraisalID uuid.UUID    `json:"source_appraisal_id" binding:"required"`
	PurchaseRequestID uuid.UUID    `json:"purchase_request_id" binding:"required"`
	OfferPrice        MoneyRequest `json:"offer_price" binding:"required"`
	ListingPrice      MoneyRequest `json:"listing_price" binding:"required"`
}

func (r PublishListingRequest) ToInput() (commands.PublishListingInput, error) {
	condition, err := listing.NewCondition(r.Condition)
	if err != nil {
		return commands.PublishListingInput{}, err
	}
	offerPrice, err := r.OfferPrice.ToDomain()
	if err != nil {
		return commands.PublishListingInput{}, err
	}
	listingPrice, err := r.ListingPrice.ToDomain()
	if err != nil {
		return commands.PublishListingInput{}, err
	}

	return commands.PublishListingInput{
		ISBN:              r.ISBN,
		Title:             r.Title,
		Author:            r.Author,
		Condition:         condition,
		SourceAppraisalID: r.SourceAppraisalID,
		PurchaseRequestID: r.PurchaseRequestID,
		OfferPrice:        offerPrice,
		ListingPrice:      listingPrice,
	}, nil
}

type HoldListingRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
}

// ReleaseListingRequest and MarkSoldRequest name the holding order: a hold
// can only be undone or consumed by the order it was taken for.
type ReleaseListingRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
}

type MarkSoldRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
}

type WithdrawListingRequest struct {
	Reason string `json:"reason"`
}
