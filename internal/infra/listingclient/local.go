// Package listingclient provides the order domain's implementations of the
// listing contract. LocalClient calls the listing service in-process; Client
// speaks the same contract over HTTP for a split deployment. The checkout saga
// cannot tell them apart.
package listingclient

import (
	"context"

	"bookmarket/internal/infra"
	"bookmarket/internal/usecase/commands"

	"github.com/google/uuid"
)

type LocalClient struct {
	listings commands.ListingCommands
	reader   commands.ListingRepository
}

func NewLocalClient(listings commands.ListingCommands, reader commands.ListingRepository) *LocalClient {
	return &LocalClient{listings: listings, reader: reader}
}

func (c *LocalClient) GetByID(ctx context.Context, listingID uuid.UUID) (*commands.ListingSnapshot, error) {
	l, err := c.reader.FindByID(ctx, listingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, commands.ErrListingNotFound
		}
		return nil, err
	}
	return &commands.ListingSnapshot{
		ID:        l.ID(),
		ISBN:      l.Book().ISBN(),
		Title:     l.Book().Title(),
		Author:    l.Book().Author(),
		Condition: l.Book().Condition(),
		Price:     l.ListingPrice(),
		Status:    l.Status(),
	}, nil
}

func (c *LocalClient) HoldForOrder(ctx context.Context, listingID, orderID uuid.UUID) error {
	_, err := c.listings.Hold(ctx, listingID, orderID)
	return err
}

func (c *LocalClient) ReleaseHold(ctx context.Context, listingID, orderID uuid.UUID) error {
	_, err := c.listings.Release(ctx, listingID, orderID)
	return err
}

func (c *LocalClient) MarkSold(ctx context.Context, listingID, orderID uuid.UUID) error {
	_, err := c.listings.MarkSold(ctx, listingID, orderID)
	return err
}
