//go:build unit

package api_test

import (
	"context"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/domain/order"
	"bookmarket/internal/domain/user"
	"bookmarket/internal/usecase/commands"
	"bookmarket/internal/usecase/queries"

	"github.com/google/uuid"
)

// Hand-written fakes for the usecase interfaces. Each test assigns only the
// function fields it expects the handler to call; an unexpected call panics
// on the nil field and fails the test loudly.

type fakeOrderCommands struct {
	createFn         func(ctx context.Context, input commands.CreateOrderInput) (*order.Order, error)
	addLineItemFn    func(ctx context.Context, orderID, customerID, listingID uuid.UUID) (*order.Order, error)
	removeLineItemFn func(ctx context.Context, orderID, customerID, listingID uuid.UUID) (*order.Order, error)
	checkoutFn       func(ctx context.Context, orderID, customerID uuid.UUID) (*order.Order, error)
	processPaymentFn func(ctx context.Context, orderID, customerID uuid.UUID, input commands.PaymentInput) (*order.Order, error)
	shipFn           func(ctx context.Context, orderID uuid.UUID, input commands.ShipmentInput) (*order.Order, error)
	markDeliveredFn  func(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	cancelFn         func(ctx context.Context, orderID, customerID uuid.UUID, reason string) (*order.Order, error)
	cancelExpiredFn  func(ctx context.Context) (int, error)
}

var _ commands.OrderCommands = (*fakeOrderCommands)(nil)

func (f *fakeOrderCommands) Create(ctx context.Context, input commands.CreateOrderInput) (*order.Order, error) {
	return f.createFn(ctx, input)
}

func (f *fakeOrderCommands) AddLineItem(ctx context.Context, orderID, customerID, listingID uuid.UUID) (*order.Order, error) {
	return f.addLineItemFn(ctx, orderID, customerID, listingID)
}

func (f *fakeOrderCommands) RemoveLineItem(ctx context.Context, orderID, customerID, listingID uuid.UUID) (*order.Order, error) {
	return f.removeLineItemFn(ctx, orderID, customerID, listingID)
}

func (f *fakeOrderCommands) Checkout(ctx context.Context, orderID, customerID uuid.UUID) (*order.Order, error) {
	return f.checkoutFn(ctx, orderID, customerID)
}

func (f *fakeOrderCommands) ProcessPayment(ctx context.Context, orderID, customerID uuid.UUID, input commands.PaymentInput) (*order.Order, error) {
	return f.processPaymentFn(ctx, orderID, customerID, input)
}

func (f *fakeOrderCommands) Ship(ctx context.Context, orderID uuid.UUID, input commands.ShipmentInput) (*order.Order, error) {
	return f.shipFn(ctx, orderID, input)
}

func (f *fakeOrderCommands) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return f.markDeliveredFn(ctx, orderID)
}

func (f *fakeOrderCommands) Cancel(ctx context.Context, orderID, customerID uuid.UUID, reason string) (*order.Order, error) {
	return f.cancelFn(ctx, orderID, customerID, reason)
}

func (f *fakeOrderCommands) CancelExpired(ctx context.Context) (int, error) {
	return f.cancelExpiredFn(ctx)
}

type fakeOrderQueries struct {
	getByIDFn        func(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*order.Order, error)
	listByCustomerFn func(ctx context.Context, customerID uuid.UUID) ([]*order.Order, error)
}

var _ queries.OrderQueries = (*fakeOrderQueries)(nil)

func (f *fakeOrderQueries) GetByID(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*order.Order, error) {
	return f.getByIDFn(ctx, actor, id)
}

func (f *fakeOrderQueries) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*order.Order, error) {
	return f.listByCustomerFn(ctx, customerID)
}

type fakeListingCommands struct {
	publishFn             func(ctx context.Context, input commands.PublishListingInput) (*listing.Listing, error)
	holdFn                func(ctx context.Context, listingID, orderID uuid.UUID) (*listing.Listing, error)
	releaseFn             func(ctx context.Context, listingID, orderID uuid.UUID) (*listing.Listing, error)
	markSoldFn            func(ctx context.Context, listingID, orderID uuid.UUID) (*listing.Listing, error)
	withdrawFn            func(ctx context.Context, listingID uuid.UUID, reason string) (*listing.Listing, error)
	releaseExpiredHoldsFn func(ctx context.Context) (int, error)
}

var _ commands.ListingCommands = (*fakeListingCommands)(nil)

func (f *fakeListingCommands) Publish(ctx context.Context, input commands.PublishListingInput) (*listing.Listing, error) {
	return f.publishFn(ctx, input)
}

func (f *fakeListingCommands) Hold(ctx context.Context, listingID, orderID uuid.UUID) (*listing.Listing, error) {
	return f.holdFn(ctx, listingID, orderID)
}

func (f *fakeListingCommands) Release(ctx context.Context, listingID, orderID uuid.UUID) (*listing.Listing, error) {
	return f.releaseFn(ctx, listingID, orderID)
}

func (f *fakeListingCommands) MarkSold(ctx context.Context, listingID, orderID uuid.UUID) (*listing.Listing, error) {
	return f.markSoldFn(ctx, listingID, orderID)
}

func (f *fakeListingCommands) Withdraw(ctx context.Context, listingID uuid.UUID, reason string) (*listing.Listing, error) {
	return f.withdrawFn(ctx, listingID, reason)
}

func (f *fakeListingCommands) ReleaseExpiredHolds(ctx context.Context) (int, error) {
	return f.releaseExpiredHoldsFn(ctx)
}

type fakeListingQueries struct {
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*listing.Listing, error)
	listAvailableFn func(ctx context.Context) ([]*listing.Listing, error)
}

var _ queries.ListingQueries = (*fakeListingQueries)(nil)

func (f *fakeListingQueries) GetByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeListingQueries) ListAvailable(ctx context.Context) ([]*listing.Listing, error) {
	return f.listAvailableFn(ctx)
}

type fakeAuthCommands struct {
	registerFn       func(ctx context.Context, input commands.RegisterInput) (*user.User, error)
	loginFn          func(ctx context.Context, email, rawPassword string) (string, *user.User, error)
	getCurrentUserFn func(ctx context.Context, userID uuid.UUID) (*user.User, error)
}

var _ commands.AuthCommands = (*fakeAuthCommands)(nil)

func (f *fakeAuthCommands) Register(ctx context.Context, input commands.RegisterInput) (*user.User, error) {
	return f.registerFn(ctx, input)
}

func (f *fakeAuthCommands) Login(ctx context.Context, email, rawPassword string) (string, *user.User, error) {
	return f.loginFn(ctx, email, rawPassword)
}

func (f *fakeAuthCommands) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	return f.getCurrentUserFn(ctx, userID)
}
