package components

import (
	"bookmarket/internal/infra/listingclient"
	"bookmarket/internal/infra/repository"
	"bookmarket/internal/usecase/commands"
	"bookmarket/internal/usecase/queries"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		// Listing
		fx.Annotate(
			repository.NewListingRepository,
			fx.As(new(commands.ListingRepository)),
			fx.As(new(queries.ListingReadStore)),
		),
		// Order
		fx.Annotate(
			repository.NewOrderRepository,
			fx.As(new(commands.OrderRepository)),
			fx.As(new(queries.OrderReadStore)),
		),
		// User
		fx.Annotate(
			repository.NewUserRepository,
			fx.As(new(commands.UserRepository)),
		),
		// Order -> Listing boundary. In-process by default; swap for
		// listingclient.NewClient when the listing service runs separately.
		fx.Annotate(
			listingclient.NewLocalClient,
			fx.As(new(commands.ListingClient)),
		),
	),
)
