package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"bookmarket/internal/pkg/config"
	"bookmarket/internal/usecase/commands"

	"go.uber.org/fx"
)

var SweeperModule = fx.Module("sweeper",
	fx.Invoke(StartSweeper),
)

// StartSweeper runs the two expiry sweeps on a shared ticker. The listing
// sweep and the order sweep are deliberately independent: each converges its
// own aggregate, and neither assumes the other has already run.
func StartSweeper(
	lc fx.Lifecycle,
	cfg config.Config,
	listings commands.ListingCommands,
	orders commands.OrderCommands,
) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go runSweeps(ctx, cfg.Checkout.SweepInterval, listings, orders, done)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func runSweeps(
	ctx context.Context,
	interval time.Duration,
	listings commands.ListingCommands,
	orders commands.OrderCommands,
	done chan<- struct{},
) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("expiry sweeper started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			if released, err := listings.ReleaseExpiredHolds(ctx); err != nil {
				slog.Error("listing hold sweep failed", "error", err)
			} else if released > 0 {
				slog.Info("released expired holds", "count", released)
			}

			if cancelled, err := orders.CancelExpired(ctx); err != nil {
				slog.Error("order expiry sweep failed", "error", err)
			} else if cancelled > 0 {
				slog.Info("cancelled expired orders", "count", cancelled)
			}
		}
	}
}
