package components

import (
	"bookmarket/internal/handler"
	"bookmarket/internal/handler/api"
	"bookmarket/internal/handler/middleware"
	"bookmarket/internal/pkg/config"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		func(cfg config.Config) config.CookieConfig { return cfg.Cookie },
		func(cfg config.Config) config.JWTConfig { return cfg.JWT },
		api.NewAuthHandler,
		api.NewListingHandler,
		api.NewOrderHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
