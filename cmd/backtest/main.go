package main

import (
	"context"

	"go.uber.org/fx"

	"sweep_bot/internal/modules/backtest"
	"sweep_bot/internal/modules/bootstrap"
	"sweep_bot/internal/modules/config"
	marketdata "sweep_bot/internal/modules/market_data"
	"sweep_bot/internal/modules/postgres"
	"sweep_bot/internal/modules/strategy"
)

func main() {
	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		bootstrap.Module(),
		postgres.Module(),
		marketdata.Module(),
		strategy.Module(),
		backtest.Module(),
	)
	app.Run()
}
