package main

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"sweep_bot/internal/modules/bootstrap"
	"sweep_bot/internal/modules/config"
	"sweep_bot/internal/modules/market_data/service"
	"sweep_bot/internal/modules/postgres"
	"sweep_bot/pkg/db"
	"sweep_bot/pkg/logger"
)

const migrationsDir = "migrations"

// assets собирает активы сканера и бэктеста.
func assets(cfg *config.Config) []string {
	out := append([]string(nil), cfg.Scan.Assets...)
	if a := cfg.Backtest.Asset; a != "" {
		seen := false
		for _, s := range out {
			seen = seen || s == a
		}
		if !seen {
			out = append(out, a)
		}
	}
	return out
}

func run(ctx context.Context, cfg *config.Config, tx *db.PgTxManager) error {
	if tx == nil {
		return errors.New("import requires db_dsn")
	}
	applied, err := db.Migrate(ctx, tx, migrationsDir)
	if err != nil {
		return err
	}
	logger.Info("[DB] migrations applied: %v", applied)

	src := service.NewCSVProvider(cfg.Data.CSVDir)
	n, err := service.Copy(ctx, src, service.NewPgProvider(tx), assets(cfg),
		[]string{cfg.Strategy.HTF, cfg.Strategy.LTF})
	if err != nil {
		return err
	}
	logger.Info("[DATA] import done: %d candles from %s", n, cfg.Data.CSVDir)
	return nil
}

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
		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, cfg *config.Config, tx *db.PgTxManager) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						code := 0
						if err := run(context.Background(), cfg, tx); err != nil {
							logger.Error("[DATA] import: %v", err)
							code = 1
						}
						_ = sd.Shutdown(fx.ExitCode(code))
					}()
					return nil
				},
			})
		}),
	)
	app.Run()
}
