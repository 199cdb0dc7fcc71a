package bootstrap

import (
	"context"

	"go.uber.org/fx"

	bootstrap "sweep_bot/internal/modules/bootstrap/service"
	"sweep_bot/internal/modules/config"
	marketdata "sweep_bot/internal/modules/market_data/service"
	"sweep_bot/internal/notify"
	"sweep_bot/pkg/logger"
	"sweep_bot/pkg/tracing"
)

// Observability поднимает логгер и трейсер до остальных модулей.
func Observability(lc fx.Lifecycle, cfg *config.Config) error {
	logger.SetServiceName(cfg.Service.Name)
	tracing.SetServiceName(cfg.Service.Name)
	if err := logger.Init(cfg.Log.Level, cfg.Log.JSON); err != nil {
		return err
	}

	closer, err := tracing.Init(tracing.Config{
		Enabled: cfg.Tracing.Enabled,
		Host:    cfg.Tracing.Host,
		Port:    cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closer()
			logger.Sync()
			return nil
		},
	})
	return nil
}

func NewWarmuper(cfg *config.Config, provider marketdata.Provider, n notify.Notifier) *bootstrap.Warmuper {
	return bootstrap.NewWarmuper(provider, n, cfg.Strategy.HTF, cfg.Strategy.LTF, cfg.Scan.HistoryCandles)
}

// Логгер и трейсинг, нужен обоим бинарям.
func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Invoke(Observability),
	)
}

// Прогрев истории перед сканером.
func WarmupModule() fx.Option {
	return fx.Module("warmup",
		fx.Provide(
			NewWarmuper,
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, wu *bootstrap.Warmuper) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					go func() {
						n, err := wu.Warmup(context.Background(), cfg.Scan.Assets)
						if err != nil {
							logger.Warn("[BOOT] warmup error: %v", err)
							return
						}
						logger.Info("[BOOT] warmup done: %d assets, %d candles", len(cfg.Scan.Assets), n)
					}()
					return nil
				},
			})
		}),
	)
}
