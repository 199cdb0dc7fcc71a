package runner

import (
	"context"

	"go.uber.org/fx"

	"sweep_bot/internal/helper"
	"sweep_bot/internal/modules/config"
	health "sweep_bot/internal/modules/health/service"
	marketdata "sweep_bot/internal/modules/market_data/service"
	strategy "sweep_bot/internal/modules/strategy/service"
	"sweep_bot/internal/notify"
)

func NewConfig(cfg *config.Config) (Config, error) {
	htf, err := helper.TFDuration(cfg.Strategy.HTF, cfg.Timeframes)
	if err != nil {
		return Config{}, err
	}
	ltf, err := helper.TFDuration(cfg.Strategy.LTF, cfg.Timeframes)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Assets:   cfg.Scan.Assets,
		HTF:      cfg.Strategy.HTF,
		LTF:      cfg.Strategy.LTF,
		HTFDur:   htf,
		LTFDur:   ltf,
		History:  cfg.Scan.HistoryCandles,
		Interval: cfg.Scan.Interval,
	}, nil
}

func NewNotifier(cfg *config.Config) notify.Notifier {
	return notify.New(cfg.Telegram.Token, cfg.Telegram.ChatID)
}

func NewRunner(cfg Config, provider marketdata.Provider, gen *strategy.Generator, n notify.Notifier, state *health.State) *Runner {
	return New(cfg, provider, gen, n, state)
}

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			NewConfig,
			NewNotifier,
			NewRunner,
		),
		fx.Invoke(func(lc fx.Lifecycle, r *Runner, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go r.Start(ctx)
					return nil
				},
				OnStop: func(_ context.Context) error {
					r.Stop()
					return nil
				},
			})
		}),
	)
}
