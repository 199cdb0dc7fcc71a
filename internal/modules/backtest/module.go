package backtest

import (
	"context"

	"go.uber.org/fx"

	"sweep_bot/internal/helper"
	"sweep_bot/internal/modules/backtest/service"
	"sweep_bot/internal/modules/config"
	marketdata "sweep_bot/internal/modules/market_data/service"
	strategy "sweep_bot/internal/modules/strategy/service"
	"sweep_bot/pkg/db"
	"sweep_bot/pkg/logger"
)

// EngineConfig переводит секцию backtest в параметры движка.
func EngineConfig(cfg *config.Config) (service.Config, error) {
	b := cfg.Backtest
	htf, err := helper.TFDuration(cfg.Strategy.HTF, cfg.Timeframes)
	if err != nil {
		return service.Config{}, err
	}
	ltf, err := helper.TFDuration(cfg.Strategy.LTF, cfg.Timeframes)
	if err != nil {
		return service.Config{}, err
	}
	if b.RiskBoth() {
		logger.Warn("[BACKTEST] both risk_pct and risk_fixed set, risk_pct %.2f%% wins", b.RiskPct)
	}
	return service.Config{
		Asset:          b.Asset,
		Start:          b.StartAt,
		End:            b.EndAt,
		DailyCheck:     b.DailyCheck,
		Lookback:       b.LookbackWindow,
		HTF:            htf,
		LTF:            ltf,
		InitialCapital: b.InitialCapital,
		Risk:           service.RiskSpec{Pct: b.RiskPct, Fixed: b.RiskFixed},
		PipSize:        b.PipSize,
		PipValuePerLot: b.PipValuePerLot,
		MinVolume:      b.MinVolume,
		FillMode:       service.ParseFillMode(b.FillMode),
	}, nil
}

func NewEngine(cfg *config.Config, gen *strategy.Generator) (*service.Engine, error) {
	ec, err := EngineConfig(cfg)
	if err != nil {
		return nil, err
	}
	return service.NewEngine(ec, gen)
}

func NewService(cfg *config.Config, provider marketdata.Provider, engine *service.Engine,
	gen *strategy.Generator, tx *db.PgTxManager) *service.Service {
	opt := service.Options{
		HTFName:   cfg.Strategy.HTF,
		LTFName:   cfg.Strategy.LTF,
		OutputDir: cfg.Backtest.OutputDir,
	}
	if tx != nil {
		opt.Store = service.NewPgLedgerStore(tx)
	}
	return service.NewService(provider, engine, gen, opt)
}

// Прогон на старте приложения, после него приложение гасится.
func Run(lc fx.Lifecycle, sd fx.Shutdowner, svc *service.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				code := 0
				if _, err := svc.Run(context.Background()); err != nil {
					logger.Error("[BACKTEST] %v", err)
					code = 1
				}
				_ = sd.Shutdown(fx.ExitCode(code))
			}()
			return nil
		},
	})
}

// Module регистрируем как fx-провайдер.
func Module() fx.Option {
	return fx.Module("backtest",
		fx.Provide(
			NewEngine,
			NewService,
		),
		fx.Invoke(Run),
	)
}
