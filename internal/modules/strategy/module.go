package strategy

import (
	"go.uber.org/fx"

	"sweep_bot/internal/helper"
	"sweep_bot/internal/modules/config"
	"sweep_bot/internal/modules/strategy/service"
	"sweep_bot/pkg/logger"
)

// ParamsFromConfig переводит секцию strategy в параметры генератора.
func ParamsFromConfig(cfg *config.Config) (service.Params, error) {
	s := cfg.Strategy
	htf, err := helper.TFDuration(s.HTF, cfg.Timeframes)
	if err != nil {
		return service.Params{}, err
	}
	ltf, err := helper.TFDuration(s.LTF, cfg.Timeframes)
	if err != nil {
		return service.Params{}, err
	}
	p := service.Params{
		LiquidityLookback:  s.LiquidityLookback,
		MinRR:              s.MinRR,
		ImbalanceThreshold: s.ImbalanceThreshold,
		StopBuffer:         s.StopBuffer,
		SweepScanCandles:   s.SweepScanCandles,
		ContextScanCandles: s.ContextScanCandles,
		HTFMinutes:         int(htf.Minutes()),
		LTFMinutes:         int(ltf.Minutes()),
		Session: service.SessionFilter{
			Enabled:   s.SessionFilter.Enabled,
			OpenHour:  s.SessionFilter.OpenHour,
			CloseHour: s.SessionFilter.CloseHour,
		},
	}
	return p, p.Validate()
}

func NewGenerator(cfg *config.Config) (*service.Generator, error) {
	p, err := ParamsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("[STRAT] generator: htf=%s ltf=%s lookback=%d min_rr=%.2f",
		cfg.Strategy.HTF, cfg.Strategy.LTF, p.LiquidityLookback, p.MinRR)
	return service.NewGenerator(p), nil
}

// Module регистрируем как fx-провайдер.
func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			NewGenerator,
		),
	)
}
