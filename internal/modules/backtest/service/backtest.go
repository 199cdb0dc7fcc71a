package service

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"

	"sweep_bot/internal/models"
	marketdata "sweep_bot/internal/modules/market_data/service"
	strategy "sweep_bot/internal/modules/strategy/service"
	"sweep_bot/pkg/logger"
	"sweep_bot/pkg/tracing"
)

// Запас истории перед стартом, чтобы первое окно поиска было полным.
const historyMargin = 14 * 24 * time.Hour

// Store куда сохранять прогон; nil-хранилище допустимо.
type Store interface {
	Save(ctx context.Context, res Result) error
}

// Service грузит свечи, гоняет Engine и раздаёт отчёты.
type Service struct {
	provider marketdata.Provider
	engine   *Engine
	params   strategy.Params
	htfName  string
	ltfName  string
	outDir   string
	store    Store
}

type Options struct {
	HTFName, LTFName string
	OutputDir        string
	Store            Store
}

func NewService(provider marketdata.Provider, engine *Engine, gen *strategy.Generator, opt Options) *Service {
	return &Service{
		provider: provider,
		engine:   engine,
		params:   gen.Params(),
		htfName:  opt.HTFName,
		ltfName:  opt.LTFName,
		outDir:   opt.OutputDir,
		store:    opt.Store,
	}
}

// Run делает один прогон. Нехватка данных у провайдера не ошибка, прогон просто пустой.
func (s *Service) Run(ctx context.Context) (Result, error) {
	cfg := s.engine.Config()
	logger.Info("[BACKTEST] %s from %s to %s, check %s UTC, lookback %s",
		cfg.Asset, fmtTime(cfg.Start), fmtTime(cfg.End), cfg.DailyCheck, cfg.Lookback)

	htf, ltf := s.load(ctx)

	span, ctx := tracing.StartSpan(ctx, "backtest.run")
	res := s.engine.Run(htf, ltf)
	res.RunID = RunID(cfg, s.params, htf, ltf)
	span.SetTag("run_id", res.RunID)
	span.SetTag("trades", res.Summary.Trades)
	span.Finish()

	for _, d := range res.Days {
		logger.Debug("[BACKTEST] %s %s: %s", d.Instant.Format(time.RFC3339), d.Action, d.Reason)
	}
	for _, t := range res.State.Trades {
		logger.Info("[BACKTEST] #%d %s %.2f %s %.5f -> %s %.5f %s pips=%.1f pnl=%.2f balance=%.2f",
			t.ID, t.Side, t.Volume, t.EntryTime.Format(time.RFC3339), t.Entry,
			t.ExitTime.Format(time.RFC3339), t.Exit, t.Reason, t.ProfitPips, t.Profit, t.BalanceAfter)
	}
	sm := res.Summary
	logger.Info("[BACKTEST] run=%s trades=%d win_rate=%.1f%% pf=%s pips=%.1f net=%.2f (%.2f%%) max_dd=%.2f (%.2f%%) trace=%s",
		res.RunID, sm.Trades, sm.WinRate, sm.ProfitFactor, sm.TotalPips, sm.NetProfit, sm.NetProfitPct,
		sm.MaxDrawdown, sm.MaxDrawdownPct, tracing.TraceID(ctx))

	if s.outDir != "" {
		if err := WriteReports(s.outDir, res); err != nil {
			return res, err
		}
		logger.Info("[BACKTEST] reports written to %s", s.outDir)
	}
	if s.store != nil {
		if err := s.store.Save(ctx, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (s *Service) load(ctx context.Context) (htf, ltf []models.Candle) {
	span, ctx := tracing.StartSpan(ctx, "backtest.load")
	defer span.Finish()

	cfg := s.engine.Config()
	get := func(tf string, d time.Duration) []models.Candle {
		var (
			cs  []models.Candle
			err error
		)
		if cfg.Start.IsZero() && cfg.End.IsZero() {
			cs, err = s.provider.Latest(ctx, cfg.Asset, tf, 0)
		} else {
			from, to := time.Unix(0, 0).UTC(), time.Now().UTC()
			if !cfg.Start.IsZero() {
				from = cfg.Start.Add(-cfg.Lookback - historyMargin)
			}
			if !cfg.End.IsZero() {
				to = cfg.End.Add(d)
			}
			cs, err = s.provider.Range(ctx, cfg.Asset, tf, from, to)
		}
		if err != nil {
			ext.Error.Set(span, true)
			if errors.Is(err, models.ErrProviderUnavailable) {
				logger.Warn("[BACKTEST] %s %s: %v, treated as insufficient data", cfg.Asset, tf, err)
			} else {
				logger.Error("[BACKTEST] %s %s: %v", cfg.Asset, tf, err)
			}
			return nil
		}
		return marketdata.Normalize(cs)
	}

	htf = get(s.htfName, cfg.HTF)
	ltf = get(s.ltfName, cfg.LTF)
	span.SetTag("htf", len(htf))
	span.SetTag("ltf", len(ltf))
	logger.Info("[DATA] %s loaded htf=%d ltf=%d candles", cfg.Asset, len(htf), len(ltf))
	return htf, ltf
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
