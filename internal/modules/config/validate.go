package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"sweep_bot/internal/helper"
	"sweep_bot/internal/models"
)

// Validate ловит ошибки конфигурации на старте, а не внутри пайплайна.
func (c *Config) Validate() error {
	bad := func(format string, args ...any) error {
		return errors.Wrapf(models.ErrConfiguration, format, args...)
	}

	s := c.Strategy
	switch {
	case s.LiquidityLookback < 1:
		return bad("strategy.liquidity_lookback must be >= 1, got %d", s.LiquidityLookback)
	case !(s.MinRR > 0):
		return bad("strategy.min_rr must be > 0, got %v", s.MinRR)
	case s.ImbalanceThreshold < 0:
		return bad("strategy.imbalance_threshold must be >= 0, got %v", s.ImbalanceThreshold)
	case s.StopBuffer < 0 || s.StopBuffer >= 1:
		return bad("strategy.stop_buffer must be in [0, 1), got %v", s.StopBuffer)
	case s.SweepScanCandles < 0 || s.ContextScanCandles < 0:
		return bad("strategy scan candles must be >= 0")
	}
	if s.SessionFilter.Enabled {
		f := s.SessionFilter
		if f.OpenHour < 0 || f.CloseHour > 24 || f.OpenHour >= f.CloseHour {
			return bad("strategy.session_filter hours [%d, %d) are invalid", f.OpenHour, f.CloseHour)
		}
	}
	for _, tf := range []string{s.HTF, s.LTF} {
		if _, err := helper.TFDuration(tf, c.Timeframes); err != nil {
			return bad("timeframe %q: %v", tf, err)
		}
	}
	htf, _ := helper.TFDuration(s.HTF, c.Timeframes)
	ltf, _ := helper.TFDuration(s.LTF, c.Timeframes)
	if htf <= ltf {
		return bad("strategy.htf %s must be longer than strategy.ltf %s", s.HTF, s.LTF)
	}

	if c.Scan.Interval <= 0 || c.Scan.HistoryCandles < 0 {
		return bad("scan.interval must be > 0 and scan.history_candles >= 0")
	}

	return c.Backtest.validate()
}

func (b *Backtest) validate() error {
	bad := func(format string, args ...any) error {
		return errors.Wrapf(models.ErrConfiguration, format, args...)
	}

	if b.RiskPct <= 0 && b.RiskFixed <= 0 {
		return bad("backtest: one of risk_pct or risk_fixed must be > 0")
	}
	if b.InitialCapital <= 0 {
		return bad("backtest.initial_capital must be > 0, got %v", b.InitialCapital)
	}
	if b.PipSize < 0 || b.PipValuePerLot <= 0 || b.MinVolume <= 0 {
		return bad("backtest: pip_size >= 0, pip_value_per_lot > 0, min_volume > 0 required")
	}
	if b.LookbackWindow <= 0 {
		return bad("backtest.lookback_window must be > 0, got %v", b.LookbackWindow)
	}
	switch strings.ToLower(b.FillMode) {
	case "", "anchor", "shift":
	default:
		return bad("backtest.fill_mode %q: want anchor or shift", b.FillMode)
	}

	d, err := helper.ParseClock(b.DailyCheckTime)
	if err != nil {
		return bad("backtest.daily_check_time: %v", err)
	}
	b.DailyCheck = d

	if b.Start != "" {
		if b.StartAt, err = parseDate(b.Start, false); err != nil {
			return bad("backtest.start: %v", err)
		}
	}
	if b.End != "" {
		if b.EndAt, err = parseDate(b.End, true); err != nil {
			return bad("backtest.end: %v", err)
		}
	}
	if !b.StartAt.IsZero() && !b.EndAt.IsZero() && !b.StartAt.Before(b.EndAt) {
		return bad("backtest.start %s must be before end %s", b.Start, b.End)
	}
	return nil
}

// RiskBoth: заданы оба варианта риска; побеждает процент.
func (b Backtest) RiskBoth() bool { return b.RiskPct > 0 && b.RiskFixed > 0 }

// Голая дата конца окна включает весь день.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t.UTC(), nil
}
