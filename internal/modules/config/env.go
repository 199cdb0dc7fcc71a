package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "SWEEP"

// SWEEP_STRATEGY_MIN_RR перекрывает strategy.min_rr и т.д.
func applyEnvOverrides(c *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	ints := map[string]*int{
		"strategy.liquidity_lookback":   &c.Strategy.LiquidityLookback,
		"strategy.sweep_scan_candles":   &c.Strategy.SweepScanCandles,
		"strategy.context_scan_candles": &c.Strategy.ContextScanCandles,
		"scan.history_candles":          &c.Scan.HistoryCandles,
	}
	floats := map[string]*float64{
		"strategy.min_rr":              &c.Strategy.MinRR,
		"strategy.imbalance_threshold": &c.Strategy.ImbalanceThreshold,
		"strategy.stop_buffer":         &c.Strategy.StopBuffer,
		"backtest.initial_capital":     &c.Backtest.InitialCapital,
		"backtest.risk_pct":            &c.Backtest.RiskPct,
		"backtest.risk_fixed":          &c.Backtest.RiskFixed,
		"backtest.pip_size":            &c.Backtest.PipSize,
		"backtest.pip_value_per_lot":   &c.Backtest.PipValuePerLot,
		"backtest.min_volume":          &c.Backtest.MinVolume,
	}
	strs := map[string]*string{
		"strategy.htf":              &c.Strategy.HTF,
		"strategy.ltf":              &c.Strategy.LTF,
		"backtest.asset":            &c.Backtest.Asset,
		"backtest.start":            &c.Backtest.Start,
		"backtest.end":              &c.Backtest.End,
		"backtest.daily_check_time": &c.Backtest.DailyCheckTime,
		"backtest.fill_mode":        &c.Backtest.FillMode,
		"backtest.output_dir":       &c.Backtest.OutputDir,
		"data.source":               &c.Data.Source,
		"data.csv_dir":              &c.Data.CSVDir,
		"log.level":                 &c.Log.Level,
	}
	durs := map[string]*time.Duration{
		"backtest.lookback_window": &c.Backtest.LookbackWindow,
		"scan.interval":            &c.Scan.Interval,
	}

	for k, p := range ints {
		if v.IsSet(k) {
			*p = v.GetInt(k)
		}
	}
	for k, p := range floats {
		if v.IsSet(k) {
			*p = v.GetFloat64(k)
		}
	}
	for k, p := range strs {
		if v.IsSet(k) {
			*p = v.GetString(k)
		}
	}
	for k, p := range durs {
		if v.IsSet(k) {
			*p = v.GetDuration(k)
		}
	}
	if v.IsSet("strategy.session_filter.enabled") {
		c.Strategy.SessionFilter.Enabled = v.GetBool("strategy.session_filter.enabled")
	}
	if v.IsSet("scan.assets") {
		c.Scan.Assets = strings.Split(v.GetString("scan.assets"), ",")
	}
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
