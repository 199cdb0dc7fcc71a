package service

import (
	"math"
	"time"

	"sweep_bot/internal/models"
	strategy "sweep_bot/internal/modules/strategy/service"
)

var t0 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

const ltfStep = 15 * time.Minute

// сетап на 15m: свип LOW 9.5 свечой с low 9.0, гэп [10.8, 11.0], цель HIGH 14.0
var setup = [][4]float64{
	{10, 10.5, 9.8, 10.2},
	{10.2, 11.0, 10.1, 10.8},
	{10.8, 10.9, 10.0, 10.1},
	{10.1, 10.3, 9.5, 9.6},
	{9.6, 10.0, 9.7, 9.9},
	{9.9, 10.0, 9.0, 9.5},
	{9.5, 11.2, 9.6, 11.1},
	{11.1, 11.5, 11.0, 11.4},
	{10.95, 10.98, 10.85, 10.9},
	{10.75, 10.8, 10.5, 10.6},
	{10.6, 10.85, 10.55, 10.8},
	{10.8, 12.0, 10.7, 11.9},
	{11.9, 14.0, 11.8, 13.5},
	{13.5, 13.8, 12.9, 13.0},
}

// часовик с бычьим контекстом: LOW 95 снят, HIGH 105 пробит
var bullish = [][4]float64{
	{100, 101, 99, 100},
	{100, 102, 99.5, 101},
	{101, 105, 100, 104},
	{104, 104.5, 101, 102},
	{102, 103, 98, 99},
	{99, 100, 95, 96},
	{96, 99, 97, 98},
	{98, 100, 97.5, 99},
	{99, 101, 94, 100},
	{100, 106, 99, 105},
	{105, 106.5, 103, 104},
}

// после сигнала в 12:00: свеча 12:00 и свеча входа 12:15 с open 10.9
var (
	preEntry   = [4]float64{13.0, 13.1, 10.9, 11.0}
	entryBar   = [4]float64{10.9, 11.2, 10.6, 11.0}
	targetBar  = [4]float64{11.0, 14.2, 10.9, 14.1}
	bothBar    = [4]float64{11.0, 14.2, 8.5, 9.0}
	quietBar   = [4]float64{11.0, 11.5, 10.5, 11.2}
	flatBar    = [4]float64{11.0, 11.3, 10.8, 11.1}
	wantStop   = 9.0 * (1 - strategy.DefaultStopBuffer)
	wantVolume = 5.25
)

func bar(t time.Time, b [4]float64) models.Candle {
	return models.Candle{Time: t, Open: b[0], High: b[1], Low: b[2], Close: b[3], Volume: 1}
}

// 34 монотонных 15m свечи с 00:00 (без swing-точек), сетап 08:30-11:45,
// затем tail с 12:00. Часовик 00:00-11:00, окно поиска видит 01:00-11:00.
func build(tail ...[4]float64) (htf, ltf []models.Candle) {
	for k := 0; k < 34; k++ {
		f := 0.01 * float64(k)
		ltf = append(ltf, bar(t0.Add(time.Duration(k)*ltfStep), [4]float64{8 + f, 8.1 + f, 8 + f, 8.05 + f}))
	}
	for i, b := range setup {
		ltf = append(ltf, bar(t0.Add(time.Duration(34+i)*ltfStep), b))
	}
	for i, b := range tail {
		ltf = append(ltf, bar(t0.Add(time.Duration(48+i)*ltfStep), b))
	}

	htf = append(htf, bar(t0, [4]float64{100, 100.5, 99.5, 100}))
	for i, b := range bullish {
		htf = append(htf, bar(t0.Add(time.Duration(1+i)*time.Hour), b))
	}
	return htf, ltf
}

func repeat(b [4]float64, n int) [][4]float64 {
	out := make([][4]float64, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func mirror(in []models.Candle, axis float64) []models.Candle {
	out := make([]models.Candle, len(in))
	for i, c := range in {
		out[i] = models.Candle{Time: c.Time, Open: axis - c.Open, High: axis - c.Low, Low: axis - c.High, Close: axis - c.Close, Volume: c.Volume}
	}
	return out
}

func testGenerator() *strategy.Generator {
	return strategy.NewGenerator(strategy.Params{
		LiquidityLookback: 2,
		MinRR:             1.5,
		StopBuffer:        strategy.DefaultStopBuffer,
		HTFMinutes:        60,
		LTFMinutes:        15,
	})
}

func testConfig() Config {
	return Config{
		Asset:          "EURUSD",
		DailyCheck:     12 * time.Hour,
		Lookback:       12 * time.Hour,
		HTF:            time.Hour,
		LTF:            ltfStep,
		InitialCapital: 10000,
		Risk:           RiskSpec{Pct: 1},
		PipSize:        1,
		PipValuePerLot: 10,
		MinVolume:      0.01,
		FillMode:       FillAnchor,
	}
}

func mustEngine(cfg Config) *Engine {
	e, err := NewEngine(cfg, testGenerator())
	if err != nil {
		panic(err)
	}
	return e
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func actions(days []DayReport) []DayAction {
	out := make([]DayAction, len(days))
	for i, d := range days {
		out[i] = d.Action
	}
	return out
}
