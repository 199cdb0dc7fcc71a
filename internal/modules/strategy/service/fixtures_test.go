package service

import (
	"time"

	"sweep_bot/internal/models"
)

var t0 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

// O, h, l, c
func seq(step time.Duration, bars [][4]float64) []models.Candle {
	out := make([]models.Candle, len(bars))
	for i, b := range bars {
		out[i] = models.Candle{
			Time:   t0.Add(time.Duration(i) * step),
			Open:   b[0],
			High:   b[1],
			Low:    b[2],
			Close:  b[3],
			Volume: 1,
		}
	}
	return out
}

// mirror отражает свечи вокруг уровня axis: бычья картинка становится медвежьей.
func mirror(in []models.Candle, axis float64) []models.Candle {
	out := make([]models.Candle, len(in))
	for i, c := range in {
		out[i] = models.Candle{
			Time:   c.Time,
			Open:   axis - c.Open,
			High:   axis - c.Low,
			Low:    axis - c.High,
			Close:  axis - c.Close,
			Volume: c.Volume,
		}
	}
	return out
}

// Часовик: LOW 95 снят на 8-й свече, HIGH 105 пробит на 9-й.
func bullishHTF() []models.Candle {
	return seq(time.Hour, [][4]float64{
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
	})
}

// 15m, полуокно 1: свип LOW 9.5 на 5-й, CHoCH 11.0 на 6-й,
// гэп [10.8, 11.0] на 7..9, ретест на 10-й, цель HIGH 14.0 на 12-й.
func buySetupLTF() []models.Candle {
	return seq(15*time.Minute, [][4]float64{
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
	})
}

func testParams() Params {
	return Params{
		LiquidityLookback:  2,
		MinRR:              1.5,
		ImbalanceThreshold: 0,
		StopBuffer:         DefaultStopBuffer,
		HTFMinutes:         60,
		LTFMinutes:         15,
	}
}
