package service

import (
	"context"
	"math"
	"sort"
	"time"

	"sweep_bot/internal/models"
)

// Provider отдаёт свечи. Пустой результат означает ErrProviderUnavailable,
// вызывающий код трактует его как нехватку данных.
type Provider interface {
	Latest(ctx context.Context, asset, tf string, n int) ([]models.Candle, error)
	Range(ctx context.Context, asset, tf string, from, to time.Time) ([]models.Candle, error)
}

// Normalize сортирует по времени, убирает дубли (побеждает последняя запись)
// и битые свечи с high < low.
func Normalize(in []models.Candle) []models.Candle {
	out := make([]models.Candle, 0, len(in))
	for _, c := range in {
		if !finite(c) || c.High < c.Low || c.Time.IsZero() {
			continue
		}
		c.Time = c.Time.UTC()
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	uniq := out[:0]
	for _, c := range out {
		if n := len(uniq); n > 0 && uniq[n-1].Time.Equal(c.Time) {
			uniq[n-1] = c
			continue
		}
		uniq = append(uniq, c)
	}
	return uniq
}

// finite: NaN проходит сравнение High < Low, поэтому проверяем отдельно.
func finite(c models.Candle) bool {
	for _, v := range [...]float64{c.Open, c.High, c.Low, c.Close, c.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Window закрытые к моменту to свечи с открытием строго после from.
// Свеча закрыта, если t + tf <= to.
func Window(candles []models.Candle, from, to time.Time, tf time.Duration) []models.Candle {
	lo := sort.Search(len(candles), func(i int) bool { return candles[i].Time.After(from) })
	hi := sort.Search(len(candles), func(i int) bool { return candles[i].Time.Add(tf).After(to) })
	if hi < lo {
		return nil
	}
	return candles[lo:hi]
}

// Closed свечи, закрытые к моменту now.
func Closed(candles []models.Candle, now time.Time, tf time.Duration) []models.Candle {
	hi := sort.Search(len(candles), func(i int) bool { return candles[i].Time.Add(tf).After(now) })
	return candles[:hi]
}

// Last: последние n свечей (все, если n <= 0).
func Last(candles []models.Candle, n int) []models.Candle {
	if n <= 0 || n >= len(candles) {
		return candles
	}
	return candles[len(candles)-n:]
}

// Between свечи с from <= t <= to.
func Between(candles []models.Candle, from, to time.Time) []models.Candle {
	lo := sort.Search(len(candles), func(i int) bool { return !candles[i].Time.Before(from) })
	hi := sort.Search(len(candles), func(i int) bool { return candles[i].Time.After(to) })
	if hi < lo {
		return nil
	}
	return candles[lo:hi]
}
