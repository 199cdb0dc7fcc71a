package service

import (
	"sort"
	"time"

	"sweep_bot/internal/models"
)

// FindSwingPoints фрактальные экстремумы с полуокном n.
// Свеча i (n <= i < len-n): HIGH, если её high максимален в [i-n, i+n];
// для LOW симметрично. Равные экстремумы засчитываются каждый.
// Если свеча одновременно HIGH и LOW, HIGH идёт первым.
func FindSwingPoints(candles []models.Candle, n int) []models.SwingPoint {
	if n < 1 || len(candles) < 2*n+1 {
		return nil
	}

	out := make([]models.SwingPoint, 0, len(candles)/n)
	for i := n; i < len(candles)-n; i++ {
		c := candles[i]
		isHigh, isLow := true, true
		for j := i - n; j <= i+n; j++ {
			if candles[j].High > c.High {
				isHigh = false
			}
			if candles[j].Low < c.Low {
				isLow = false
			}
			if !isHigh && !isLow {
				break
			}
		}
		if isHigh {
			out = append(out, models.SwingPoint{Time: c.Time, Price: c.High, Kind: models.SwingHigh})
		}
		if isLow {
			out = append(out, models.SwingPoint{Time: c.Time, Price: c.Low, Kind: models.SwingLow})
		}
	}
	return out
}

// Самая поздняя точка нужного типа.
func lastSwing(points []models.SwingPoint, kind models.SwingKind) (models.SwingPoint, bool) {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Kind == kind {
			return points[i], true
		}
	}
	return models.SwingPoint{}, false
}

// Sweeps ищет свипы среди последних scan свечей (0: все), от новых к старым,
// не больше одного на свечу. Свеча снимает уровень, только если уровень
// сформирован строго раньше неё. Внутри свечи берём самый поздний уровень,
// при равенстве времени первым HIGH. accept отсекает лишнее (nil: без фильтра).
func Sweeps(
	candles []models.Candle,
	swings []models.SwingPoint,
	scan int,
	accept func(models.SweepEvent) bool,
) []models.SweepEvent {
	from := 0
	if scan > 0 && scan < len(candles) {
		from = len(candles) - scan
	}

	var out []models.SweepEvent
	for i := len(candles) - 1; i >= from; i-- {
		c := candles[i]
		var (
			best  models.SweepEvent
			found bool
		)
		for _, sp := range swings {
			if !sp.Time.Before(c.Time) {
				break
			}
			ev := models.SweepEvent{CandleTime: c.Time, Candle: c, Level: sp}
			switch {
			case sp.Kind == models.SwingHigh && c.High > sp.Price:
				ev.Side = models.SideSell
			case sp.Kind == models.SwingLow && c.Low < sp.Price:
				ev.Side = models.SideBuy
			default:
				continue
			}
			if accept != nil && !accept(ev) {
				continue
			}
			if !found || sp.Time.After(best.Level.Time) {
				best, found = ev, true
			}
		}
		if found {
			out = append(out, best)
		}
	}
	return out
}

// LatestSweep: самый свежий свип, см. Sweeps.
func LatestSweep(
	candles []models.Candle,
	swings []models.SwingPoint,
	scan int,
	accept func(models.SweepEvent) bool,
) (models.SweepEvent, bool) {
	from := 0
	if scan > 0 && scan < len(candles) {
		from = len(candles) - scan
	}
	// идём по одной свече, чтобы не считать все свипы окна
	for i := len(candles) - 1; i >= from; i-- {
		if evs := Sweeps(candles[:i+1], swings, 1, accept); len(evs) > 0 {
			return evs[0], true
		}
	}
	return models.SweepEvent{}, false
}

// Свечи строго раньше t (вход отсортирован).
func candlesBefore(candles []models.Candle, t time.Time) []models.Candle {
	i := sort.Search(len(candles), func(i int) bool { return !candles[i].Time.Before(t) })
	return candles[:i]
}

// Свечи строго позже t.
func candlesAfter(candles []models.Candle, t time.Time) []models.Candle {
	i := sort.Search(len(candles), func(i int) bool { return candles[i].Time.After(t) })
	return candles[i:]
}
