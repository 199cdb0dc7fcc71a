package service

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"sweep_bot/internal/models"
)

// ContextResult контекст старшего ТФ и то, из чего он получен.
type ContextResult struct {
	Context   models.MarketContext
	Sweep     *models.SweepEvent
	Structure *models.SwingPoint
	BreakTime time.Time
	Reason    string
	Err       error
}

// ClassifyContext определяет направленный байас по старшему ТФ:
// свип swing-уровня + пробой ближайшей противоположной точки, сформированной до свипа.
// Свипы перебираются от свежих к старым, решает самый свежий подтверждённый:
// свеча пробоя структуры сама снимает уровень, поэтому просто "последний свип"
// никогда не был бы подтверждён.
// Недостаток данных: NEUTRAL, не ошибка.
func ClassifyContext(htf []models.Candle, n, scan int) ContextResult {
	neutral := func(kind error, format string, args ...any) ContextResult {
		reason := fmt.Sprintf(format, args...)
		return ContextResult{
			Context: models.ContextNeutral,
			Reason:  reason,
			Err:     errors.Wrap(kind, reason),
		}
	}

	if n < 1 {
		return neutral(models.ErrConfiguration, "lookback %d < 1", n)
	}
	if len(htf) < 2*n {
		return neutral(models.ErrInsufficientData, "htf candles %d < %d", len(htf), 2*n)
	}

	sweeps := Sweeps(htf, FindSwingPoints(htf, n), scan, nil)
	if len(sweeps) == 0 {
		return neutral(models.ErrNoPattern, "no htf sweep")
	}

	var first ContextResult
	for i := range sweeps {
		res := confirmSweep(htf, sweeps[i], n)
		if res.Context != models.ContextNeutral {
			return res
		}
		if i == 0 {
			first = res
		}
	}
	return first
}

// confirmSweep ищет пробой противоположной структуры после одного свипа.
func confirmSweep(htf []models.Candle, sweep models.SweepEvent, n int) ContextResult {
	res := ContextResult{Context: models.ContextNeutral, Sweep: &sweep}
	at := sweep.CandleTime.Format(time.RFC3339)

	opposite := models.SwingLow
	if sweep.Level.Kind == models.SwingLow {
		opposite = models.SwingHigh
	}
	// структуру берём только из свечей до свипа
	sp, ok := lastSwing(FindSwingPoints(candlesBefore(htf, sweep.CandleTime), n), opposite)
	if !ok {
		res.Reason = fmt.Sprintf("htf %s sweep at %s: no %s structure before it", sweep.Level.Kind, at, opposite)
		res.Err = errors.Wrap(models.ErrNoPattern, res.Reason)
		return res
	}
	res.Structure = &sp

	for _, c := range candlesAfter(htf, sweep.CandleTime) {
		switch {
		case opposite == models.SwingLow && c.Low < sp.Price:
			res.Context = models.ContextBearish
		case opposite == models.SwingHigh && c.High > sp.Price:
			res.Context = models.ContextBullish
		default:
			continue
		}
		res.BreakTime = c.Time
		res.Reason = fmt.Sprintf("htf %s sweep %.5f at %s, %s %.5f broken at %s",
			sweep.Level.Kind, sweep.Level.Price, at, sp.Kind, sp.Price, c.Time.Format(time.RFC3339))
		return res
	}

	res.Reason = fmt.Sprintf("htf %s sweep at %s: %s %.5f not broken", sweep.Level.Kind, at, sp.Kind, sp.Price)
	res.Err = errors.Wrap(models.ErrNoPattern, res.Reason)
	return res
}
