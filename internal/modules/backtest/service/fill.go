package service

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"sweep_bot/internal/models"
	strategy "sweep_bot/internal/modules/strategy/service"
)

// FillMode: как переносить уровни сигнала на фактическую цену входа.
type FillMode string

const (
	// FillAnchor: стоп и цель остаются структурными, RR пересчитывается от цены входа.
	FillAnchor FillMode = "anchor"
	// FillShift: дистанции до стопа и цели сохраняются относительно цены входа.
	FillShift FillMode = "shift"
)

func ParseFillMode(s string) FillMode {
	if strings.EqualFold(strings.TrimSpace(s), string(FillShift)) {
		return FillShift
	}
	return FillAnchor
}

// Fill сигнал, привязанный к свече входа.
type Fill struct {
	Time   time.Time
	Side   models.Side
	Entry  float64
	Stop   float64
	Target float64
	RR     float64
}

// Materialize пересчитывает уровни от open свечи входа. Ошибка оборачивает
// ErrInvalidLevels, если уровни перевернулись или RR стал ниже минимального.
func Materialize(c models.SignalCandidate, fill models.Candle, minRR float64, mode FillMode) (Fill, error) {
	f := Fill{
		Time:   fill.Time,
		Side:   c.Side,
		Entry:  fill.Open,
		Stop:   c.Stop,
		Target: c.Target,
	}
	if mode == FillShift {
		f.Stop = fill.Open + (c.Stop - c.Entry)
		f.Target = fill.Open + (c.Target - c.Entry)
	}

	if !strategy.LevelsValid(f.Side, f.Entry, f.Stop, f.Target) {
		return f, errors.Wrapf(models.ErrInvalidLevels, "%s fill %.5f: stop %.5f target %.5f", f.Side, f.Entry, f.Stop, f.Target)
	}
	f.RR = strategy.RewardRisk(f.Entry, f.Stop, f.Target, f.Side)
	if f.RR < minRR {
		return f, errors.Wrapf(models.ErrInvalidLevels, "rr %.2f at fill %.5f below %.2f", f.RR, f.Entry, minRR)
	}
	return f, nil
}
