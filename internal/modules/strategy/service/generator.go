package service

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"

	"sweep_bot/internal/models"
)

// Params — всё, что нужно генератору; глобального состояния нет.
type Params struct {
	LiquidityLookback  int     // полуокно swing-точек на старшем ТФ
	MinRR              float64 // минимальный reward/risk
	ImbalanceThreshold float64 // минимальная ширина гэпа
	StopBuffer         float64 // доля цены за экстремумом свип-свечи
	SweepScanCandles   int     // последние свечи рабочего ТФ для поиска свипа, 0: все
	ContextScanCandles int     // то же для старшего ТФ
	HTFMinutes         int
	LTFMinutes         int
	Session            SessionFilter
}

const DefaultStopBuffer = 0.0002

func (p Params) Validate() error {
	switch {
	case p.LiquidityLookback < 1:
		return errors.Wrapf(models.ErrConfiguration, "liquidity lookback %d < 1", p.LiquidityLookback)
	case !(p.MinRR > 0):
		return errors.Wrapf(models.ErrConfiguration, "min rr %v <= 0", p.MinRR)
	case p.ImbalanceThreshold < 0 || math.IsNaN(p.ImbalanceThreshold):
		return errors.Wrapf(models.ErrConfiguration, "imbalance threshold %v < 0", p.ImbalanceThreshold)
	case p.StopBuffer < 0 || p.StopBuffer >= 1:
		return errors.Wrapf(models.ErrConfiguration, "stop buffer %v out of [0, 1)", p.StopBuffer)
	case p.SweepScanCandles < 0 || p.ContextScanCandles < 0:
		return errors.Wrapf(models.ErrConfiguration, "scan candles ltf=%d htf=%d < 0", p.SweepScanCandles, p.ContextScanCandles)
	case p.HTFMinutes <= 0 || p.LTFMinutes <= 0:
		return errors.Wrapf(models.ErrConfiguration, "timeframe minutes htf=%d ltf=%d", p.HTFMinutes, p.LTFMinutes)
	}
	return nil
}

// LTFLookback: полуокно рабочего ТФ, половина старшего.
func (p Params) LTFLookback() int {
	if n := p.LiquidityLookback / 2; n >= 1 {
		return n
	}
	return 1
}

// MinLTFCandles / MinHTFCandles: минимальная история для оценки.
func (p Params) MinLTFCandles() int { return 2*p.LTFLookback() + 5 }

func (p Params) MinHTFCandles() int {
	need := 2 * p.LiquidityLookback
	if p.HTFMinutes > 0 {
		byTime := int(math.Ceil(float64(p.MinLTFCandles()*p.LTFMinutes) / float64(p.HTFMinutes)))
		if byTime > need {
			need = byTime
		}
	}
	return need
}

type Input struct {
	Asset string
	Now   time.Time
	HTF   []models.Candle
	LTF   []models.Candle
}

// Decision итог одной оценки. Candidate == nil означает NONE,
// тогда Err оборачивает один из models.Err* и объясняет, на какой стадии отказ.
type Decision struct {
	Candidate *models.SignalCandidate
	Context   models.MarketContext
	Stages    []models.Stage
	Err       error
}

func (d Decision) Reason() string {
	if d.Err != nil {
		return fmt.Sprintf("%s (%v)", models.Narrative(d.Stages), d.Err)
	}
	return models.Narrative(d.Stages)
}

type Generator struct {
	p Params
}

func NewGenerator(p Params) *Generator {
	return &Generator{p: p}
}

func (g *Generator) Params() Params { return g.p }

// Evaluate прогоняет стадии: история -> сессия -> контекст -> свип -> ОФ -> уровни -> цель.
// Функция чистая: одинаковый вход даёт одинаковый результат.
func (g *Generator) Evaluate(in Input) Decision {
	var d Decision
	pass := func(name, format string, args ...any) {
		d.Stages = append(d.Stages, models.Stage{Name: name, Passed: true, Detail: fmt.Sprintf(format, args...)})
	}
	fail := func(name string, kind error, format string, args ...any) Decision {
		detail := fmt.Sprintf(format, args...)
		d.Stages = append(d.Stages, models.Stage{Name: name, Detail: detail})
		d.Err = errors.Wrapf(kind, "%s: %s", name, detail)
		return d
	}

	p := g.p
	if err := p.Validate(); err != nil {
		d.Stages = append(d.Stages, models.Stage{Name: "config", Detail: err.Error()})
		d.Err = err
		return d
	}

	// 1. история
	ltfN := p.LTFLookback()
	if len(in.LTF) < p.MinLTFCandles() {
		return fail("history", models.ErrInsufficientData, "ltf candles %d < %d", len(in.LTF), p.MinLTFCandles())
	}
	if len(in.HTF) < p.MinHTFCandles() {
		return fail("history", models.ErrInsufficientData, "htf candles %d < %d", len(in.HTF), p.MinHTFCandles())
	}
	pass("history", "htf=%d ltf=%d", len(in.HTF), len(in.LTF))

	now := in.Now
	if now.IsZero() {
		now = in.LTF[len(in.LTF)-1].Time
	}

	// 2. сессия
	if p.Session.Enabled {
		if !p.Session.Active(now) {
			return fail("session", models.ErrNoPattern, "%s outside %02d:00-%02d:00 UTC",
				now.UTC().Format("15:04"), p.Session.OpenHour, p.Session.CloseHour)
		}
		pass("session", "%s inside session", now.UTC().Format("15:04"))
	}

	// 3. контекст
	hc := ClassifyContext(in.HTF, p.LiquidityLookback, p.ContextScanCandles)
	d.Context = hc.Context
	if hc.Context == models.ContextNeutral {
		kind := models.ErrNoPattern
		if errors.Is(hc.Err, models.ErrInsufficientData) {
			kind = models.ErrInsufficientData
		}
		return fail("context", kind, "NEUTRAL: %s", hc.Reason)
	}
	pass("context", "%s: %s", hc.Context, hc.Reason)

	// 4. свип на рабочем ТФ в сторону контекста
	want := models.SideBuy
	if hc.Context == models.ContextBearish {
		want = models.SideSell
	}
	sweep, ok := LatestSweep(in.LTF, FindSwingPoints(in.LTF, ltfN), p.SweepScanCandles,
		func(ev models.SweepEvent) bool { return ev.Side == want })
	if !ok {
		return fail("sweep", models.ErrNoPattern, "no ltf sweep matching %s context", hc.Context)
	}
	pass("sweep", "%s %.5f swept at %s", sweep.Level.Kind, sweep.Level.Price, sweep.CandleTime.Format(time.RFC3339))

	// 5. order flow
	of := ConfirmOrderFlow(in.LTF, want, sweep.CandleTime, ltfN, p.ImbalanceThreshold)
	if of.State != FlowConfirmed {
		return fail("order_flow", models.ErrNoPattern, "%s: %s", of.State, of.Reason)
	}
	pass("order_flow", "%s", of.Reason)

	// 6. вход и стоп
	entry := of.Imbalance.Mid()
	stop := sweep.Candle.Low * (1 - p.StopBuffer)
	if want == models.SideSell {
		stop = sweep.Candle.High * (1 + p.StopBuffer)
	}
	if want.Sign()*(entry-stop) <= 0 {
		return fail("levels", models.ErrInvalidLevels, "%s stop %.5f not beyond entry %.5f", want, stop, entry)
	}
	pass("levels", "entry=%.5f stop=%.5f", entry, stop)

	// 7. цель: swing-точки после гэпа, самая ранняя с RR >= min
	targetKind := models.SwingHigh
	if want == models.SideSell {
		targetKind = models.SwingLow
	}
	var (
		target models.SwingPoint
		rr     float64
		found  bool
		seen   int
	)
	for _, sp := range FindSwingPoints(candlesAfter(in.LTF, of.Imbalance.CloseTime), ltfN) {
		if sp.Kind != targetKind || want.Sign()*(sp.Price-entry) <= 0 {
			continue
		}
		seen++
		if r := RewardRisk(entry, stop, sp.Price, want); r >= p.MinRR {
			target, rr, found = sp, r, true
			break
		}
	}
	if !found {
		return fail("target", models.ErrNoPattern, "%d %s candidates beyond entry, none with rr >= %.2f", seen, targetKind, p.MinRR)
	}
	pass("target", "%s %.5f at %s rr=%.2f", target.Kind, target.Price, target.Time.Format(time.RFC3339), rr)

	// 8. финальная проверка сторон
	if !LevelsValid(want, entry, stop, target.Price) {
		return fail("validate", models.ErrInvalidLevels, "%s entry=%.5f stop=%.5f target=%.5f", want, entry, stop, target.Price)
	}
	pass("validate", "%s entry=%.5f stop=%.5f target=%.5f", want, entry, stop, target.Price)

	d.Candidate = &models.SignalCandidate{
		Asset:     in.Asset,
		Side:      want,
		Entry:     entry,
		Stop:      stop,
		Target:    target.Price,
		RR:        rr,
		Context:   hc.Context,
		Sweep:     sweep,
		Imbalance: of.Imbalance,
		Rationale: d.Stages,
		CreatedAt: now,
	}
	return d
}
