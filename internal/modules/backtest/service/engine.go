package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"sweep_bot/internal/helper"
	"sweep_bot/internal/models"
	marketdata "sweep_bot/internal/modules/market_data/service"
	strategy "sweep_bot/internal/modules/strategy/service"
)

// Config — параметры прогона, уже провалидированные.
type Config struct {
	Asset          string
	Start, End     time.Time // нулевые: без ограничения
	DailyCheck     time.Duration
	Lookback       time.Duration
	HTF, LTF       time.Duration
	InitialCapital float64
	Risk           RiskSpec
	PipSize        float64
	PipValuePerLot float64
	MinVolume      float64
	FillMode       FillMode
}

func (c Config) validate() error {
	switch {
	case c.InitialCapital <= 0:
		return errors.Wrapf(models.ErrConfiguration, "initial capital %v", c.InitialCapital)
	case c.Lookback <= 0 || c.HTF <= 0 || c.LTF <= 0:
		return errors.Wrapf(models.ErrConfiguration, "durations lookback=%s htf=%s ltf=%s", c.Lookback, c.HTF, c.LTF)
	case c.DailyCheck < 0 || c.DailyCheck >= 24*time.Hour:
		return errors.Wrapf(models.ErrConfiguration, "daily check %s", c.DailyCheck)
	case c.PipSize <= 0 || c.PipValuePerLot <= 0 || c.MinVolume <= 0:
		return errors.Wrapf(models.ErrConfiguration, "pip size %v, pip value %v, min volume %v", c.PipSize, c.PipValuePerLot, c.MinVolume)
	}
	return nil
}

type DayAction string

const (
	DaySkip   DayAction = "SKIP"
	DayHold   DayAction = "HOLD"
	DayClose  DayAction = "CLOSE"
	DayNone   DayAction = "NONE"
	DayReject DayAction = "REJECT"
	DayOpen   DayAction = "OPEN"
)

// DayReport что движок сделал в момент проверки. За один день может быть
// несколько записей: закрытие и новый поиск.
type DayReport struct {
	Instant time.Time `json:"instant" yaml:"instant"`
	Action  DayAction `json:"action" yaml:"action"`
	Reason  string    `json:"reason" yaml:"reason"`
}

type EquityPoint struct {
	Time    time.Time `json:"time" yaml:"time"`
	Balance float64   `json:"balance" yaml:"balance"`
}

type Result struct {
	RunID   string               `json:"run_id"`
	Asset   string               `json:"asset"`
	State   models.BacktestState `json:"state"`
	Summary Summary              `json:"summary"`
	Days    []DayReport          `json:"days"`
	Equity  []EquityPoint        `json:"equity"`
}

// Engine дневной цикл бэктеста. Состояние живёт только внутри Run.
type Engine struct {
	cfg Config
	gen *strategy.Generator
}

func NewEngine(cfg Config, gen *strategy.Generator) (*Engine, error) {
	if cfg.PipSize == 0 {
		cfg.PipSize = helper.PipSize(cfg.Asset)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, errors.Wrap(models.ErrConfiguration, "nil generator")
	}
	return &Engine{cfg: cfg, gen: gen}, nil
}

func (e *Engine) Config() Config { return e.cfg }

type run struct {
	*Engine
	htf, ltf []models.Candle
	res      Result
}

// Run прогоняет историю по дням. Свечи должны быть отсортированы (market_data.Normalize).
func (e *Engine) Run(htf, ltf []models.Candle) Result {
	r := &run{Engine: e, htf: htf, ltf: ltf}
	r.res.Asset = e.cfg.Asset
	r.res.State = models.BacktestState{
		Balance:     e.cfg.InitialCapital,
		PeakBalance: e.cfg.InitialCapital,
		Trades:      []models.ClosedTrade{},
	}
	r.res.Equity = []EquityPoint{}
	r.res.Days = []DayReport{}

	if len(ltf) > 0 {
		r.loop()
	}
	r.res.Summary = Summarize(e.cfg.InitialCapital, r.res.State.Trades)
	return r.res
}

func (r *run) loop() {
	first := r.ltf[0].Time
	prev := first
	for _, day := range calendarDays(r.ltf) {
		instant := day.Add(r.cfg.DailyCheck)
		// дни упорядочены: после End проверять нечего, остаток добирает финальный проход
		if !r.cfg.End.IsZero() && instant.After(r.cfg.End) {
			break
		}
		if !r.cfg.Start.IsZero() && instant.Before(r.cfg.Start) {
			r.report(instant, DaySkip, "before start")
			prev = instant
			continue
		}
		if instant.Add(-r.cfg.Lookback).Before(first) {
			r.report(instant, DaySkip, fmt.Sprintf("lookback reaches before first candle %s", first.Format(time.RFC3339)))
			prev = instant
			continue
		}

		if r.res.State.Open != nil {
			if t, ok := r.maintain(r.closedBetween(prev, instant)); ok {
				r.report(instant, DayClose, fmt.Sprintf("%s at %.5f", t.Reason, t.Exit))
			}
		}
		if r.res.State.Open != nil {
			r.report(instant, DayHold, fmt.Sprintf("position #%d open", r.res.State.Open.ID))
		} else {
			r.search(instant)
		}
		prev = instant
	}

	if r.res.State.Open == nil {
		return
	}
	r.maintain(r.closedBetween(prev, time.Time{}))
	if r.res.State.Open != nil {
		last := r.ltf[len(r.ltf)-1]
		r.close(last.Time, last.Close, models.ExitEndOfData)
	}
}

// Свечи открытой позиции, закрывшиеся в (from, to], нулевой to значит до конца.
func (r *run) closedBetween(from, to time.Time) []models.Candle {
	entry := r.res.State.Open.EntryTime
	lo := sort.Search(len(r.ltf), func(i int) bool {
		t := r.ltf[i].Time
		return !t.Before(entry) && t.Add(r.cfg.LTF).After(from)
	})
	if to.IsZero() {
		return r.ltf[lo:]
	}
	hi := sort.Search(len(r.ltf), func(i int) bool { return r.ltf[i].Time.Add(r.cfg.LTF).After(to) })
	if hi < lo {
		return nil
	}
	return r.ltf[lo:hi]
}

// Первая свеча, задевшая стоп или цель, закрывает позицию.
// Если задеты оба уровня, считаем стоп.
func (r *run) maintain(candles []models.Candle) (models.ClosedTrade, bool) {
	pos := r.res.State.Open
	for _, c := range candles {
		stopHit, targetHit := false, false
		switch pos.Side {
		case models.SideBuy:
			stopHit, targetHit = c.Low <= pos.Stop, c.High >= pos.Target
		case models.SideSell:
			stopHit, targetHit = c.High >= pos.Stop, c.Low <= pos.Target
		}
		switch {
		case stopHit:
			return r.close(c.Time, pos.Stop, models.ExitStop), true
		case targetHit:
			return r.close(c.Time, pos.Target, models.ExitTarget), true
		}
	}
	return models.ClosedTrade{}, false
}

func (r *run) close(at time.Time, price float64, reason models.ExitReason) models.ClosedTrade {
	st := &r.res.State
	pos := *st.Open

	pips := pos.Side.Sign() * (price - pos.Entry) / r.cfg.PipSize
	profit := pips * r.cfg.PipValuePerLot * pos.Volume

	st.Balance += profit
	st.PeakBalance = math.Max(st.PeakBalance, st.Balance)
	st.MaxDrawdown = math.Max(st.MaxDrawdown, st.PeakBalance-st.Balance)

	t := models.ClosedTrade{
		Position:     pos,
		ExitTime:     at,
		Exit:         price,
		Reason:       reason,
		ProfitPips:   pips,
		Profit:       profit,
		BalanceAfter: st.Balance,
	}
	st.Trades = append(st.Trades, t)
	st.Open = nil
	r.res.Equity = append(r.res.Equity, EquityPoint{Time: at, Balance: st.Balance})
	return t
}

// Поиск сигнала только на закрытых к instant свечах и вход на следующей.
func (r *run) search(instant time.Time) {
	from := instant.Add(-r.cfg.Lookback)
	d := r.gen.Evaluate(strategy.Input{
		Asset: r.cfg.Asset,
		Now:   instant,
		HTF:   marketdata.Window(r.htf, from, instant, r.cfg.HTF),
		LTF:   marketdata.Window(r.ltf, from, instant, r.cfg.LTF),
	})
	if d.Candidate == nil {
		r.report(instant, DayNone, d.Reason())
		return
	}

	i := sort.Search(len(r.ltf), func(i int) bool { return r.ltf[i].Time.After(instant) })
	if i == len(r.ltf) || (!r.cfg.End.IsZero() && r.ltf[i].Time.After(r.cfg.End)) {
		r.report(instant, DayReject, "no entry candle after check time within range")
		return
	}
	entryCandle := r.ltf[i]

	fill, err := Materialize(*d.Candidate, entryCandle, r.gen.Params().MinRR, r.cfg.FillMode)
	if err != nil {
		r.report(instant, DayReject, err.Error())
		return
	}

	stopPips := math.Abs(fill.Entry-fill.Stop) / r.cfg.PipSize
	volume := CalcSizeByRisk(r.res.State.Balance, r.cfg.Risk, stopPips, r.cfg.PipValuePerLot, r.cfg.MinVolume)
	if volume <= 0 {
		r.report(instant, DayReject, fmt.Sprintf("zero volume for stop %.1f pips", stopPips))
		return
	}

	r.res.State.Open = &models.Position{
		ID:        len(r.res.State.Trades) + 1,
		Asset:     r.cfg.Asset,
		Side:      fill.Side,
		EntryTime: fill.Time,
		Entry:     fill.Entry,
		Stop:      fill.Stop,
		Target:    fill.Target,
		Volume:    volume,
	}
	r.report(instant, DayOpen, fmt.Sprintf("%s %.2f at %.5f stop=%.5f target=%.5f rr=%.2f; %s",
		fill.Side, volume, fill.Entry, fill.Stop, fill.Target, fill.RR, d.Candidate.Reason()))
}

func (r *run) report(instant time.Time, a DayAction, reason string) {
	r.res.Days = append(r.res.Days, DayReport{Instant: instant, Action: a, Reason: reason})
}

// Уникальные дни UTC, в которых есть свечи.
func calendarDays(candles []models.Candle) []time.Time {
	var out []time.Time
	for _, c := range candles {
		d := helper.DayStart(c.Time)
		if n := len(out); n == 0 || !out[n-1].Equal(d) {
			out = append(out, d)
		}
	}
	return out
}
