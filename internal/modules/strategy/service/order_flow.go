package service

import (
	"fmt"
	"time"

	"sweep_bot/internal/models"
)

type FlowState int

const (
	FlowAwaitingBreak FlowState = iota
	FlowBroken
	FlowAwaitingRetest
	FlowConfirmed
	FlowNotConfirmed
)

func (s FlowState) String() string {
	switch s {
	case FlowAwaitingBreak:
		return "AWAITING_BREAK"
	case FlowBroken:
		return "BROKEN"
	case FlowAwaitingRetest:
		return "AWAITING_RETEST"
	case FlowConfirmed:
		return "CONFIRMED"
	default:
		return "NOT_CONFIRMED"
	}
}

type OrderFlowResult struct {
	State      FlowState
	Structure  models.SwingPoint
	ChochTime  time.Time
	Imbalance  models.Imbalance
	RetestTime time.Time
	Reason     string
}

// ConfirmOrderFlow две ступени ОФ на рабочем ТФ после свипа:
// пробой структуры (CHoCH), затем тест первого гэпа после CHoCH.
// Ретест засчитывается только для того гэпа, что образовался после этого же CHoCH.
func ConfirmOrderFlow(
	ltf []models.Candle,
	side models.Side,
	sweepTime time.Time,
	n int,
	minGap float64,
) OrderFlowResult {
	res := OrderFlowResult{State: FlowAwaitingBreak}
	fail := func(format string, args ...any) {
		res.State = FlowNotConfirmed
		res.Reason = fmt.Sprintf(format, args...)
	}

	if side != models.SideBuy && side != models.SideSell {
		fail("unknown side %q", side)
		return res
	}

	for {
		switch res.State {
		case FlowAwaitingBreak:
			kind := models.SwingHigh
			if side == models.SideSell {
				kind = models.SwingLow
			}
			sp, ok := lastSwing(FindSwingPoints(candlesBefore(ltf, sweepTime), n), kind)
			if !ok {
				fail("no %s structure before sweep", kind)
				continue
			}
			res.Structure = sp

			for _, c := range candlesAfter(ltf, sweepTime) {
				if (side == models.SideBuy && c.High > sp.Price) ||
					(side == models.SideSell && c.Low < sp.Price) {
					res.ChochTime = c.Time
					res.State = FlowBroken
					break
				}
			}
			if res.State != FlowBroken {
				fail("structure %.5f not broken after sweep", sp.Price)
			}

		case FlowBroken:
			want := models.ImbalanceFor(side)
			for _, im := range FindImbalances(candlesAfter(ltf, res.ChochTime), minGap) {
				if im.Direction == want && im.OpenTime.After(res.ChochTime) {
					res.Imbalance = im
					res.State = FlowAwaitingRetest
					break
				}
			}
			if res.State != FlowAwaitingRetest {
				fail("no %s imbalance after choch %s", want, res.ChochTime.Format(time.RFC3339))
			}

		case FlowAwaitingRetest:
			for _, c := range candlesAfter(ltf, res.Imbalance.CloseTime) {
				if res.Imbalance.Overlaps(c) {
					res.RetestTime = c.Time
					res.State = FlowConfirmed
					break
				}
			}
			if res.State != FlowConfirmed {
				fail("imbalance [%.5f, %.5f] not retested", res.Imbalance.Lower, res.Imbalance.Upper)
			}

		case FlowConfirmed:
			res.Reason = fmt.Sprintf("choch %s, imbalance [%.5f, %.5f] retested %s",
				res.ChochTime.Format(time.RFC3339), res.Imbalance.Lower, res.Imbalance.Upper,
				res.RetestTime.Format(time.RFC3339))
			return res

		default:
			return res
		}
	}
}
