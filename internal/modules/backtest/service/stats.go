package service

import (
	"math"
	"strconv"

	"sweep_bot/internal/models"
)

// Ratio число, которое может быть +Inf (profit factor без убыточных сделок).
// В JSON бесконечность пишется строкой "inf".
type Ratio float64

func (r Ratio) MarshalJSON() ([]byte, error) {
	f := float64(r)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"inf"`), nil
	case math.IsInf(f, -1) || math.IsNaN(f):
		return []byte(`null`), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (r Ratio) String() string {
	if math.IsInf(float64(r), 1) {
		return "inf"
	}
	return strconv.FormatFloat(float64(r), 'f', 2, 64)
}

// Summary считается только из журнала сделок.
type Summary struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	FinalBalance   float64 `json:"final_balance" yaml:"final_balance"`
	NetProfit      float64 `json:"net_profit" yaml:"net_profit"`
	NetProfitPct   float64 `json:"net_profit_pct" yaml:"net_profit_pct"`
	Trades         int     `json:"trades" yaml:"trades"`
	Wins           int     `json:"wins" yaml:"wins"`
	Losses         int     `json:"losses" yaml:"losses"`
	WinRate        float64 `json:"win_rate" yaml:"win_rate"` // %
	GrossProfit    float64 `json:"gross_profit" yaml:"gross_profit"`
	GrossLoss      float64 `json:"gross_loss" yaml:"gross_loss"` // модуль
	ProfitFactor   Ratio   `json:"profit_factor" yaml:"profit_factor"`
	TotalPips      float64 `json:"total_pips" yaml:"total_pips"`
	BestTrade      float64 `json:"best_trade" yaml:"best_trade"`
	WorstTrade     float64 `json:"worst_trade" yaml:"worst_trade"`
	AvgTrade       float64 `json:"avg_trade" yaml:"avg_trade"`
	MaxDrawdown    float64 `json:"max_drawdown" yaml:"max_drawdown"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct" yaml:"max_drawdown_pct"`
	ByReason       []Count `json:"by_reason" yaml:"by_reason"`
}

type Count struct {
	Reason models.ExitReason `json:"reason" yaml:"reason"`
	N      int               `json:"n" yaml:"n"`
}

// Summarize считает выигрышем сделку с прибылью > 0, остальные убыточные.
// Profit factor: +Inf без убытков при хотя бы одном выигрыше, 0 без сделок.
func Summarize(initial float64, trades []models.ClosedTrade) Summary {
	s := Summary{
		InitialCapital: initial,
		FinalBalance:   initial,
		Trades:         len(trades),
	}

	balance, peak := initial, initial
	reasons := []models.ExitReason{models.ExitStop, models.ExitTarget, models.ExitEndOfData}
	counts := make([]int, len(reasons))

	for i, t := range trades {
		if t.Profit > 0 {
			s.Wins++
			s.GrossProfit += t.Profit
		} else {
			s.Losses++
			s.GrossLoss -= t.Profit
		}
		s.TotalPips += t.ProfitPips
		s.NetProfit += t.Profit

		if i == 0 || t.Profit > s.BestTrade {
			s.BestTrade = t.Profit
		}
		if i == 0 || t.Profit < s.WorstTrade {
			s.WorstTrade = t.Profit
		}

		balance += t.Profit
		peak = math.Max(peak, balance)
		if dd := peak - balance; dd > s.MaxDrawdown {
			s.MaxDrawdown = dd
			if peak > 0 {
				s.MaxDrawdownPct = dd / peak * 100
			}
		}

		for j, r := range reasons {
			if t.Reason == r {
				counts[j]++
			}
		}
	}

	s.FinalBalance = balance
	if initial > 0 {
		s.NetProfitPct = s.NetProfit / initial * 100
	}
	if n := len(trades); n > 0 {
		s.WinRate = float64(s.Wins) / float64(n) * 100
		s.AvgTrade = s.NetProfit / float64(n)
	}
	switch {
	case s.GrossLoss > 0:
		s.ProfitFactor = Ratio(s.GrossProfit / s.GrossLoss)
	case s.GrossProfit > 0:
		s.ProfitFactor = Ratio(math.Inf(1))
	}
	for j, r := range reasons {
		if counts[j] > 0 {
			s.ByReason = append(s.ByReason, Count{Reason: r, N: counts[j]})
		}
	}
	return s
}
