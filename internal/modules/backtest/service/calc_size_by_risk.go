package service

import (
	"math"

	"github.com/shopspring/decimal"
)

// RiskSpec задаёт риск на сделку процентом от баланса или фиксированной суммой.
// Процент важнее, если заданы оба.
type RiskSpec struct {
	Pct   float64 // 1.0 => 1%
	Fixed float64
}

// Amount сумма риска в валюте счёта, 0 если риск не задан.
func (r RiskSpec) Amount(balance float64) float64 {
	switch {
	case r.Pct > 0:
		return balance * r.Pct / 100
	case r.Fixed > 0:
		return r.Fixed
	default:
		return 0
	}
}

// CalcSizeByRisk: объём = риск / (стоп * стоимость единицы стопа на лот),
// округление вниз до шага minVolume. Любой неположительный вход => 0.
func CalcSizeByRisk(balance float64, risk RiskSpec, stopDist, valuePerUnit, minVolume float64) float64 {
	for _, v := range []float64{balance, stopDist, valuePerUnit, minVolume} {
		if !(v > 0) || math.IsInf(v, 0) {
			return 0
		}
	}
	amount := risk.Amount(balance)
	if !(amount > 0) {
		return 0
	}

	raw := decimal.NewFromFloat(amount).
		Div(decimal.NewFromFloat(stopDist).Mul(decimal.NewFromFloat(valuePerUnit)))
	step := decimal.NewFromFloat(minVolume)
	vol := raw.Div(step).Floor().Mul(step)
	if !vol.IsPositive() {
		return 0
	}
	return vol.InexactFloat64()
}
