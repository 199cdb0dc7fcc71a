package service

import "sweep_bot/internal/models"

// RewardRisk |target-entry| / |entry-stop| с учётом стороны; 0, если риск <= 0.
func RewardRisk(entry, stop, target float64, side models.Side) float64 {
	sign := side.Sign()
	risk := sign * (entry - stop)
	if sign == 0 || risk <= 0 {
		return 0
	}
	return sign * (target - entry) / risk
}

// LevelsValid: стоп за входом против сделки, цель за входом по сделке.
func LevelsValid(side models.Side, entry, stop, target float64) bool {
	switch side {
	case models.SideBuy:
		return stop < entry && target > entry
	case models.SideSell:
		return stop > entry && target < entry
	}
	return false
}
