package service

import "sweep_bot/internal/models"

// FindImbalances ищет трёхсвечные гэпы вокруг средней свечи i.
//
//	BULLISH: low(i-1) > high(i+1), границы [high(i+1), low(i-1)], гэп над ценой, ждём возврата вверх.
//	BEARISH: high(i-1) < low(i+1), границы [high(i-1), low(i+1)], гэп под ценой, ждём возврата вниз.
//
// Гэп уже, чем minWidth, отбрасывается. Если средняя свеча сама перекрывает
// обе границы, гэп считается закрытым и тоже отбрасывается.
func FindImbalances(candles []models.Candle, minWidth float64) []models.Imbalance {
	if len(candles) < 3 {
		return nil
	}

	var out []models.Imbalance
	for i := 1; i < len(candles)-1; i++ {
		prev, mid, next := candles[i-1], candles[i], candles[i+1]

		var im models.Imbalance
		switch {
		case prev.Low > next.High:
			im = models.Imbalance{Upper: prev.Low, Lower: next.High, Direction: models.ImbalanceBullish}
		case prev.High < next.Low:
			im = models.Imbalance{Upper: next.Low, Lower: prev.High, Direction: models.ImbalanceBearish}
		default:
			continue
		}

		if im.Width() < minWidth {
			continue
		}
		if mid.Low <= im.Lower && mid.High >= im.Upper {
			continue
		}

		im.OpenTime = prev.Time
		im.CloseTime = next.Time
		out = append(out, im)
	}
	return out
}
