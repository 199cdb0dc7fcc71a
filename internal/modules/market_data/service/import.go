package service

import (
	"context"

	"github.com/pkg/errors"

	"sweep_bot/internal/models"
	"sweep_bot/pkg/logger"
)

// Sink приёмник свечей, в проде PgProvider.
type Sink interface {
	Store(ctx context.Context, asset, tf string, candles []models.Candle) error
}

// Copy переливает всю историю из src в dst по каждой паре актив/ТФ.
// Пары без данных пропускаются с предупреждением.
func Copy(ctx context.Context, src Provider, dst Sink, assets, tfs []string) (int, error) {
	total := 0
	for _, asset := range assets {
		for _, tf := range tfs {
			candles, err := src.Latest(ctx, asset, tf, 0)
			if errors.Is(err, models.ErrProviderUnavailable) {
				logger.Warn("[DATA] import %s %s: %v", asset, tf, err)
				continue
			}
			if err != nil {
				return total, err
			}
			if err := dst.Store(ctx, asset, tf, candles); err != nil {
				return total, err
			}
			logger.Info("[DATA] import %s %s: %d candles", asset, tf, len(candles))
			total += len(candles)
		}
	}
	return total, nil
}
