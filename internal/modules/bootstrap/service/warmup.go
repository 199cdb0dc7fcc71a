package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	marketdata "sweep_bot/internal/modules/market_data/service"
	"sweep_bot/internal/notify"
	"sweep_bot/pkg/logger"
)

// Warmuper проверяет, что по каждому активу есть история на обоих ТФ,
// до того как сканер начнёт опрос.
type Warmuper struct {
	provider marketdata.Provider
	n        notify.Notifier

	htf, ltf string
	need     int

	// ограничитель параллелизма, чтобы не положить базу
	sem chan struct{}
}

func NewWarmuper(provider marketdata.Provider, n notify.Notifier, htf, ltf string, need int) *Warmuper {
	return &Warmuper{
		provider: provider,
		n:        n,
		htf:      htf,
		ltf:      ltf,
		need:     need,
		sem:      make(chan struct{}, 8), // 8 параллельных активов
	}
}

// Warmup возвращает число загруженных свечей и первую ошибку.
// Ошибка не фатальна: актив без данных просто даёт NoSignal при опросе.
func (w *Warmuper) Warmup(ctx context.Context, assets []string) (int64, error) {
	if len(assets) == 0 {
		return 0, nil
	}

	logger.Info("[BOOT] warmup start: assets=%d htf=%s ltf=%s need=%d", len(assets), w.htf, w.ltf, w.need)

	var cnt int64
	var wg sync.WaitGroup
	var firstErr error
	var mu sync.Mutex

	for _, asset := range assets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.sem <- struct{}{}
			defer func() { <-w.sem }()

			for _, tf := range []string{w.htf, w.ltf} {
				candles, err := w.provider.Latest(ctx, asset, tf, w.need)
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("warmup %s %s: %w", asset, tf, err)
					}
					mu.Unlock()
					return
				}
				atomic.AddInt64(&cnt, int64(len(candles)))
				if w.need > 0 && len(candles) < w.need {
					logger.Warn("[BOOT] %s %s: only %d of %d candles", asset, tf, len(candles), w.need)
				}
			}
		}()
	}

	wg.Wait()

	if firstErr != nil {
		w.n.Sendf("⚠️ warmup finished with error: %v", firstErr)
		return cnt, firstErr
	}

	w.n.Sendf("✅ warmup finished: assets=%d candles=%d", len(assets), cnt)
	return cnt, nil
}
