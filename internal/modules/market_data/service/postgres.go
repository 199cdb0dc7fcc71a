package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"sweep_bot/internal/helper"
	"sweep_bot/internal/models"
	"sweep_bot/pkg/db"
)

const (
	selectRangeSQL = `
SELECT ts, open, high, low, close, volume
FROM candles
WHERE asset = $1 AND timeframe = $2 AND ts >= $3 AND ts <= $4
ORDER BY ts`

	selectLatestSQL = `
SELECT ts, open, high, low, close, volume
FROM (
    SELECT ts, open, high, low, close, volume
    FROM candles
    WHERE asset = $1 AND timeframe = $2
    ORDER BY ts DESC
    LIMIT $3
) t
ORDER BY ts`

	upsertCandleSQL = `
INSERT INTO candles (asset, timeframe, ts, open, high, low, close, volume)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (asset, timeframe, ts) DO UPDATE
SET open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
    close = EXCLUDED.close, volume = EXCLUDED.volume`
)

// PgProvider — свечи из таблицы candles (см. migrations).
type PgProvider struct {
	tx db.TxManager
}

func NewPgProvider(tx db.TxManager) *PgProvider {
	return &PgProvider{tx: tx}
}

func (p *PgProvider) Latest(ctx context.Context, asset, tf string, n int) ([]models.Candle, error) {
	if n <= 0 {
		n = 1 << 20
	}
	return p.query(ctx, asset, tf, selectLatestSQL, asset, helper.NormTF(tf), n)
}

func (p *PgProvider) Range(ctx context.Context, asset, tf string, from, to time.Time) ([]models.Candle, error) {
	return p.query(ctx, asset, tf, selectRangeSQL, asset, helper.NormTF(tf), from.UTC(), to.UTC())
}

func (p *PgProvider) query(ctx context.Context, asset, tf, sql string, args ...any) ([]models.Candle, error) {
	var out []models.Candle
	err := p.tx.RunReadOnly(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		rows, err := tx.Query(ctxTx, sql, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Candle, error) {
			var c models.Candle
			err := row.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume)
			return c, err
		})
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(models.ErrProviderUnavailable, "%s %s: %v", asset, tf, err)
	}
	if len(out) == 0 {
		return nil, errors.Wrapf(models.ErrProviderUnavailable, "%s %s: no rows", asset, tf)
	}
	return Normalize(out), nil
}

// Store: загрузка свечей (например, из CSV) в таблицу одной транзакцией.
func (p *PgProvider) Store(ctx context.Context, asset, tf string, candles []models.Candle) error {
	tf = helper.NormTF(tf)
	return p.tx.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		for _, c := range candles {
			if _, err := tx.Exec(ctxTx, upsertCandleSQL,
				asset, tf, c.Time.UTC(), c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
				return errors.Wrapf(err, "upsert %s %s %s", asset, tf, c.Time.Format(time.RFC3339))
			}
		}
		return nil
	})
}
