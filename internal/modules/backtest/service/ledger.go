package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gopkg.in/yaml.v2"

	"sweep_bot/internal/models"
	strategy "sweep_bot/internal/modules/strategy/service"
	"sweep_bot/pkg/db"
)

const (
	LedgerFile  = "ledger.json"
	SummaryFile = "summary.yaml"
)

// Пространство имён для детерминированных RunID.
var runNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("sweep_bot/backtest"))

// RunID зависит только от параметров движка, стратегии и данных:
// у одинаковых прогонов одинаковый id, у разных разный.
func RunID(cfg Config, p strategy.Params, htf, ltf []models.Candle) string {
	buf := fmt.Appendf(nil, "%s|%d|%d|%d|%d|%d|%d|%g|%g|%g|%g|%g|%g|%s|",
		cfg.Asset, cfg.Start.UnixNano(), cfg.End.UnixNano(), cfg.DailyCheck, cfg.Lookback, cfg.HTF, cfg.LTF,
		cfg.InitialCapital, cfg.Risk.Pct, cfg.Risk.Fixed, cfg.PipSize, cfg.PipValuePerLot, cfg.MinVolume, cfg.FillMode)
	buf = fmt.Appendf(buf, "%d|%g|%g|%g|%d|%d|%d|%d|%t|%d|%d|",
		p.LiquidityLookback, p.MinRR, p.ImbalanceThreshold, p.StopBuffer, p.SweepScanCandles, p.ContextScanCandles,
		p.HTFMinutes, p.LTFMinutes, p.Session.Enabled, p.Session.OpenHour, p.Session.CloseHour)
	for _, cs := range [][]models.Candle{htf, ltf} {
		for _, c := range cs {
			buf = strconv.AppendInt(buf, c.Time.Unix(), 10)
			for _, v := range [...]float64{c.Open, c.High, c.Low, c.Close} {
				buf = append(buf, ',')
				buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
			}
			buf = append(buf, ';')
		}
		buf = append(buf, '|')
	}
	return uuid.NewSHA1(runNamespace, buf).String()
}

// Ledger: содержимое ledger.json.
type Ledger struct {
	RunID   string               `json:"run_id"`
	Asset   string               `json:"asset"`
	Summary Summary              `json:"summary"`
	Trades  []models.ClosedTrade `json:"trades"`
}

func MarshalLedger(res Result) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(Ledger{
		RunID:   res.RunID,
		Asset:   res.Asset,
		Summary: res.Summary,
		Trades:  res.State.Trades,
	}, "", "  ")
}

// WriteReports пишет ledger.json и summary.yaml в dir.
func WriteReports(dir string, res Result) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("WriteReports: %w", err)
		}
	}()
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := MarshalLedger(res)
	if err != nil {
		return err
	}
	if err = os.WriteFile(filepath.Join(dir, LedgerFile), data, 0o644); err != nil {
		return err
	}

	data, err = yaml.Marshal(struct {
		RunID   string      `yaml:"run_id"`
		Asset   string      `yaml:"asset"`
		Summary Summary     `yaml:"summary"`
		Days    []DayReport `yaml:"days"`
	}{res.RunID, res.Asset, res.Summary, res.Days})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, SummaryFile), data, 0o644)
}

const (
	upsertRunSQL = `
INSERT INTO backtest_runs (run_id, asset, summary)
VALUES ($1, $2, $3)
ON CONFLICT (run_id) DO UPDATE SET asset = EXCLUDED.asset, summary = EXCLUDED.summary, created_at = now()`

	deleteTradesSQL = `DELETE FROM backtest_trades WHERE run_id = $1`

	insertTradeSQL = `
INSERT INTO backtest_trades (run_id, trade_no, side, entry_time, entry, stop, target, volume,
                             exit_time, exit, reason, profit_pips, profit, balance_after)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
)

// PgLedgerStore сохраняет прогон в backtest_runs/backtest_trades.
// Без менеджера транзакций (db_dsn пуст) Save ничего не делает.
type PgLedgerStore struct {
	tx db.TxManager
}

func NewPgLedgerStore(tx db.TxManager) *PgLedgerStore {
	return &PgLedgerStore{tx: tx}
}

func (s *PgLedgerStore) Save(ctx context.Context, res Result) (err error) {
	if s == nil || s.tx == nil {
		return nil
	}
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgLedgerStore.Save: %w", err)
		}
	}()

	summary, err := sonic.Marshal(res.Summary)
	if err != nil {
		return err
	}
	return s.tx.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		if _, err := tx.Exec(ctxTx, upsertRunSQL, res.RunID, res.Asset, summary); err != nil {
			return err
		}
		if _, err := tx.Exec(ctxTx, deleteTradesSQL, res.RunID); err != nil {
			return err
		}
		for i, t := range res.State.Trades {
			if _, err := tx.Exec(ctxTx, insertTradeSQL, res.RunID, i+1, string(t.Side), t.EntryTime, t.Entry,
				t.Stop, t.Target, t.Volume, t.ExitTime, t.Exit, string(t.Reason), t.ProfitPips, t.Profit,
				t.BalanceAfter); err != nil {
				return err
			}
		}
		return nil
	})
}
