package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"

	"sweep_bot/internal/models"
	"sweep_bot/pkg/logger"
)

type fakeProvider struct {
	candles map[string][]models.Candle
	ranges  []string
}

func (p *fakeProvider) Latest(_ context.Context, asset, tf string, n int) ([]models.Candle, error) {
	cs, ok := p.candles[tf]
	if !ok {
		return nil, errors.Wrapf(models.ErrProviderUnavailable, "%s %s", asset, tf)
	}
	return cs, nil
}

func (p *fakeProvider) Range(_ context.Context, asset, tf string, from, to time.Time) ([]models.Candle, error) {
	p.ranges = append(p.ranges, tf+" "+from.Format(time.RFC3339)+" "+to.Format(time.RFC3339))
	var out []models.Candle
	for _, c := range p.candles[tf] {
		if !c.Time.Before(from) && !c.Time.After(to) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, errors.Wrapf(models.ErrProviderUnavailable, "%s %s", asset, tf)
	}
	return out, nil
}

type memStore struct{ saved []Result }

func (s *memStore) Save(_ context.Context, res Result) error {
	s.saved = append(s.saved, res)
	return nil
}

func TestService_Run(t *testing.T) {
	logger.InitNop()
	htf, ltf := build(preEntry, entryBar, targetBar)
	p := &fakeProvider{candles: map[string][]models.Candle{"1h": htf, "15m": ltf}}
	store := &memStore{}
	dir := t.TempDir()

	svc := NewService(p, mustEngine(testConfig()), testGenerator(), Options{
		HTFName: "1h", LTFName: "15m", OutputDir: dir, Store: store,
	})
	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.State.Trades) != 1 || res.RunID == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(store.saved) != 1 || store.saved[0].RunID != res.RunID {
		t.Fatalf("result not saved")
	}
	if _, err := os.Stat(filepath.Join(dir, LedgerFile)); err != nil {
		t.Fatalf("ledger not written: %v", err)
	}
	if len(p.ranges) != 0 {
		t.Fatalf("unbounded run must use Latest, got ranges %v", p.ranges)
	}
}

func TestService_RangeWindow(t *testing.T) {
	logger.InitNop()
	htf, ltf := build(preEntry, entryBar, targetBar)
	p := &fakeProvider{candles: map[string][]models.Candle{"1h": htf, "15m": ltf}}

	cfg := testConfig()
	cfg.Start = t0
	cfg.End = t0.Add(24*time.Hour - time.Nanosecond)
	svc := NewService(p, mustEngine(cfg), testGenerator(), Options{HTFName: "1h", LTFName: "15m"})

	res, err := svc.Run(context.Background())
	if err != nil || len(res.State.Trades) != 1 {
		t.Fatalf("run: %v %+v", err, res.Days)
	}
	if len(p.ranges) != 2 {
		t.Fatalf("expected two range requests, got %v", p.ranges)
	}
}

func TestService_ProviderUnavailable(t *testing.T) {
	logger.InitNop()
	p := &fakeProvider{candles: map[string][]models.Candle{}}
	svc := NewService(p, mustEngine(testConfig()), testGenerator(), Options{HTFName: "1h", LTFName: "15m"})

	res, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("missing data must not fail the run: %v", err)
	}
	if len(res.State.Trades) != 0 || res.State.Balance != 10000 {
		t.Fatalf("unexpected result %+v", res)
	}
}
