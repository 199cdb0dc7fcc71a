package service

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"sweep_bot/internal/models"
	"sweep_bot/pkg/logger"
)

var base = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func at(i int) models.Candle {
	return models.Candle{Time: base.Add(time.Duration(i) * 15 * time.Minute), Open: 1, High: 2, Low: 0.5, Close: 1.5}
}

func TestNormalize(t *testing.T) {
	dup := at(1)
	dup.Close = 9
	bad := at(3)
	bad.High, bad.Low = 0, 1
	nan := at(4)
	nan.Low = math.NaN()
	inf := at(5)
	inf.High = math.Inf(1)

	got := Normalize([]models.Candle{at(2), at(1), dup, bad, nan, inf, at(0)})
	if len(got) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Time.Before(got[i].Time) {
			t.Fatalf("not strictly ascending at %d", i)
		}
	}
	if got[1].Close != 9 {
		t.Fatalf("last duplicate must win")
	}
}

func TestWindow(t *testing.T) {
	var cs []models.Candle
	for i := 0; i < 10; i++ {
		cs = append(cs, at(i))
	}
	tf := 15 * time.Minute

	// (0:15, 1:30]: открыты после 0:15 и закрыты к 1:30 -> 0:30, 0:45, 1:00, 1:15
	got := Window(cs, base.Add(15*time.Minute), base.Add(90*time.Minute), tf)
	if len(got) != 4 || !got[0].Time.Equal(base.Add(30*time.Minute)) || !got[3].Time.Equal(base.Add(75*time.Minute)) {
		t.Fatalf("unexpected window %v", got)
	}

	// будущие свечи не меняют окно
	more := append(append([]models.Candle{}, cs...), at(10), at(11))
	again := Window(more, base.Add(15*time.Minute), base.Add(90*time.Minute), tf)
	if len(again) != len(got) {
		t.Fatalf("appending future candles changed the window")
	}

	if got := Closed(cs, base.Add(20*time.Minute), tf); len(got) != 1 {
		t.Fatalf("only the first candle is closed at 00:20, got %d", len(got))
	}
	if got := Window(cs, base.Add(time.Hour), base, tf); len(got) != 0 {
		t.Fatalf("inverted window must be empty")
	}
}

func TestReadCSV(t *testing.T) {
	data := strings.Join([]string{
		"Datetime,Open,High,Low,Close,Volume",
		"2024-03-04 00:15:00+00:00,1.1,1.2,1.0,1.15,10",
		"2024-03-04T00:00:00Z,1.0,1.1,0.9,1.05,",
		"garbage,1,2,3,4",
		"2024-03-04T00:45:00Z,1.1,NaN,1.0,1.15,1",
		"2024-03-04T01:00:00Z,1.1,+Inf,1.0,1.15,1",
		"2024-03-04T01:15:00Z,1.1,1.2,1.0,1.15,nan",
		"1709512200,1.15,1.3,1.1,1.2,5",
	}, "\n")

	got, skipped, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if skipped != 4 || len(got) != 3 {
		t.Fatalf("got %d candles, %d skipped", len(got), skipped)
	}
	if !got[0].Time.Equal(base) || got[2].High != 1.3 {
		t.Fatalf("unexpected candles %+v", got)
	}
}

func TestCSVProvider(t *testing.T) {
	logger.InitNop()
	dir := t.TempDir()
	p := NewCSVProvider(dir)

	body := "time,open,high,low,close\n" +
		"2024-03-04T00:00:00Z,1,2,0.5,1.5\n" +
		"2024-03-04T00:15:00Z,1,2,0.5,1.5\n" +
		"2024-03-04T00:30:00Z,1,2,0.5,1.5\n"
	if err := os.WriteFile(filepath.Join(dir, "EURUSD_X_15m.csv"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	last, err := p.Latest(ctx, "EURUSD=X", "M15", 2)
	if err != nil || len(last) != 2 || !last[1].Time.Equal(base.Add(30*time.Minute)) {
		t.Fatalf("latest: %v %v", last, err)
	}

	rng, err := p.Range(ctx, "EURUSD=X", "15m", base.Add(15*time.Minute), base.Add(time.Hour))
	if err != nil || len(rng) != 2 {
		t.Fatalf("range: %v %v", rng, err)
	}

	if _, err := p.Range(ctx, "EURUSD=X", "15m", base.Add(24*time.Hour), base.Add(48*time.Hour)); !errors.Is(err, models.ErrProviderUnavailable) {
		t.Fatalf("empty range must be provider-unavailable, got %v", err)
	}
	if _, err := p.Latest(ctx, "GBPUSD", "15m", 10); !errors.Is(err, models.ErrProviderUnavailable) {
		t.Fatalf("missing file must be provider-unavailable, got %v", err)
	}
}
