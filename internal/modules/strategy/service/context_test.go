package service

import (
	"testing"

	"github.com/pkg/errors"

	"sweep_bot/internal/models"
)

func TestClassifyContext(t *testing.T) {
	htf := bullishHTF()

	res := ClassifyContext(htf, 2, 0)
	if res.Context != models.ContextBullish {
		t.Fatalf("expected BULLISH, got %s (%s)", res.Context, res.Reason)
	}
	if res.Sweep == nil || !res.Sweep.CandleTime.Equal(htf[8].Time) || res.Sweep.Level.Price != 95 {
		t.Fatalf("unexpected sweep %+v", res.Sweep)
	}
	if res.Structure == nil || res.Structure.Price != 105 || !res.BreakTime.Equal(htf[9].Time) {
		t.Fatalf("unexpected structure %+v break %v", res.Structure, res.BreakTime)
	}

	bear := ClassifyContext(mirror(htf, 200), 2, 0)
	if bear.Context != models.ContextBearish {
		t.Fatalf("expected BEARISH on mirrored data, got %s (%s)", bear.Context, bear.Reason)
	}
}

func TestClassifyContext_Neutral(t *testing.T) {
	htf := bullishHTF()

	cases := []struct {
		name string
		in   []models.Candle
		n    int
		scan int
		kind error
	}{
		{name: "insufficient data", in: htf[:3], n: 2, kind: models.ErrInsufficientData},
		{name: "bad lookback", in: htf, n: 0, kind: models.ErrConfiguration},
		{name: "sweep without break", in: htf[:9], n: 2, kind: models.ErrNoPattern},
		{name: "only last candle scanned", in: htf, n: 2, scan: 1, kind: models.ErrNoPattern},
		{name: "flat market", in: seq(htf[1].Time.Sub(htf[0].Time), [][4]float64{
			{1, 2, 0, 1}, {1, 2, 0, 1}, {1, 2, 0, 1}, {1, 2, 0, 1}, {1, 2, 0, 1},
		}), n: 1, kind: models.ErrNoPattern},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ClassifyContext(tc.in, tc.n, tc.scan)
			if res.Context != models.ContextNeutral {
				t.Fatalf("expected NEUTRAL, got %s", res.Context)
			}
			if !errors.Is(res.Err, tc.kind) {
				t.Fatalf("expected %v, got %v", tc.kind, res.Err)
			}
			if res.Reason == "" {
				t.Fatalf("reason must be filled")
			}
		})
	}
}
