package runner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"

	"sweep_bot/internal/models"
	health "sweep_bot/internal/modules/health/service"
	strategy "sweep_bot/internal/modules/strategy/service"
	"sweep_bot/pkg/logger"
)

var t0 = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func bar(t time.Time, b [4]float64) models.Candle {
	return models.Candle{Time: t, Open: b[0], High: b[1], Low: b[2], Close: b[3], Volume: 1}
}

// 34 монотонных 15m свечи, затем сетап с бычьим свипом (08:30-11:45);
// часовик 01:00-11:00 с бычьим контекстом.
func fixture() (htf, ltf []models.Candle) {
	for k := 0; k < 34; k++ {
		f := 0.01 * float64(k)
		ltf = append(ltf, bar(t0.Add(time.Duration(k)*15*time.Minute), [4]float64{8 + f, 8.1 + f, 8 + f, 8.05 + f}))
	}
	setup := [][4]float64{
		{10, 10.5, 9.8, 10.2}, {10.2, 11.0, 10.1, 10.8}, {10.8, 10.9, 10.0, 10.1}, {10.1, 10.3, 9.5, 9.6},
		{9.6, 10.0, 9.7, 9.9}, {9.9, 10.0, 9.0, 9.5}, {9.5, 11.2, 9.6, 11.1}, {11.1, 11.5, 11.0, 11.4},
		{10.95, 10.98, 10.85, 10.9}, {10.75, 10.8, 10.5, 10.6}, {10.6, 10.85, 10.55, 10.8}, {10.8, 12.0, 10.7, 11.9},
		{11.9, 14.0, 11.8, 13.5}, {13.5, 13.8, 12.9, 13.0},
	}
	for i, b := range setup {
		ltf = append(ltf, bar(t0.Add(time.Duration(34+i)*15*time.Minute), b))
	}
	bullish := [][4]float64{
		{100, 101, 99, 100}, {100, 102, 99.5, 101}, {101, 105, 100, 104}, {104, 104.5, 101, 102},
		{102, 103, 98, 99}, {99, 100, 95, 96}, {96, 99, 97, 98}, {98, 100, 97.5, 99},
		{99, 101, 94, 100}, {100, 106, 99, 105}, {105, 106.5, 103, 104},
	}
	for i, b := range bullish {
		htf = append(htf, bar(t0.Add(time.Duration(1+i)*time.Hour), b))
	}
	return htf, ltf
}

type fakeProvider struct {
	candles map[string]map[string][]models.Candle // asset -> tf -> candles
}

func (p *fakeProvider) Latest(_ context.Context, asset, tf string, n int) ([]models.Candle, error) {
	cs := p.candles[asset][tf]
	if len(cs) == 0 {
		return nil, errors.Wrapf(models.ErrProviderUnavailable, "%s %s", asset, tf)
	}
	if n > 0 && n < len(cs) {
		cs = cs[len(cs)-n:]
	}
	return cs, nil
}

func (p *fakeProvider) Range(ctx context.Context, asset, tf string, _, _ time.Time) ([]models.Candle, error) {
	return p.Latest(ctx, asset, tf, 0)
}

type captureNotifier struct {
	mu      sync.Mutex
	signals []models.SignalCandidate
	texts   []string
}

func (n *captureNotifier) Send(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, msg)
}

func (n *captureNotifier) Sendf(format string, args ...any) { n.Send(format) }

func (n *captureNotifier) SendSignal(_ context.Context, c models.SignalCandidate) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.signals = append(n.signals, c)
	return nil
}

func newTestRunner(p *fakeProvider, n *captureNotifier, state *health.State, now time.Time) *Runner {
	gen := strategy.NewGenerator(strategy.Params{
		LiquidityLookback: 2,
		MinRR:             1.5,
		StopBuffer:        strategy.DefaultStopBuffer,
		HTFMinutes:        60,
		LTFMinutes:        15,
	})
	r := New(Config{
		Assets:   []string{"EURUSD", "GBPUSD"},
		HTF:      "1h",
		LTF:      "15m",
		HTFDur:   time.Hour,
		LTFDur:   15 * time.Minute,
		History:  500,
		Interval: time.Minute,
	}, p, gen, n, state)
	r.now = func() time.Time { return now }
	return r
}

func TestPollOnce(t *testing.T) {
	logger.InitNop()
	htf, ltf := fixture()
	p := &fakeProvider{candles: map[string]map[string][]models.Candle{
		"EURUSD": {"1h": htf, "15m": ltf},
	}}
	n := &captureNotifier{}
	state := health.NewState()
	now := t0.Add(12 * time.Hour)
	r := newTestRunner(p, n, state, now)

	got := r.PollOnce(context.Background())
	if len(got) != 1 || len(n.signals) != 1 {
		t.Fatalf("expected one signal, got %d (sent %d)", len(got), len(n.signals))
	}
	c := n.signals[0]
	if c.Asset != "EURUSD" || c.Side != models.SideBuy || c.Target != 14.0 {
		t.Fatalf("unexpected signal %+v", c)
	}
	if state.Signals() != 1 || !state.LastPoll().Equal(now.Truncate(time.Second)) {
		t.Fatalf("health state not updated: signals=%d poll=%s", state.Signals(), state.LastPoll())
	}
	// GBPUSD без данных
	if state.PollErrors() != 1 {
		t.Fatalf("missing asset must count as poll error, got %d", state.PollErrors())
	}

	// тот же свип повторно не отправляется
	if again := r.PollOnce(context.Background()); len(again) != 0 || len(n.signals) != 1 {
		t.Fatalf("duplicate signal sent")
	}
}

func TestPollOnce_IgnoresUnclosedCandles(t *testing.T) {
	logger.InitNop()
	htf, ltf := fixture()
	p := &fakeProvider{candles: map[string]map[string][]models.Candle{
		"EURUSD": {"1h": htf, "15m": ltf},
	}}
	n := &captureNotifier{}
	// последняя свеча сетапа (11:45) ещё не закрыта: цель HIGH 14.0 не подтверждена
	r := newTestRunner(p, n, nil, t0.Add(11*time.Hour+50*time.Minute))

	if got := r.PollOnce(context.Background()); len(got) != 0 {
		t.Fatalf("signal built from an unclosed candle: %+v", got)
	}
}

func TestStartStop(t *testing.T) {
	logger.InitNop()
	n := &captureNotifier{}
	state := health.NewState()
	r := newTestRunner(&fakeProvider{}, n, state, t0)

	done := make(chan struct{})
	go func() {
		r.Start(context.Background())
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for !state.Ready() {
		select {
		case <-deadline:
			t.Fatalf("runner not ready after first poll")
		case <-time.After(5 * time.Millisecond):
		}
	}
	r.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop")
	}
	if len(n.texts) == 0 {
		t.Fatalf("start message not sent")
	}
}
