package runner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sweep_bot/internal/models"
	health "sweep_bot/internal/modules/health/service"
	marketdata "sweep_bot/internal/modules/market_data/service"
	strategy "sweep_bot/internal/modules/strategy/service"
	"sweep_bot/internal/notify"
	"sweep_bot/pkg/logger"
	"sweep_bot/pkg/tracing"
)

// сколько помним отправленные сигналы
const seenTTL = 7 * 24 * time.Hour

type Config struct {
	Assets   []string
	HTF, LTF string
	HTFDur   time.Duration
	LTFDur   time.Duration
	History  int
	Interval time.Duration
}

// Runner опрашивает провайдер по интервалу и шлёт новые сигналы в нотифайер.
// Ордера не выставляются.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg      Config
	provider marketdata.Provider
	gen      *strategy.Generator
	n        notify.Notifier
	state    *health.State
	now      func() time.Time

	mu       sync.Mutex
	seen     map[string]time.Time // asset|side|sweep -> время свипа
	lastPoll map[string]time.Time // asset -> последний успешный опрос
}

func New(cfg Config, provider marketdata.Provider, gen *strategy.Generator, n notify.Notifier, state *health.State) *Runner {
	if state == nil {
		state = health.NewState()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	return &Runner{
		cfg:      cfg,
		provider: provider,
		gen:      gen,
		n:        n,
		state:    state,
		now:      func() time.Time { return time.Now().UTC() },
		seen:     make(map[string]time.Time),
		lastPoll: make(map[string]time.Time),
	}
}

// Start блокирует до отмены контекста или Stop.
func (r *Runner) Start(parent context.Context) {
	r.mu.Lock()
	r.ctx, r.cancel = context.WithCancel(parent)
	ctx := r.ctx
	r.mu.Unlock()

	go r.healthLoop(ctx)

	logger.Info("[SCAN] ▶️ watching %s every %s (htf=%s ltf=%s)",
		strings.Join(r.cfg.Assets, ","), r.cfg.Interval, r.cfg.HTF, r.cfg.LTF)
	r.n.Sendf("📈 Scanner started: %s", strings.Join(r.cfg.Assets, ", "))

	r.PollOnce(ctx)
	r.state.SetReady(true)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("[SCAN] stopped")
			return
		case <-ticker.C:
			r.PollOnce(ctx)
		}
	}
}

func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

// PollOnce один независимый проход по всем активам; возвращает новые сигналы.
func (r *Runner) PollOnce(ctx context.Context) []models.SignalCandidate {
	span, ctx := tracing.StartSpan(ctx, "scan.poll")
	defer span.Finish()

	now := r.now()
	var out []models.SignalCandidate
	for _, asset := range r.cfg.Assets {
		if ctx.Err() != nil {
			break
		}
		d, err := r.evaluate(ctx, asset, now)
		if err != nil {
			r.state.AddPollError()
			logger.Warn("[SCAN] %s: %v, treated as insufficient data", asset, err)
			continue
		}
		r.mu.Lock()
		r.lastPoll[asset] = now
		r.mu.Unlock()

		if d.Candidate == nil {
			logger.Debug("[SCAN] %s NONE: %s", asset, d.Reason())
			continue
		}
		c := *d.Candidate
		if !r.remember(c, now) {
			logger.Debug("[SCAN] %s %s already sent (sweep %s)", asset, c.Side, c.Sweep.CandleTime.Format(time.RFC3339))
			continue
		}

		logger.Info("[SIGNAL] %s %s entry=%.5f stop=%.5f target=%.5f rr=%.2f | %s",
			asset, c.Side, c.Entry, c.Stop, c.Target, c.RR, c.Reason())
		r.state.TouchSignal(now)
		if err := r.n.SendSignal(ctx, c); err != nil {
			logger.Error("[NOTIFY] %s: %v", asset, err)
		}
		out = append(out, c)
	}

	r.state.TouchPoll(now)
	span.SetTag("assets", len(r.cfg.Assets))
	span.SetTag("signals", len(out))
	return out
}

func (r *Runner) evaluate(ctx context.Context, asset string, now time.Time) (strategy.Decision, error) {
	htf, err := r.provider.Latest(ctx, asset, r.cfg.HTF, r.cfg.History)
	if err != nil {
		return strategy.Decision{}, err
	}
	ltf, err := r.provider.Latest(ctx, asset, r.cfg.LTF, r.cfg.History)
	if err != nil {
		return strategy.Decision{}, err
	}

	// незакрытые свечи в анализ не попадают
	return r.gen.Evaluate(strategy.Input{
		Asset: asset,
		Now:   now,
		HTF:   marketdata.Closed(marketdata.Normalize(htf), now, r.cfg.HTFDur),
		LTF:   marketdata.Closed(marketdata.Normalize(ltf), now, r.cfg.LTFDur),
	}), nil
}

// True, если сигнал с этим свипом ещё не отправляли.
func (r *Runner) remember(c models.SignalCandidate, now time.Time) bool {
	key := fmt.Sprintf("%s|%s|%d", c.Asset, c.Side, c.Sweep.CandleTime.Unix())

	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.seen {
		if now.Sub(t) > seenTTL {
			delete(r.seen, k)
		}
	}
	if _, ok := r.seen[key]; ok {
		return false
	}
	r.seen[key] = c.Sweep.CandleTime
	return true
}

func (r *Runner) healthLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			fresh := len(r.lastPoll)
			r.mu.Unlock()
			logger.Info("[HEALTH] assets=%d polled=%d signals=%d errors=%d last_poll=%s",
				len(r.cfg.Assets), fresh, r.state.Signals(), r.state.PollErrors(),
				r.state.LastPoll().UTC().Format(time.RFC3339))
		}
	}
}
