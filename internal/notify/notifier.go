package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sweep_bot/internal/models"
	"sweep_bot/pkg/logger"
)

type Notifier interface {
	Send(msg string)
	Sendf(format string, args ...any)
	SendSignal(ctx context.Context, c models.SignalCandidate) error
}

// Level — подписанная горизонталь для графика сигнала.
type Level struct {
	Label string
	Price float64
}

// Chart содержит то, что получает отрисовка: заголовок и уровни.
type Chart struct {
	Title  string
	Levels []Level
}

func ChartFor(c models.SignalCandidate) Chart {
	return Chart{
		Title: fmt.Sprintf("%s %s (%s context)", c.Asset, c.Side, c.Context),
		Levels: []Level{
			{"entry", c.Entry},
			{"stop", c.Stop},
			{"target", c.Target},
			{"swept " + strings.ToLower(string(c.Sweep.Level.Kind)), c.Sweep.Level.Price},
		},
	}
}

// FormatSignal: текст сообщения о сигнале.
func FormatSignal(c models.SignalCandidate) string {
	ch := ChartFor(c)
	var b strings.Builder
	emoji := "🟢"
	if c.Side == models.SideSell {
		emoji = "🔴"
	}
	fmt.Fprintf(&b, "%s %s\n", emoji, ch.Title)
	for _, l := range ch.Levels {
		fmt.Fprintf(&b, "%s: %.5f\n", l.Label, l.Price)
	}
	fmt.Fprintf(&b, "RR: %.2f\n", c.RR)
	fmt.Fprintf(&b, "gap: [%.5f, %.5f] %s\n", c.Imbalance.Lower, c.Imbalance.Upper, c.Imbalance.Direction)
	fmt.Fprintf(&b, "sweep: %s\n", c.Sweep.CandleTime.UTC().Format(time.RFC3339))
	for _, s := range c.Rationale {
		fmt.Fprintf(&b, "✓ %s: %s\n", s.Name, s.Detail)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Telegram пассивный нотифайер в один чат.
type Telegram struct {
	bot    *tgbot.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{
		bot:    b,
		chatID: chatID,
	}, nil
}

func (t *Telegram) Send(msg string) {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return
	}
	_, _ = t.bot.Send(tgbot.NewMessage(t.chatID, msg))
}

func (t *Telegram) Sendf(format string, args ...any) { t.Send(fmt.Sprintf(format, args...)) }

func (t *Telegram) SendSignal(ctx context.Context, c models.SignalCandidate) error {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbot.NewMessage(t.chatID, FormatSignal(c))
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

// Stdout всё в лог.
type Stdout struct{}

func NewStdout() *Stdout                           { return &Stdout{} }
func (s *Stdout) Send(msg string)                  { logger.Info("[NOTIFY] %s", msg) }
func (s *Stdout) Sendf(format string, args ...any) { logger.Info("[NOTIFY] "+format, args...) }
func (s *Stdout) SendSignal(_ context.Context, c models.SignalCandidate) error {
	logger.Info("[NOTIFY] %s", strings.ReplaceAll(FormatSignal(c), "\n", " | "))
	return nil
}

// New: Telegram, если заданы токен и чат, иначе Stdout.
func New(token string, chatID int64) Notifier {
	if token == "" || chatID == 0 {
		logger.Info("[NOTIFY] telegram not configured, using stdout")
		return NewStdout()
	}
	t, err := NewTelegram(token, chatID)
	if err != nil {
		logger.Error("[NOTIFY] telegram init failed: %v, using stdout", err)
		return NewStdout()
	}
	return t
}
