package helper

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

func NormTF(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "candle")
	switch s {
	case "60m", "1h", "h1":
		return "1h"
	case "15m", "m15":
		return "15m"
	case "5m", "m5":
		return "5m"
	case "240m", "4h", "h4":
		return "4h"
	case "1440m", "1d", "d1":
		return "1d"
	default:
		return s
	}
}

// TFDuration разбирает таймфрейм вида 15m / 1h / 4h / 1d.
// Если имя есть в карте minutes: берём оттуда.
func TFDuration(tf string, minutes map[string]int) (time.Duration, error) {
	tf = NormTF(tf)
	if m, ok := minutes[tf]; ok {
		if m <= 0 {
			return 0, errors.Errorf("timeframe %s: non-positive minutes %d", tf, m)
		}
		return time.Duration(m) * time.Minute, nil
	}
	if len(tf) < 2 {
		return 0, errors.Errorf("bad timeframe %q", tf)
	}
	n, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || n <= 0 {
		return 0, errors.Errorf("bad timeframe %q", tf)
	}
	switch tf[len(tf)-1] {
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return 0, errors.Errorf("bad timeframe %q", tf)
}

// PipSize 0.01 для JPY-пар, иначе 0.0001.
func PipSize(asset string) float64 {
	if strings.Contains(strings.ToUpper(asset), "JPY") {
		return 0.01
	}
	return 0.0001
}

// ParseClock разбирает время дня "HH:MM" в смещение от полуночи.
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, "parse clock %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// DayStart полночь UTC для t.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AssetFileKey делает из актива имя для файла, EUR/USD -> EUR_USD.
func AssetFileKey(asset string) string {
	r := strings.NewReplacer("/", "_", "=", "_", ":", "_", " ", "")
	return strings.ToUpper(r.Replace(asset))
}
