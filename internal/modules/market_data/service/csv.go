package service

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"sweep_bot/internal/helper"
	"sweep_bot/internal/models"
	"sweep_bot/pkg/logger"
)

// CSVProvider читает <dir>/<ASSET>_<tf>.csv: time,open,high,low,close[,volume].
// Файл перечитывается, только если поменялось mtime.
type CSVProvider struct {
	dir string

	mu    sync.Mutex
	cache map[string]csvEntry
}

type csvEntry struct {
	mod     time.Time
	candles []models.Candle
}

func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{dir: dir, cache: make(map[string]csvEntry)}
}

func (p *CSVProvider) Path(asset, tf string) string {
	return filepath.Join(p.dir, helper.AssetFileKey(asset)+"_"+helper.NormTF(tf)+".csv")
}

func (p *CSVProvider) Latest(ctx context.Context, asset, tf string, n int) ([]models.Candle, error) {
	all, err := p.load(ctx, asset, tf)
	if err != nil {
		return nil, err
	}
	return Last(all, n), nil
}

func (p *CSVProvider) Range(ctx context.Context, asset, tf string, from, to time.Time) ([]models.Candle, error) {
	all, err := p.load(ctx, asset, tf)
	if err != nil {
		return nil, err
	}
	out := Between(all, from, to)
	if len(out) == 0 {
		return nil, errors.Wrapf(models.ErrProviderUnavailable, "%s %s: no candles in [%s, %s]",
			asset, tf, from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return out, nil
}

func (p *CSVProvider) load(ctx context.Context, asset, tf string) ([]models.Candle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := p.Path(asset, tf)

	st, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(models.ErrProviderUnavailable, "%s: %v", path, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := p.cache[path]; ok && e.mod.Equal(st.ModTime()) {
		return e.candles, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(models.ErrProviderUnavailable, "%s: %v", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	candles, skipped, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	if skipped > 0 {
		logger.Warn("[DATA] %s: skipped %d bad rows", path, skipped)
	}
	if len(candles) == 0 {
		return nil, errors.Wrapf(models.ErrProviderUnavailable, "%s: empty", path)
	}
	logger.Info("[DATA] loaded %d candles from %s", len(candles), path)

	p.cache[path] = csvEntry{mod: st.ModTime(), candles: candles}
	return candles, nil
}

// ReadCSV разбирает свечи; строки, которые не парсятся, пропускаются и считаются.
// Заголовок (первая строка без валидного времени) допускается.
func ReadCSV(r io.Reader) ([]models.Candle, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		out     []models.Candle
		skipped int
		line    int
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, skipped, errors.Wrap(err, "csv")
		}
		line++

		c, ok := parseRecord(rec)
		if !ok {
			if line > 1 {
				skipped++
			}
			continue
		}
		out = append(out, c)
	}
	return Normalize(out), skipped, nil
}

func parseRecord(rec []string) (models.Candle, bool) {
	if len(rec) < 5 {
		return models.Candle{}, false
	}
	ts, ok := parseTime(rec[0])
	if !ok {
		return models.Candle{}, false
	}
	var f [5]float64
	for i := 1; i < len(rec) && i <= 5; i++ {
		s := strings.TrimSpace(rec[i])
		if s == "" && i == 5 {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, false
		}
		f[i-1] = v
	}
	c := models.Candle{Time: ts, Open: f[0], High: f[1], Low: f[2], Close: f[3], Volume: f[4]}
	if !finite(c) {
		return models.Candle{}, false
	}
	return c, true
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), true
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return time.Time{}, false
	}
	if n > 1e12 {
		return time.UnixMilli(n).UTC(), true
	}
	return time.Unix(n, 0).UTC(), true
}
