// Package feed provides a synthetic data source for the chart: a random walk
// that yields the same bar for a given date no matter which page asks.
package feed

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zappabad/candleview/internal/ohlc"
	"github.com/zappabad/candleview/internal/paging"
)

// Config holds the random walk settings.
type Config struct {
	Seed      int64   `mapstructure:"seed"`
	BasePrice float64 `mapstructure:"base_price"`
	// Latency delays every load to mimic a remote source.
	Latency time.Duration `mapstructure:"latency"`
}

// DefaultConfig returns the default walk settings.
func DefaultConfig() Config {
	return Config{
		Seed:      69420,
		BasePrice: 100,
		Latency:   50 * time.Millisecond,
	}
}

// RandomWalk generates daily bars around a slowly oscillating price level.
type RandomWalk struct {
	cfg Config
	log logrus.FieldLogger
}

var _ paging.Loader = (*RandomWalk)(nil)

// NewRandomWalk creates a new RandomWalk.
func NewRandomWalk(cfg Config) *RandomWalk {
	if cfg.BasePrice <= 0 {
		cfg.BasePrice = DefaultConfig().BasePrice
	}
	return &RandomWalk{cfg: cfg, log: logrus.WithField("component", "feed")}
}

// SetLogger replaces the walk's logger.
func (w *RandomWalk) SetLogger(l logrus.FieldLogger) { w.log = l }

func (w *RandomWalk) rng(d ohlc.Date) *rand.Rand {
	return rand.New(rand.NewSource(w.cfg.Seed ^ int64(d)*2654435761))
}

// level is the noiseless price for d.
func (w *RandomWalk) level(d ohlc.Date) float64 {
	x := float64(d)
	return w.cfg.BasePrice * (1 + 0.2*math.Sin(x/37) + 0.08*math.Sin(x/11))
}

func (w *RandomWalk) close(d ohlc.Date) float64 {
	return w.level(d) + w.rng(d).NormFloat64()*w.cfg.BasePrice*0.01
}

// Bar returns the bar for d.
func (w *RandomWalk) Bar(d ohlc.Date) ohlc.Bar {
	r := w.rng(d)
	r.NormFloat64() // consumed by close

	open := w.close(d-1) + r.NormFloat64()*w.cfg.BasePrice*0.005
	cl := w.close(d)
	spread := w.cfg.BasePrice * 0.05
	high := math.Max(open, cl) + r.Float64()*spread
	low := math.Max(0, math.Min(open, cl)-r.Float64()*spread)
	return ohlc.Bar{
		Date:   d,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  cl,
		Volume: 1000 + r.Float64()*500,
	}
}

// Generate returns one bar per day in [start, end].
func (w *RandomWalk) Generate(start, end ohlc.Date) ([]ohlc.Bar, error) {
	if start.After(end) {
		return nil, errors.Wrapf(ohlc.ErrInvalidRange, "start %s after end %s", start, end)
	}
	if !start.InDomain() || !end.InDomain() {
		return nil, errors.Wrapf(ohlc.ErrInvalidRange, "[%s, %s] outside the calendar domain", start, end)
	}
	bars := make([]ohlc.Bar, 0, end-start+1)
	for d := start; d <= end; d++ {
		bars = append(bars, w.Bar(d))
	}
	return bars, nil
}

// LoadBars returns the page around lower after the configured latency.
func (w *RandomWalk) LoadBars(ctx context.Context, lower ohlc.Date, pageSize int) ([]ohlc.Bar, error) {
	if pageSize <= 0 {
		return nil, errors.Errorf("invalid page size %d", pageSize)
	}
	if w.cfg.Latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(w.cfg.Latency):
		}
	}
	win := paging.Window(lower, pageSize)
	bars, err := w.Generate(win.Lower.ClampDomain(), win.Upper.ClampDomain())
	if err != nil {
		return nil, err
	}
	w.log.Debugf("generated %d bars for %s..%s", len(bars), win.Lower, win.Upper)
	return bars, nil
}
