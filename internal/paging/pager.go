// Package paging loads windows of bars from an external source as the
// visible date range changes. Requests are tagged with a sequence number so
// that a result arriving after the user has moved on can be recognised and
// dropped.
package paging

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/zappabad/candleview/internal/ohlc"
)

// ErrStale marks a result that no longer matches what the chart shows.
var ErrStale = errors.New("paging: stale page")

// Loader fetches up to pageSize bars around lower. Implementations must not
// touch chart state; they only return data.
type Loader interface {
	LoadBars(ctx context.Context, lower ohlc.Date, pageSize int) ([]ohlc.Bar, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, lower ohlc.Date, pageSize int) ([]ohlc.Bar, error)

func (f LoaderFunc) LoadBars(ctx context.Context, lower ohlc.Date, pageSize int) ([]ohlc.Bar, error) {
	return f(ctx, lower, pageSize)
}

// Window returns the date range a page around lower covers: pageSize days
// starting half a page before lower.
func Window(lower ohlc.Date, pageSize int) ohlc.DateRange {
	start := lower.AddDays(-pageSize / 2)
	return ohlc.NewRange(start, start.AddDays(pageSize))
}

// Config holds paging settings.
type Config struct {
	PageSize int `mapstructure:"page_size"`
	// RequestsPerSecond and Burst bound how fast the loader is called.
	RequestsPerSecond float64 `mapstructure:"rps"`
	Burst             int     `mapstructure:"burst"`
	// MaxRetries is the number of retries after a failed load.
	MaxRetries     uint64        `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	// Timeout bounds a whole fetch including retries.
	Timeout time.Duration `mapstructure:"timeout"`
	// Debounce is how long the host waits for navigation to settle before
	// dispatching a fetch.
	Debounce time.Duration `mapstructure:"debounce"`
}

// DefaultConfig returns the default paging settings.
func DefaultConfig() Config {
	return Config{
		PageSize:          2000,
		RequestsPerSecond: 5,
		Burst:             2,
		MaxRetries:        3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        2 * time.Second,
		Timeout:           10 * time.Second,
		Debounce:          150 * time.Millisecond,
	}
}

// Request describes one page fetch.
type Request struct {
	ID  string
	Seq uint64
	// Target is the visible date range when the request was issued.
	Target   ohlc.DateRange
	Lower    ohlc.Date
	PageSize int
	// Initial marks the first load, which fits both axes to the data.
	Initial bool
}

// Window returns the date range the request asks for.
func (r Request) Window() ohlc.DateRange { return Window(r.Lower, r.PageSize) }

// Result is the outcome of a fetch. It is delivered back to the owner of
// the chart as a message.
type Result struct {
	Request
	Bars     []ohlc.Bar
	Err      error
	Attempts int
	Elapsed  time.Duration
}

// Pager issues requests and decides whether their results still apply.
// Next and Accept must be called from the goroutine that owns the chart;
// Fetch may run anywhere.
type Pager struct {
	loader  Loader
	cfg     Config
	limiter *rate.Limiter

	seq      uint64
	accepted uint64

	log logrus.FieldLogger
}

// NewPager creates a new Pager around loader.
func NewPager(loader Loader, cfg Config) *Pager {
	def := DefaultConfig()
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Pager{
		loader:  loader,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		log:     logrus.WithField("component", "pager"),
	}
}

// SetLogger replaces the pager's logger.
func (p *Pager) SetLogger(l logrus.FieldLogger) { p.log = l }

// Config returns the effective settings.
func (p *Pager) Config() Config { return p.cfg }

// Seq returns the sequence number of the newest request.
func (p *Pager) Seq() uint64 { return p.seq }

// InFlight reports whether the newest request has not been accepted yet.
func (p *Pager) InFlight() bool { return p.seq > p.accepted }

// Next issues a request for the page around target's lower bound. Every
// call supersedes the requests issued before it.
func (p *Pager) Next(target ohlc.DateRange, initial bool) Request {
	p.seq++
	req := Request{
		ID:       uuid.NewString(),
		Seq:      p.seq,
		Target:   target,
		Lower:    target.Lower,
		PageSize: p.cfg.PageSize,
		Initial:  initial,
	}
	p.log.WithFields(logrus.Fields{
		"request": req.ID,
		"seq":     req.Seq,
		"lower":   req.Lower,
	}).Debug("page requested")
	return req
}

// Fetch runs the loader for req, waiting on the rate limiter and retrying
// failed loads with exponential backoff. It never touches chart state.
func (p *Pager) Fetch(ctx context.Context, req Request) Result {
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	res := Result{Request: req}
	op := func() error {
		if err := p.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(errors.Wrap(err, "rate limit"))
		}
		res.Attempts++
		bars, err := p.loader.LoadBars(ctx, req.Lower, req.PageSize)
		if err != nil {
			if errors.Is(err, ohlc.ErrInvalidBar) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			p.log.WithError(err).WithField("request", req.ID).Warnf("load attempt %d failed", res.Attempts)
			return err
		}
		res.Bars = bars
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.cfg.InitialBackoff
	bo.MaxInterval = p.cfg.MaxBackoff
	bo.MaxElapsedTime = 0

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, p.cfg.MaxRetries), ctx)); err != nil {
		res.Err = errors.Wrapf(err, "load page at %s", req.Lower)
	}
	res.Elapsed = time.Since(start)
	return res
}

// Accept decides whether res may be applied to a chart currently showing
// current. It returns an error wrapping ErrStale when a newer request exists
// or the visible range has moved, and the load error when the fetch failed.
func (p *Pager) Accept(res Result, current ohlc.DateRange) error {
	if res.Seq != p.seq {
		return errors.Wrapf(ErrStale, "seq %d superseded by %d", res.Seq, p.seq)
	}
	if !res.Target.Equal(current) {
		return errors.Wrapf(ErrStale, "range moved from %s..%s", res.Target.Lower, res.Target.Upper)
	}
	p.accepted = res.Seq
	if res.Err != nil {
		return res.Err
	}
	p.log.WithFields(logrus.Fields{
		"request":  res.ID,
		"bars":     len(res.Bars),
		"attempts": res.Attempts,
		"elapsed":  res.Elapsed,
	}).Debug("page accepted")
	return nil
}
