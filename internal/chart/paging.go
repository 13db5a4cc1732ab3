package chart

import (
	"github.com/pkg/errors"

	"github.com/zappabad/candleview/internal/ohlc"
	"github.com/zappabad/candleview/internal/paging"
)

// ErrNoPager is returned by paging calls on a chart created without a loader.
var ErrNoPager = errors.New("chart: paging disabled")

// StartPaging sets the initial viewport of VisibleDays days ending at last
// and issues the first page request. The first page fits both axes to the
// data it brings.
func (c *Chart) StartPaging(last ohlc.Date) (paging.Request, error) {
	if c.pager == nil {
		return paging.Request{}, ErrNoPager
	}
	if err := c.dates.SetBounds(last.AddDays(-c.cfg.VisibleDays), last); err != nil {
		return paging.Request{}, err
	}
	c.pending = false
	c.relayout()
	return c.pager.Next(c.dates.Bounds(), true), nil
}

// HasPendingPage reports whether navigation since the last request calls
// for a new page.
func (c *Chart) HasPendingPage() bool { return c.pending }

// PendingPage issues a request for the current viewport when navigation
// has happened since the last one.
func (c *Chart) PendingPage() (paging.Request, bool) {
	if !c.pending || c.pager == nil {
		return paging.Request{}, false
	}
	c.pending = false
	return c.pager.Next(c.dates.Bounds(), false), true
}

// ApplyPage replaces the dataset with a fetched page. Results for a
// superseded request or a viewport that has since moved are dropped and
// reported as not applied without an error. Otherwise the date viewport is
// kept and the value axis is fitted to the visible bars.
func (c *Chart) ApplyPage(res paging.Result) (bool, error) {
	if c.pager == nil {
		return false, ErrNoPager
	}
	if err := c.pager.Accept(res, c.dates.Bounds()); err != nil {
		if errors.Is(err, paging.ErrStale) {
			c.log.WithField("request", res.ID).Debugf("dropped page: %v", err)
			return false, nil
		}
		return false, err
	}
	if err := c.store.SetSeries(res.Bars); err != nil {
		return false, errors.Wrapf(err, "page %s", res.ID)
	}

	if res.Initial {
		c.autoRange()
	} else {
		c.fitValues()
	}
	c.relayout()
	c.log.WithField("request", res.ID).Infof("loaded %d bars around %s", len(res.Bars), res.Lower)
	return true, nil
}

// fitValues fits the value axis to the bars inside the date viewport.
func (c *Chart) fitValues() {
	visible := c.store.Between(c.dates.Bounds())
	if len(visible) == 0 {
		return
	}
	lo, hi := visible[0].Low, visible[0].High
	for _, b := range visible[1:] {
		lo = min(lo, b.Low)
		hi = max(hi, b.High)
	}
	r := c.values.AutoRange(lo, hi)
	if err := c.values.SetBounds(r.Lower, r.Upper); err != nil {
		c.log.WithError(err).Warn("fit values")
	}
}
