// Package pager drives offset pagination of a table view.
//
// A Controller owns the page window of one view. Every fetch it issues asks
// for limit+2 rows so it can tell whether a next page exists without a count
// query. Requests carry a sequence number and only the latest one is applied;
// responses that arrive late are dropped.
package pager

import (
	"context"
	"fmt"

	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// lookahead is how many rows past the page are requested.
const lookahead = 2

// Request is one fetch issued by a Controller.
type Request struct {
	Seq    uint64
	Offset int
	Limit  int // rows to fetch, page size plus lookahead
}

// Sink receives the rows of the page to render.
type Sink interface {
	Fill(rows []model.Row)
}

// Fetcher loads rows for a window.
type Fetcher interface {
	Fetch(ctx context.Context, offset, limit int) ([]model.Row, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, offset, limit int) ([]model.Row, error)

func (f FetcherFunc) Fetch(ctx context.Context, offset, limit int) ([]model.Row, error) {
	return f(ctx, offset, limit)
}

// State is a snapshot of the window and its controls.
type State struct {
	Offset      int
	NextEnabled bool
	PrevEnabled bool
}

// Controller is the page window of one view. It is not safe for concurrent
// use; the owning view calls it from its event loop.
type Controller struct {
	limit   int
	sink    Sink
	cur     State
	applied State
	seq     uint64
	pending bool
}

// New creates a controller at offset 0 with next enabled and previous disabled.
func New(limit int, sink Sink) *Controller {
	if limit < 1 {
		limit = 1
	}
	st := State{NextEnabled: true}
	return &Controller{limit: limit, sink: sink, cur: st, applied: st}
}

// Limit is the page size.
func (c *Controller) Limit() int { return c.limit }

// State returns the current window and control enablement.
func (c *Controller) State() State { return c.cur }

// Offset is the current window offset.
func (c *Controller) Offset() int { return c.cur.Offset }

// Pending reports whether the latest issued request is still unanswered.
func (c *Controller) Pending() bool { return c.pending }

// Page is the 1-based number of the current page.
func (c *Controller) Page() int { return c.cur.Offset/c.limit + 1 }

// Next advances one page. It does nothing while next is disabled.
func (c *Controller) Next() (Request, bool) {
	if !c.cur.NextEnabled {
		return Request{}, false
	}
	c.cur.Offset += c.limit
	if c.cur.Offset > 0 {
		c.cur.PrevEnabled = true
	}
	return c.issue(), true
}

// Previous steps back one page. At offset 0 it does nothing.
func (c *Controller) Previous() (Request, bool) {
	if c.cur.Offset == 0 {
		return Request{}, false
	}
	c.cur.Offset -= c.limit
	if c.cur.Offset < 0 {
		c.cur.Offset = 0
	}
	if c.cur.Offset == 0 {
		c.cur.PrevEnabled = false
	}
	c.cur.NextEnabled = true
	return c.issue(), true
}

// Refetch reloads the current window.
func (c *Controller) Refetch() Request {
	return c.issue()
}

// Apply renders the response to req. A stale response is dropped and
// returns false. An empty page past offset 0 steps back one page and
// returns the follow-up request with true.
func (c *Controller) Apply(req Request, rows []model.Row) (Request, bool) {
	if req.Seq != c.seq {
		return Request{}, false
	}
	c.pending = false

	if len(rows) == 0 && c.cur.Offset > 0 {
		return c.Previous()
	}

	page := rows
	if len(page) > c.limit {
		page = page[:c.limit]
		c.cur.NextEnabled = true
	} else {
		c.cur.NextEnabled = false
	}
	c.cur.PrevEnabled = c.cur.Offset > 0
	c.applied = c.cur
	if c.sink != nil {
		c.sink.Fill(page)
	}
	return Request{}, false
}

// Fail handles a transport failure of req: the window and controls go back
// to the last applied page. Stale failures are ignored.
func (c *Controller) Fail(req Request, _ error) {
	if req.Seq != c.seq {
		return
	}
	c.pending = false
	c.cur = c.applied
}

// Do fetches req and applies the result, following step-back requests
// until a page is rendered.
func (c *Controller) Do(ctx context.Context, f Fetcher, req Request) error {
	for {
		rows, err := f.Fetch(ctx, req.Offset, req.Limit)
		if err != nil {
			c.Fail(req, err)
			return fmt.Errorf("fetch offset %d: %w", req.Offset, err)
		}
		next, more := c.Apply(req, rows)
		if !more {
			return nil
		}
		req = next
	}
}

func (c *Controller) issue() Request {
	c.seq++
	c.pending = true
	return Request{Seq: c.seq, Offset: c.cur.Offset, Limit: c.limit + lookahead}
}
