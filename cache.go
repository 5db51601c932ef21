package scrim

import (
	"errors"
	"fmt"
)

// Cache error conditions. ErrRowNotBuilt and ErrCacheNotReady surface
// integration bugs and are meant to abort the consumer's operation, not to
// be papered over with blank content.
var (
	ErrRowNotBuilt   = errors.New("scrim: row was never built")
	ErrCacheNotReady = errors.New("scrim: RebuildAll has not run for this width")
	ErrInvalidSize   = errors.New("scrim: row and column counts must be positive")
)

// RenderCache keeps one style-run slice per absolute row, rebuilt only for
// rows named in a dirty-range signal. Partial rebuilds cost O(dirty rows x
// columns) instead of O(total rows x columns); mutation notifications can
// arrive many times per second under heavy child output, so that ratio is
// what keeps redraw affordable.
//
// RenderCache is not safe for concurrent use; the Scheduler serializes all
// access to it.
type RenderCache struct {
	model Model
	rows  [][]StyleRun
	cols  int // width every entry was built against; 0 = never built
}

// NewRenderCache creates an empty cache over the model. RebuildAll must run
// before any partial update or read.
func NewRenderCache(m Model) *RenderCache {
	return &RenderCache{model: m}
}

// Built reports whether RebuildAll has completed at least once.
func (c *RenderCache) Built() bool {
	return c.cols > 0
}

// Cols returns the column count the cache was last built against.
func (c *RenderCache) Cols() int {
	return c.cols
}

// Rows returns the number of built entries.
func (c *RenderCache) Rows() int {
	return len(c.rows)
}

// RebuildAll discards every entry and rebuilds rows 0..rowCount-1. Used on
// initial attach and on resize; a resize invalidates all entries because
// the column count they were built against changed. On invalid sizes the
// cache keeps its prior state.
func (c *RenderCache) RebuildAll(rowCount, cols int) error {
	if rowCount <= 0 || cols <= 0 {
		return fmt.Errorf("%w: rows=%d cols=%d", ErrInvalidSize, rowCount, cols)
	}

	rows := make([][]StyleRun, rowCount)
	for i := range rows {
		cells := c.model.Row(i)
		if len(cells) < cols {
			return fmt.Errorf("scrim: model row %d has %d cells, want %d", i, len(cells), cols)
		}
		rows[i] = BuildRuns(cells, cols)
	}

	c.rows = rows
	c.cols = cols
	return nil
}

// RebuildRange rebuilds only the entries for absolute rows
// startRow+scrollOffset through endRow+scrollOffset inclusive. RebuildAll
// must have run with the same column count first; anything else is a caller
// error and fails immediately. A model row of the wrong width fails the
// call outright with no partial recovery — the caller is expected to
// RebuildAll afterwards.
func (c *RenderCache) RebuildRange(startRow, endRow, scrollOffset, cols int) error {
	if cols <= 0 {
		return fmt.Errorf("%w: cols=%d", ErrInvalidSize, cols)
	}
	if c.cols == 0 || c.cols != cols {
		return fmt.Errorf("%w: built=%d want=%d", ErrCacheNotReady, c.cols, cols)
	}

	lo := startRow + scrollOffset
	hi := endRow + scrollOffset
	if lo < 0 {
		lo = 0
	}

	// Output scrolled into scrollback since the last build appends rows past
	// the built range; grow to cover them.
	for len(c.rows) <= hi {
		c.rows = append(c.rows, nil)
	}

	for i := lo; i <= hi; i++ {
		cells := c.model.Row(i)
		if len(cells) < cols {
			return fmt.Errorf("scrim: model row %d has %d cells, want %d", i, len(cells), cols)
		}
		c.rows[i] = BuildRuns(cells, cols)
	}
	return nil
}

// Row returns the cached runs for an absolute row. A row outside the built
// range means the cache and the model fell out of sync; failing here keeps
// a stale-display bug loud instead of rendering silence.
func (c *RenderCache) Row(abs int) ([]StyleRun, error) {
	if abs < 0 || abs >= len(c.rows) {
		return nil, fmt.Errorf("%w: row %d of %d", ErrRowNotBuilt, abs, len(c.rows))
	}
	return c.rows[abs], nil
}
