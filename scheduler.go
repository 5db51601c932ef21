package scrim

import (
	"sync"
	"time"
)

// DefaultFlushDelay is the trailing-edge coalescing window. Mutation
// notifications arrive roughly once per KB of child output, so bursts are
// collapsed into one rebuild-and-repaint cycle at most this far behind the
// first notification in the burst.
const DefaultFlushDelay = 25 * time.Millisecond

// Painter is the presentation collaborator the Scheduler drives. PaintRows
// and MoveCursor are invoked outside the scheduler lock; implementations
// that read the cache from another goroutine (UI main loops) must do so
// through View.
type Painter interface {
	// CellSize returns the surface's cell metrics: pixels for GUI
	// surfaces, 1x1 for text-cell surfaces.
	CellSize() (w, h int)

	// PaintRows asks the surface to repaint the inclusive absolute row
	// span.
	PaintRows(start, end int)

	// MoveCursor repositions the caret. visible is false while the view
	// is scrolled away from the live viewport or the model hides the
	// cursor.
	MoveCursor(r Rect, visible bool)
}

// Scheduler coalesces bursts of buffer-mutation notifications into single
// bounded-latency rebuild-and-repaint cycles. NotifyDirty merges ranges and
// arms a single trailing timer; calls while armed only widen the pending
// range, they never push the deadline back. A pending range is merged,
// consumed, and cleared atomically exactly once.
//
// The timer callback runs on its own goroutine, so every touch of the
// pending range and the cache goes through one exclusive lock.
type Scheduler struct {
	mu      sync.Mutex
	model   Model
	cache   *RenderCache
	painter Painter
	delay   time.Duration

	timer   *time.Timer
	pending *DirtyRange
	stopped bool
}

// NewScheduler wires a scheduler over the model, cache, and painter.
// delay <= 0 selects DefaultFlushDelay.
func NewScheduler(m Model, c *RenderCache, p Painter, delay time.Duration) *Scheduler {
	if delay <= 0 {
		delay = DefaultFlushDelay
	}
	return &Scheduler{model: m, cache: c, painter: p, delay: delay}
}

// NotifyDirty records a dirty range of absolute rows, inclusive, and arms
// the flush timer if it is not already armed.
func (s *Scheduler) NotifyDirty(start, end int) {
	if end < start {
		start, end = end, start
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	r := DirtyRange{Start: start, End: end}
	if s.pending != nil {
		r = s.pending.union(r)
		s.pending = &r
		return // timer already armed; widening only
	}
	s.pending = &r
	s.timer = time.AfterFunc(s.delay, s.flush)
}

// flush consumes the pending range: one partial rebuild, one cursor
// reposition, one repaint signal.
func (s *Scheduler) flush() {
	s.mu.Lock()
	if s.pending == nil || s.stopped {
		s.mu.Unlock()
		return
	}
	r := *s.pending
	s.pending = nil
	s.timer = nil

	// Ranges are tracked as absolute rows end to end, so the rebuild needs
	// no scroll offset applied.
	err := s.cache.RebuildRange(r.Start, r.End, 0, s.cache.Cols())
	rect, visible := s.cursorState()
	s.mu.Unlock()

	if err != nil {
		// Row-shape mismatch means the model resized under us; the resize
		// notification that follows will RebuildAll.
		return
	}

	s.painter.PaintRows(r.Start, r.End)
	s.painter.MoveCursor(rect, visible)
}

// NotifyResize preempts any armed partial flush and replaces it with a full
// rebuild: the pending range and timer are dropped, never merged, and every
// cache entry is rebuilt against the new column count.
func (s *Scheduler) NotifyResize(cols, rows int) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil

	total := s.model.TotalRows()
	if total < rows {
		total = rows
	}
	err := s.cache.RebuildAll(total, cols)
	rect, visible := s.cursorState()
	s.mu.Unlock()

	if err != nil {
		return err
	}

	s.painter.PaintRows(0, total-1)
	s.painter.MoveCursor(rect, visible)
	return nil
}

// cursorState computes the caret rectangle via the locator. Caller holds mu.
func (s *Scheduler) cursorState() (Rect, bool) {
	col, row := s.model.Cursor()
	offset := s.model.ScrollOffset()
	w, h := s.painter.CellSize()
	rect := LocateCursor(col, row, offset, w, h)
	visible := s.model.CursorVisible() && offset == 0
	return rect, visible
}

// View runs fn with exclusive access to the cache. Surfaces whose draw
// callbacks run on a UI main loop read rows through here so a concurrent
// rebuild can never tear a frame.
func (s *Scheduler) View(fn func(*RenderCache)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cache)
}

// Stop disarms any pending flush. There is nothing long-running to cancel;
// a stopped scheduler simply drops further notifications.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
}
