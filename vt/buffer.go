// Package vt provides a minimal cell-grid buffer implementing scrim.Model:
// a fixed-size screen over a scrollback list, a cursor, and plain-text
// writes that understand only control characters. Escape-sequence
// interpretation belongs to a parser layered on top, not here.
package vt

import (
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/kestrelo/scrim"
)

const defaultScrollback = 10000

// Buffer is a terminal cell grid with scrollback. All mutation goes through
// its lock; the PTY reader and the UI thread both touch it. Every mutation
// batch ends with at most one dirty-range callback naming the absolute rows
// it changed.
type Buffer struct {
	mu sync.Mutex

	cols, rows    int
	screen        [][]scrim.Cell
	scrollback    [][]scrim.Cell
	maxScrollback int

	curX, curY    int
	cursorVisible bool
	attr          scrim.Attr

	scrollOffset  int
	appCursorKeys bool

	dirtyFunc func(start, end int)
	dirty     *scrim.DirtyRange
}

// NewBuffer creates a buffer with the given viewport size. scrollbackSize
// <= 0 selects the default of 10000 lines.
func NewBuffer(cols, rows, scrollbackSize int) *Buffer {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if scrollbackSize <= 0 {
		scrollbackSize = defaultScrollback
	}
	b := &Buffer{
		cols:          cols,
		rows:          rows,
		maxScrollback: scrollbackSize,
		cursorVisible: true,
		attr:          scrim.DefaultAttr,
	}
	b.screen = makeGrid(cols, rows)
	return b
}

func makeGrid(cols, rows int) [][]scrim.Cell {
	grid := make([][]scrim.Cell, rows)
	for i := range grid {
		grid[i] = makeRow(cols)
	}
	return grid
}

func makeRow(cols int) []scrim.Cell {
	row := make([]scrim.Cell, cols)
	for i := range row {
		row[i] = scrim.EmptyCell()
	}
	return row
}

// SetDirtyFunc registers the dirty-range callback. It is invoked after each
// mutation batch, outside the buffer lock, with inclusive absolute rows.
func (b *Buffer) SetDirtyFunc(fn func(start, end int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dirtyFunc = fn
}

// markDirty widens the batch's pending range. Caller holds mu.
func (b *Buffer) markDirty(absStart, absEnd int) {
	r := scrim.DirtyRange{Start: absStart, End: absEnd}
	if b.dirty == nil {
		b.dirty = &r
		return
	}
	if r.Start < b.dirty.Start {
		b.dirty.Start = r.Start
	}
	if r.End > b.dirty.End {
		b.dirty.End = r.End
	}
}

// flushDirty emits and clears the batch range. Caller holds mu; the
// callback runs after unlocking so it may call straight into a scheduler.
func (b *Buffer) flushDirty() {
	d := b.dirty
	fn := b.dirtyFunc
	b.dirty = nil
	b.mu.Unlock()
	if d != nil && fn != nil {
		fn(d.Start, d.End)
	}
}

// absRow converts a viewport row to its absolute index. Caller holds mu.
func (b *Buffer) absRow(y int) int {
	return len(b.scrollback) + y
}

// WriteString writes text at the cursor with the current attribute,
// interpreting LF, CR, TAB, and BS; everything else is taken literally.
// There is no escape parser underneath, so LF starts the next line at
// column 0. Wide runes occupy two cells, the second a rune-0
// continuation. Lines wrap at the right edge; writing past the bottom
// scrolls the top row into scrollback.
func (b *Buffer) WriteString(s string) {
	b.mu.Lock()
	for _, r := range s {
		switch r {
		case '\n':
			b.curX = 0
			b.lineFeed()
		case '\r':
			b.curX = 0
		case '\t':
			b.curX = (b.curX/8 + 1) * 8
			if b.curX >= b.cols {
				b.curX = b.cols - 1
			}
		case '\b':
			if b.curX > 0 {
				b.curX--
			}
		default:
			b.writeRune(r)
		}
	}
	b.flushDirty()
}

// writeRune places one printable rune. Caller holds mu.
func (b *Buffer) writeRune(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return // combining marks are out of scope for this model
	}
	if b.curX+w > b.cols {
		b.curX = 0
		b.lineFeed()
	}
	row := b.screen[b.curY]
	row[b.curX] = scrim.Cell{Rune: r, Attr: b.attr}
	if w == 2 && b.curX+1 < b.cols {
		row[b.curX+1] = scrim.Cell{Attr: b.attr}
	}
	b.markDirty(b.absRow(b.curY), b.absRow(b.curY))
	b.curX += w
}

// lineFeed moves the cursor down, scrolling the top row into scrollback
// when the cursor is already on the bottom row. Caller holds mu.
func (b *Buffer) lineFeed() {
	if b.curY < b.rows-1 {
		b.curY++
		return
	}

	b.scrollback = append(b.scrollback, b.screen[0])
	copy(b.screen, b.screen[1:])
	b.screen[b.rows-1] = makeRow(b.cols)

	if len(b.scrollback) > b.maxScrollback {
		// Trimming shifts every absolute index down one; the whole
		// surface is stale.
		b.scrollback = b.scrollback[1:]
		b.markDirty(0, b.totalRowsLocked()-1)
		return
	}
	// Absolute indices are stable under the scroll: the pushed row keeps
	// its slot and every surviving viewport row lands where its content
	// already lived. Only the fresh bottom row is new.
	b.markDirty(b.totalRowsLocked()-1, b.totalRowsLocked()-1)
}

// SetCell overwrites a single viewport cell.
func (b *Buffer) SetCell(x, y int, r rune) {
	b.mu.Lock()
	if x >= 0 && x < b.cols && y >= 0 && y < b.rows {
		b.screen[y][x] = scrim.Cell{Rune: r, Attr: b.attr}
		b.markDirty(b.absRow(y), b.absRow(y))
	}
	b.flushDirty()
}

// SetAttr sets the attribute applied to subsequent writes.
func (b *Buffer) SetAttr(a scrim.Attr) {
	b.mu.Lock()
	b.attr = a
	b.mu.Unlock()
}

// Attr returns the current write attribute.
func (b *Buffer) Attr() scrim.Attr {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attr
}

// SetCursor moves the cursor, clamped to the viewport.
func (b *Buffer) SetCursor(x, y int) {
	b.mu.Lock()
	b.curX = clamp(x, 0, b.cols-1)
	b.curY = clamp(y, 0, b.rows-1)
	old := b.absRow(b.curY)
	b.markDirty(old, old)
	b.flushDirty()
}

// SetCursorVisible toggles caret display.
func (b *Buffer) SetCursorVisible(visible bool) {
	b.mu.Lock()
	b.cursorVisible = visible
	abs := b.absRow(b.curY)
	b.markDirty(abs, abs)
	b.flushDirty()
}

// EraseScreen blanks the viewport to default-attribute cells and homes
// the cursor. Scrollback is untouched.
func (b *Buffer) EraseScreen() {
	b.mu.Lock()
	for y := range b.screen {
		b.screen[y] = makeRow(b.cols)
	}
	b.curX, b.curY = 0, 0
	b.markDirty(b.absRow(0), b.absRow(b.rows-1))
	b.flushDirty()
}

// SetApplicationCursorKeys sets the DECCKM-equivalent mode flag consulted
// by the key encoder.
func (b *Buffer) SetApplicationCursorKeys(on bool) {
	b.mu.Lock()
	b.appCursorKeys = on
	b.mu.Unlock()
}

// Resize changes the viewport size, preserving what fits. The caller owns
// telling the scheduler: a resize must become a full rebuild, never a
// partial dirty range, so no dirty callback fires here.
func (b *Buffer) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if cols == b.cols && rows == b.rows {
		return
	}

	screen := makeGrid(cols, rows)
	for y := 0; y < rows && y < b.rows; y++ {
		copy(screen[y], b.screen[y])
	}
	for i, row := range b.scrollback {
		if len(row) != cols {
			resized := makeRow(cols)
			copy(resized, row)
			b.scrollback[i] = resized
		}
	}

	b.screen = screen
	b.cols = cols
	b.rows = rows
	b.curX = clamp(b.curX, 0, cols-1)
	b.curY = clamp(b.curY, 0, rows-1)
}

// ScrollView scrolls the view by delta rows (positive = further back into
// scrollback) and returns the clamped offset. The cache is indexed by
// absolute row, so scrolling needs a repaint but never a rebuild.
func (b *Buffer) ScrollView(delta int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scrollOffset = clamp(b.scrollOffset+delta, 0, len(b.scrollback))
	return b.scrollOffset
}

// ScrollToLive snaps the view back to the live viewport.
func (b *Buffer) ScrollToLive() {
	b.mu.Lock()
	b.scrollOffset = 0
	b.mu.Unlock()
}

// MaxScrollOffset returns how far back the view can scroll.
func (b *Buffer) MaxScrollOffset() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.scrollback)
}

func (b *Buffer) totalRowsLocked() int {
	return len(b.scrollback) + b.rows
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
