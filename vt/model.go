package vt

import "github.com/kestrelo/scrim"

// Buffer implements scrim.Model. Readers copy under the lock so a slice
// never escapes mid-mutation.
var _ scrim.Model = (*Buffer)(nil)

// Size returns the viewport dimensions.
func (b *Buffer) Size() (cols, rows int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cols, b.rows
}

// TotalRows returns scrollback plus viewport rows.
func (b *Buffer) TotalRows() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalRowsLocked()
}

// Row returns a copy of the absolute row's cells. Out-of-range rows come
// back blank rather than panicking; the render cache treats a short row as
// an error on its own terms.
func (b *Buffer) Row(abs int) []scrim.Cell {
	b.mu.Lock()
	defer b.mu.Unlock()

	var src []scrim.Cell
	switch {
	case abs < 0 || abs >= b.totalRowsLocked():
		return makeRow(b.cols)
	case abs < len(b.scrollback):
		src = b.scrollback[abs]
	default:
		src = b.screen[abs-len(b.scrollback)]
	}

	row := make([]scrim.Cell, b.cols)
	copy(row, src)
	for i := len(src); i < b.cols; i++ {
		row[i] = scrim.EmptyCell()
	}
	return row
}

// Cursor returns the live cursor position, viewport-relative.
func (b *Buffer) Cursor() (col, row int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.curX, b.curY
}

// CursorVisible reports whether the caret should be drawn.
func (b *Buffer) CursorVisible() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursorVisible
}

// ScrollOffset returns how many rows the view is scrolled back.
func (b *Buffer) ScrollOffset() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scrollOffset
}

// ApplicationCursorKeys reports the DECCKM-equivalent mode flag.
func (b *Buffer) ApplicationCursorKeys() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.appCursorKeys
}
