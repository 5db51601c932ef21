package scrim

import "sync"

// stubModel is a scripted Model for cache and scheduler tests.
type stubModel struct {
	cols, rows    int
	grid          [][]Cell // totalRows x cols
	curX, curY    int
	cursorHidden  bool
	scrollOffset  int
	appCursorKeys bool
}

func newStubModel(cols, rows, totalRows int) *stubModel {
	m := &stubModel{cols: cols, rows: rows}
	m.grid = make([][]Cell, totalRows)
	for i := range m.grid {
		m.grid[i] = make([]Cell, cols)
		for j := range m.grid[i] {
			m.grid[i][j] = EmptyCell()
		}
	}
	return m
}

func (m *stubModel) setText(row int, text string, attr Attr) {
	for i, r := range []rune(text) {
		m.grid[row][i] = Cell{Rune: r, Attr: attr}
	}
}

func (m *stubModel) Size() (int, int)            { return m.cols, m.rows }
func (m *stubModel) TotalRows() int              { return len(m.grid) }
func (m *stubModel) Row(abs int) []Cell          { return m.grid[abs] }
func (m *stubModel) Cursor() (int, int)          { return m.curX, m.curY }
func (m *stubModel) CursorVisible() bool         { return !m.cursorHidden }
func (m *stubModel) ScrollOffset() int           { return m.scrollOffset }
func (m *stubModel) ApplicationCursorKeys() bool { return m.appCursorKeys }

// recordingPainter captures scheduler output for assertions.
type recordingPainter struct {
	mu     sync.Mutex
	paints []DirtyRange
	rects  []Rect
	shown  []bool
}

func (p *recordingPainter) CellSize() (int, int) { return 1, 1 }

func (p *recordingPainter) PaintRows(start, end int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paints = append(p.paints, DirtyRange{Start: start, End: end})
}

func (p *recordingPainter) MoveCursor(r Rect, visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rects = append(p.rects, r)
	p.shown = append(p.shown, visible)
}

func (p *recordingPainter) paintCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.paints)
}

func (p *recordingPainter) lastPaint() (DirtyRange, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.paints) == 0 {
		return DirtyRange{}, false
	}
	return p.paints[len(p.paints)-1], true
}
