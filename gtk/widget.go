package scrimgtk

import (
	"sync"

	"github.com/gotk3/gotk3/cairo"
	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/kestrelo/scrim"
	"github.com/mattn/go-runewidth"
)

// Widget draws the terminal view onto a GTK DrawingArea. It implements
// scrim.Painter: the scheduler's callbacks arrive on its timer
// goroutine and are marshaled onto the GTK main loop with glib.IdleAdd.
type Widget struct {
	term *Terminal
	da   *gtk.DrawingArea

	mu sync.Mutex
	// Cell metrics, measured from the font on first draw
	cellW  int
	cellH  int
	ascent int
	// Cursor state as last reported by the scheduler
	cursor        scrim.Rect
	cursorVisible bool
}

func newWidget(term *Terminal) (*Widget, error) {
	da, err := gtk.DrawingAreaNew()
	if err != nil {
		return nil, err
	}

	w := &Widget{term: term, da: da}

	da.SetCanFocus(true)
	da.AddEvents(int(gdk.KEY_PRESS_MASK | gdk.SCROLL_MASK | gdk.BUTTON_PRESS_MASK))

	da.Connect("draw", w.onDraw)
	da.Connect("key-press-event", w.onKeyPress)
	da.Connect("scroll-event", w.onScroll)
	da.Connect("size-allocate", w.onSizeAllocate)
	da.Connect("button-press-event", func(da *gtk.DrawingArea, ev *gdk.Event) bool {
		da.GrabFocus()
		return false
	})

	return w, nil
}

// CellSize reports the pixel size of one character cell
func (w *Widget) CellSize() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cellW == 0 {
		return w.estimatedCellSize()
	}
	return w.cellW, w.cellH
}

// estimatedCellSize approximates metrics before the first draw has
// measured the font. Caller holds w.mu.
func (w *Widget) estimatedCellSize() (int, int) {
	size := w.term.options.FontSize
	return size * 3 / 5, size * 3 / 2
}

// PaintRows invalidates the pixel band covering the given absolute
// rows where they intersect the viewport.
func (w *Widget) PaintRows(start, end int) {
	first, rows := w.viewportStart()
	lo, hi := start, end
	if lo < first {
		lo = first
	}
	if hi > first+rows-1 {
		hi = first + rows - 1
	}
	if lo > hi {
		return
	}

	_, cellH := w.CellSize()
	y := (lo - first) * cellH
	h := (hi - lo + 1) * cellH
	glib.IdleAdd(func() {
		alloc := w.da.GetAllocation()
		w.da.QueueDrawArea(0, y, alloc.GetWidth(), h)
	})
}

// MoveCursor records the cursor cell and invalidates its old and new
// positions.
func (w *Widget) MoveCursor(r scrim.Rect, visible bool) {
	w.mu.Lock()
	old := w.cursor
	w.cursor = r
	w.cursorVisible = visible
	w.mu.Unlock()

	glib.IdleAdd(func() {
		w.da.QueueDrawArea(old.X, old.Y, old.W, old.H)
		w.da.QueueDrawArea(r.X, r.Y, r.W, r.H)
	})
}

// redrawAll invalidates the whole widget. Used after scrollback
// navigation and scheme changes.
func (w *Widget) redrawAll() {
	glib.IdleAdd(func() {
		w.da.QueueDraw()
	})
}

// viewportStart returns the absolute index of the top visible row and
// the viewport height in rows.
func (w *Widget) viewportStart() (first, rows int) {
	_, rows = w.term.buffer.Size()
	first = w.term.buffer.TotalRows() - rows - w.term.buffer.ScrollOffset()
	if first < 0 {
		first = 0
	}
	return first, rows
}

// onDraw paints the visible rows from the render cache
func (w *Widget) onDraw(da *gtk.DrawingArea, cr *cairo.Context) {
	opts := w.term.options
	cr.SelectFontFace(opts.FontFamily, cairo.FONT_SLANT_NORMAL, cairo.FONT_WEIGHT_NORMAL)
	cr.SetFontSize(float64(opts.FontSize))
	w.measureFont(cr)

	w.mu.Lock()
	cellW, cellH, ascent := w.cellW, w.cellH, w.ascent
	cursor, cursorVisible := w.cursor, w.cursorVisible
	w.mu.Unlock()

	scheme := w.term.styles.Scheme()
	alloc := da.GetAllocation()
	setSourceRGB(cr, scheme.Background)
	cr.Rectangle(0, 0, float64(alloc.GetWidth()), float64(alloc.GetHeight()))
	cr.Fill()

	first, rows := w.viewportStart()
	w.term.sched.View(func(c *scrim.RenderCache) {
		for y := 0; y < rows; y++ {
			runs, err := c.Row(first + y)
			if err != nil {
				continue
			}
			for _, run := range runs {
				w.drawRun(cr, run, y, cellW, cellH, ascent)
			}
		}
	})

	if cursorVisible {
		setSourceRGB(cr, scheme.Cursor)
		cr.SetLineWidth(1)
		cr.Rectangle(float64(cursor.X)+0.5, float64(cursor.Y)+0.5,
			float64(cursor.W)-1, float64(cursor.H)-1)
		cr.Stroke()
	}
}

// drawRun paints one style run: a background band, then each rune at
// its cell origin so the grid stays aligned for any font.
func (w *Widget) drawRun(cr *cairo.Context, run scrim.StyleRun, y, cellW, cellH, ascent int) {
	st := w.term.styles.Resolve(run.Attr)
	px := float64(run.Start * cellW)
	py := float64(y * cellH)

	setSourceRGB(cr, st.BG)
	cr.Rectangle(px, py, float64(run.Width()*cellW), float64(cellH))
	cr.Fill()

	setSourceRGB(cr, st.FG)
	col := run.Start
	skip := 0
	for _, ch := range run.Text {
		if skip > 0 && ch == ' ' {
			skip--
			col++
			continue
		}
		skip = 0
		if ch != ' ' {
			cr.MoveTo(float64(col*cellW), py+float64(ascent))
			cr.ShowText(string(ch))
		}
		width := runewidth.RuneWidth(ch)
		if width == 2 {
			skip = 1
		}
		col++
	}

	if st.Underline {
		cr.SetLineWidth(1)
		lineY := py + float64(ascent) + 2
		cr.MoveTo(px, lineY)
		cr.LineTo(px+float64(run.Width()*cellW), lineY)
		cr.Stroke()
	}
	if st.Strikethrough {
		cr.SetLineWidth(1)
		lineY := py + float64(cellH)/2
		cr.MoveTo(px, lineY)
		cr.LineTo(px+float64(run.Width()*cellW), lineY)
		cr.Stroke()
	}
}

// measureFont derives cell metrics from the selected font
func (w *Widget) measureFont(cr *cairo.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cellW != 0 {
		return
	}
	ext := cr.TextExtents("M")
	w.cellW = int(ext.XAdvance + 0.5)
	w.cellH = w.term.options.FontSize * 3 / 2
	w.ascent = w.term.options.FontSize * 11 / 10
	if w.cellW <= 0 {
		w.cellW, w.cellH = w.estimatedCellSize()
	}
}

func setSourceRGB(cr *cairo.Context, c scrim.RGB) {
	cr.SetSourceRGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}

// onSizeAllocate resizes the terminal grid to fill the widget
func (w *Widget) onSizeAllocate(da *gtk.DrawingArea) {
	alloc := da.GetAllocation()
	cellW, cellH := w.CellSize()
	cols := alloc.GetWidth() / cellW
	rows := alloc.GetHeight() / cellH
	if cols < 2 || rows < 2 {
		return
	}
	w.term.Resize(cols, rows)
}

// onScroll maps the mouse wheel to scrollback navigation
func (w *Widget) onScroll(da *gtk.DrawingArea, ev *gdk.Event) bool {
	scroll := gdk.EventScrollNewFromEvent(ev)
	switch scroll.Direction() {
	case gdk.SCROLL_UP:
		w.term.ScrollBy(3)
	case gdk.SCROLL_DOWN:
		w.term.ScrollBy(-3)
	default:
		return false
	}
	return true
}

// onKeyPress translates a GDK key event and forwards it to the child.
// Shifted navigation keys are consumed locally for scrollback.
func (w *Widget) onKeyPress(da *gtk.DrawingArea, ev *gdk.Event) bool {
	key := gdk.EventKeyNewFromEvent(ev)
	keyval := key.KeyVal()
	state := gdk.ModifierType(key.State())

	event := keyvalToEvent(keyval, state)

	if event.Mod&scrim.ModShift != 0 {
		_, rows := w.term.buffer.Size()
		switch event.Key {
		case scrim.KeyPageUp:
			w.term.ScrollBy(rows - 1)
			return true
		case scrim.KeyPageDown:
			w.term.ScrollBy(-(rows - 1))
			return true
		case scrim.KeyHome:
			w.term.ScrollBy(w.term.buffer.MaxScrollOffset())
			return true
		case scrim.KeyEnd:
			w.term.ScrollToBottom()
			return true
		}
	}

	if event.Key == scrim.KeyNone && event.Rune == 0 {
		return false
	}
	if w.term.buffer.ScrollOffset() > 0 {
		w.term.ScrollToBottom()
	}
	w.term.SendKey(event)
	return true
}

// keyvalToEvent maps a GDK keyval and modifier state to a key event
func keyvalToEvent(keyval uint, state gdk.ModifierType) scrim.KeyEvent {
	var ev scrim.KeyEvent
	if state&gdk.SHIFT_MASK != 0 {
		ev.Mod |= scrim.ModShift
	}
	if state&gdk.CONTROL_MASK != 0 {
		ev.Mod |= scrim.ModCtrl
	}
	if state&gdk.MOD1_MASK != 0 {
		ev.Mod |= scrim.ModAlt
	}

	switch keyval {
	case gdk.KEY_Up, gdk.KEY_KP_Up:
		ev.Key = scrim.KeyUp
	case gdk.KEY_Down, gdk.KEY_KP_Down:
		ev.Key = scrim.KeyDown
	case gdk.KEY_Right, gdk.KEY_KP_Right:
		ev.Key = scrim.KeyRight
	case gdk.KEY_Left, gdk.KEY_KP_Left:
		ev.Key = scrim.KeyLeft
	case gdk.KEY_Home:
		ev.Key = scrim.KeyHome
	case gdk.KEY_End:
		ev.Key = scrim.KeyEnd
	case gdk.KEY_Page_Up:
		ev.Key = scrim.KeyPageUp
	case gdk.KEY_Page_Down:
		ev.Key = scrim.KeyPageDown
	case gdk.KEY_Insert:
		ev.Key = scrim.KeyInsert
	case gdk.KEY_Delete:
		ev.Key = scrim.KeyDelete
	case gdk.KEY_Tab:
		ev.Key = scrim.KeyTab
	case gdk.KEY_ISO_Left_Tab:
		ev.Key = scrim.KeyBacktab
	case gdk.KEY_F1:
		ev.Key = scrim.KeyF1
	case gdk.KEY_F2:
		ev.Key = scrim.KeyF2
	case gdk.KEY_F3:
		ev.Key = scrim.KeyF3
	case gdk.KEY_F4:
		ev.Key = scrim.KeyF4
	case gdk.KEY_F5:
		ev.Key = scrim.KeyF5
	case gdk.KEY_F6:
		ev.Key = scrim.KeyF6
	case gdk.KEY_F7:
		ev.Key = scrim.KeyF7
	case gdk.KEY_F8:
		ev.Key = scrim.KeyF8
	case gdk.KEY_F9:
		ev.Key = scrim.KeyF9
	case gdk.KEY_F10:
		ev.Key = scrim.KeyF10
	case gdk.KEY_F11:
		ev.Key = scrim.KeyF11
	case gdk.KEY_F12:
		ev.Key = scrim.KeyF12
	case gdk.KEY_Return, gdk.KEY_KP_Enter:
		ev.Rune = '\r'
	case gdk.KEY_BackSpace:
		ev.Rune = 0x7f
	case gdk.KEY_Escape:
		ev.Rune = 0x1b
	case gdk.KEY_space:
		ev.Rune = ' '
	default:
		if r := gdk.KeyvalToUnicode(keyval); r != 0 {
			ev.Rune = r
		}
	}
	return ev
}
