package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/kestrelo/scrim"
	"github.com/mattn/go-runewidth"
)

// Renderer draws the cached style runs onto the host terminal with
// cursor-addressed ANSI output. It implements scrim.Painter, so the
// scheduler hands it exactly the row ranges that changed.
type Renderer struct {
	term *Terminal

	mu  sync.Mutex
	out *bufio.Writer

	// Last SGR emitted, to skip redundant attribute switches
	lastAttr    scrim.Attr
	haveLastSGR bool
}

// NewRenderer creates a renderer writing to stdout
func NewRenderer(term *Terminal) *Renderer {
	return &Renderer{
		term: term,
		out:  bufio.NewWriter(os.Stdout),
	}
}

// CellSize reports 1x1: the host terminal addresses cells, not pixels.
func (r *Renderer) CellSize() (w, h int) {
	return 1, 1
}

// PaintRows repaints the absolute row range [start, end] where it
// intersects the visible viewport.
func (r *Renderer) PaintRows(start, end int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	first, rows := r.viewportStart()
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

	r.term.sched.View(func(c *scrim.RenderCache) {
		for abs := lo; abs <= hi; abs++ {
			runs, err := c.Row(abs)
			if err != nil {
				continue
			}
			r.paintRow(abs-first, runs)
		}
	})
	r.out.WriteString("\033[0m")
	r.haveLastSGR = false
	r.out.Flush()
}

// MoveCursor places or hides the host cursor at the given cell rect
func (r *Renderer) MoveCursor(rect scrim.Rect, visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !visible {
		r.out.WriteString("\033[?25l")
		r.out.Flush()
		return
	}
	fmt.Fprintf(r.out, "\033[%d;%dH\033[?25h", rect.Y+1, rect.X+1)
	r.out.Flush()
}

// RepaintView repaints every visible row and restates the cursor.
// Used after scrollback navigation and scheme changes, which move the
// viewport without dirtying any buffer row.
func (r *Renderer) RepaintView() {
	first, rows := r.viewportStart()
	r.PaintRows(first, first+rows-1)

	col, row := r.term.buffer.Cursor()
	offset := r.term.buffer.ScrollOffset()
	visible := r.term.buffer.CursorVisible() && offset == 0
	r.MoveCursor(scrim.LocateCursor(col, row, offset, 1, 1), visible)
}

// setScheme swaps the style cache's scheme under the render lock, since
// the scheduler goroutine resolves styles during paints.
func (r *Renderer) setScheme(scheme scrim.ColorScheme) {
	r.mu.Lock()
	r.term.styles.SetScheme(scheme)
	r.haveLastSGR = false
	r.mu.Unlock()
}

// viewportStart returns the absolute index of the top visible row and
// the viewport height.
func (r *Renderer) viewportStart() (first, rows int) {
	_, rows = r.term.buffer.Size()
	first = r.term.buffer.TotalRows() - rows - r.term.buffer.ScrollOffset()
	if first < 0 {
		first = 0
	}
	return first, rows
}

// paintRow writes one screen row from its style runs
func (r *Renderer) paintRow(y int, runs []scrim.StyleRun) {
	for _, run := range runs {
		fmt.Fprintf(r.out, "\033[%d;%dH", y+1, run.Start+1)
		r.applyAttr(run.Attr)
		r.writeRunText(run.Text)
	}
}

// applyAttr emits the SGR sequence for an attribute, skipping the
// write when the attribute is unchanged from the previous run.
func (r *Renderer) applyAttr(attr scrim.Attr) {
	if r.haveLastSGR && attr == r.lastAttr {
		return
	}
	st := r.term.styles.Resolve(attr)

	var sgr strings.Builder
	sgr.WriteString("\033[0")
	if st.Bold {
		sgr.WriteString(";1")
	}
	if st.Italic {
		sgr.WriteString(";3")
	}
	if st.Underline {
		sgr.WriteString(";4")
	}
	if st.Blink {
		sgr.WriteString(";5")
	}
	if st.Strikethrough {
		sgr.WriteString(";9")
	}
	sgr.WriteString(";38;2;")
	writeRGB(&sgr, st.FG)
	sgr.WriteString(";48;2;")
	writeRGB(&sgr, st.BG)
	sgr.WriteByte('m')

	r.out.WriteString(sgr.String())
	r.lastAttr = attr
	r.haveLastSGR = true
}

func writeRGB(b *strings.Builder, c scrim.RGB) {
	b.WriteString(strconv.Itoa(int(c.R)))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(int(c.G)))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(int(c.B)))
}

// writeRunText writes run text, dropping the padding cell that follows
// each double-width rune so the host terminal's own width handling
// keeps columns aligned.
func (r *Renderer) writeRunText(text string) {
	skip := 0
	for _, ch := range text {
		if skip > 0 && ch == ' ' {
			skip--
			continue
		}
		skip = 0
		r.out.WriteRune(ch)
		if runewidth.RuneWidth(ch) == 2 {
			skip = 1
		}
	}
}
