// Package scrimqt embeds a scrim terminal view in a Qt application
// via miqt. The widget paints style runs with QPainter and feeds Qt
// key events back through scrim's key encoder.
package scrimqt

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/kestrelo/scrim"
	"github.com/kestrelo/scrim/vt"
	"github.com/mappu/miqt/qt"
)

// Options configures widget creation
type Options struct {
	Cols           int               // Initial width in columns (default: 80)
	Rows           int               // Initial height in rows (default: 24)
	ScrollbackSize int               // Number of scrollback lines (default: 10000)
	Scheme         scrim.ColorScheme // Color scheme (default: DefaultColorScheme())
	Shell          string            // Shell to run (default: $SHELL or /bin/sh)
	WorkingDir     string            // Initial working directory (default: current dir)
	FontFamily     string            // Monospace font family (default: "monospace")
	FontSize       int               // Font size in points (default: 12)
	FlushDelay     time.Duration     // Repaint coalescing window (default: scrim.DefaultFlushDelay)
}

// Widget is a Qt terminal emulator widget
type Widget struct {
	mu sync.Mutex

	widget  *qt.QWidget
	buffer  *vt.Buffer
	cache   *scrim.RenderCache
	sched   *scrim.Scheduler
	styles  *scrim.StyleCache
	pty     scrim.PTY
	cmd     *exec.Cmd
	options Options

	// Qt objects must only be touched on the main thread. The
	// scheduler's painter callbacks set this flag; a timer on the
	// main thread turns it into widget.Update calls.
	updateTimer   *qt.QTimer
	updatePending bool

	cellW  int
	cellH  int
	ascent int

	cursor        scrim.Rect
	cursorVisible bool

	running bool
	done    chan struct{}

	onExit func(int)
}

// New creates the terminal widget. Must be called on the Qt main
// thread after the QApplication exists.
func New(opts Options) (*Widget, error) {
	if opts.Cols <= 0 {
		opts.Cols = 80
	}
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	if opts.ScrollbackSize <= 0 {
		opts.ScrollbackSize = 10000
	}
	if opts.Shell == "" {
		opts.Shell = os.Getenv("SHELL")
		if opts.Shell == "" {
			opts.Shell = "/bin/sh"
		}
	}
	if opts.WorkingDir == "" {
		opts.WorkingDir, _ = os.Getwd()
	}
	if opts.Scheme.Palette == ([16]scrim.RGB{}) {
		opts.Scheme = scrim.DefaultColorScheme()
	}
	if opts.FontFamily == "" {
		opts.FontFamily = "monospace"
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 12
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = scrim.DefaultFlushDelay
	}

	buffer := vt.NewBuffer(opts.Cols, opts.Rows, opts.ScrollbackSize)
	w := &Widget{
		widget:  qt.NewQWidget2(),
		buffer:  buffer,
		cache:   scrim.NewRenderCache(buffer),
		styles:  scrim.NewStyleCache(opts.Scheme),
		options: opts,
		done:    make(chan struct{}),
	}

	w.measureFont()

	w.widget.SetFocusPolicy(qt.StrongFocus)
	w.widget.SetMinimumSize2(w.cellW*20, w.cellH*5)

	w.widget.OnPaintEvent(func(super func(event *qt.QPaintEvent), event *qt.QPaintEvent) {
		w.paintEvent()
	})
	w.widget.OnKeyPressEvent(func(super func(event *qt.QKeyEvent), event *qt.QKeyEvent) {
		w.keyPressEvent(event)
	})
	w.widget.OnWheelEvent(func(super func(event *qt.QWheelEvent), event *qt.QWheelEvent) {
		w.wheelEvent(event)
	})
	w.widget.OnResizeEvent(func(super func(event *qt.QResizeEvent), event *qt.QResizeEvent) {
		super(event)
		w.resizeToWidget()
	})

	w.updateTimer = qt.NewQTimer2(w.widget.QObject)
	w.updateTimer.OnTimeout(func() {
		w.mu.Lock()
		pending := w.updatePending
		w.updatePending = false
		w.mu.Unlock()
		if pending {
			w.widget.Update()
		}
	})
	w.updateTimer.Start(16)

	w.sched = scrim.NewScheduler(buffer, w.cache, w, opts.FlushDelay)
	buffer.SetDirtyFunc(w.sched.NotifyDirty)

	if err := w.sched.NotifyResize(opts.Cols, opts.Rows); err != nil {
		return nil, err
	}

	return w, nil
}

// QWidget returns the underlying widget to place in a layout
func (w *Widget) QWidget() *qt.QWidget {
	return w.widget
}

// measureFont derives cell metrics from the configured font
func (w *Widget) measureFont() {
	font := qt.NewQFont6(w.options.FontFamily, w.options.FontSize)
	font.SetFixedPitch(true)
	metrics := qt.NewQFontMetrics(font)
	w.cellW = metrics.HorizontalAdvance("M")
	w.cellH = metrics.Height()
	w.ascent = metrics.Ascent()
}

// CellSize reports the pixel size of one character cell
func (w *Widget) CellSize() (int, int) {
	return w.cellW, w.cellH
}

// PaintRows requests a repaint. Called from the scheduler goroutine,
// so it only flags the update for the main-thread timer.
func (w *Widget) PaintRows(start, end int) {
	w.mu.Lock()
	w.updatePending = true
	w.mu.Unlock()
}

// MoveCursor records the cursor cell and requests a repaint
func (w *Widget) MoveCursor(r scrim.Rect, visible bool) {
	w.mu.Lock()
	w.cursor = r
	w.cursorVisible = visible
	w.updatePending = true
	w.mu.Unlock()
}

// requestUpdate flags a repaint from any goroutine
func (w *Widget) requestUpdate() {
	w.mu.Lock()
	w.updatePending = true
	w.mu.Unlock()
}

// viewportStart returns the absolute index of the top visible row and
// the viewport height in rows.
func (w *Widget) viewportStart() (first, rows int) {
	_, rows = w.buffer.Size()
	first = w.buffer.TotalRows() - rows - w.buffer.ScrollOffset()
	if first < 0 {
		first = 0
	}
	return first, rows
}

// paintEvent repaints the visible rows from the render cache
func (w *Widget) paintEvent() {
	painter := qt.NewQPainter2(w.widget.QPaintDevice)
	defer painter.End()

	scheme := w.styles.Scheme()
	bg := qt.NewQColor3(int(scheme.Background.R), int(scheme.Background.G), int(scheme.Background.B))
	painter.FillRect5(0, 0, w.widget.Width(), w.widget.Height(), bg)

	font := qt.NewQFont6(w.options.FontFamily, w.options.FontSize)
	font.SetFixedPitch(true)
	painter.SetFont(font)

	first, rows := w.viewportStart()
	w.sched.View(func(c *scrim.RenderCache) {
		for y := 0; y < rows; y++ {
			runs, err := c.Row(first + y)
			if err != nil {
				continue
			}
			for _, run := range runs {
				w.drawRun(painter, run, y)
			}
		}
	})

	w.mu.Lock()
	cursor, cursorVisible := w.cursor, w.cursorVisible
	w.mu.Unlock()
	if cursorVisible {
		cc := qt.NewQColor3(int(scheme.Cursor.R), int(scheme.Cursor.G), int(scheme.Cursor.B))
		painter.FillRect5(cursor.X, cursor.Y+cursor.H-2, cursor.W, 2, cc)
	}
}

// drawRun paints one style run: a background band, then the text
func (w *Widget) drawRun(painter *qt.QPainter, run scrim.StyleRun, y int) {
	st := w.styles.Resolve(run.Attr)
	px := run.Start * w.cellW
	py := y * w.cellH

	bg := qt.NewQColor3(int(st.BG.R), int(st.BG.G), int(st.BG.B))
	painter.FillRect5(px, py, run.Width()*w.cellW, w.cellH, bg)

	fg := qt.NewQColor3(int(st.FG.R), int(st.FG.G), int(st.FG.B))
	pen := qt.NewQPen3(fg)
	painter.SetPenWithPen(pen)
	painter.DrawText3(px, py+w.ascent, run.Text)

	if st.Underline {
		lineY := py + w.ascent + 2
		painter.DrawLine3(qt.NewQPoint2(px, lineY), qt.NewQPoint2(px+run.Width()*w.cellW, lineY))
	}
	if st.Strikethrough {
		lineY := py + w.cellH/2
		painter.DrawLine3(qt.NewQPoint2(px, lineY), qt.NewQPoint2(px+run.Width()*w.cellW, lineY))
	}
}

// resizeToWidget resizes the terminal grid to fill the widget
func (w *Widget) resizeToWidget() {
	cols := w.widget.Width() / w.cellW
	rows := w.widget.Height() / w.cellH
	if cols < 2 || rows < 2 {
		return
	}
	w.Resize(cols, rows)
}

// wheelEvent maps the mouse wheel to scrollback navigation
func (w *Widget) wheelEvent(event *qt.QWheelEvent) {
	delta := event.AngleDelta().Y()
	if delta > 0 {
		w.ScrollBy(3)
	} else if delta < 0 {
		w.ScrollBy(-3)
	}
}

// keyPressEvent translates a Qt key event and forwards it to the
// child. Shifted navigation keys are consumed locally for scrollback.
func (w *Widget) keyPressEvent(event *qt.QKeyEvent) {
	event.Accept()
	ev := qtKeyToEvent(event)

	if ev.Mod&scrim.ModShift != 0 {
		_, rows := w.buffer.Size()
		switch ev.Key {
		case scrim.KeyPageUp:
			w.ScrollBy(rows - 1)
			return
		case scrim.KeyPageDown:
			w.ScrollBy(-(rows - 1))
			return
		case scrim.KeyHome:
			w.ScrollBy(w.buffer.MaxScrollOffset())
			return
		case scrim.KeyEnd:
			w.ScrollToBottom()
			return
		}
	}

	if ev.Key == scrim.KeyNone && ev.Rune == 0 {
		return
	}
	if w.buffer.ScrollOffset() > 0 {
		w.ScrollToBottom()
	}
	w.SendKey(ev)
}

// qtKeyToEvent maps a Qt key event to a scrim key event
func qtKeyToEvent(event *qt.QKeyEvent) scrim.KeyEvent {
	var ev scrim.KeyEvent
	mods := event.Modifiers()
	if mods&qt.ShiftModifier != 0 {
		ev.Mod |= scrim.ModShift
	}
	if mods&qt.ControlModifier != 0 {
		ev.Mod |= scrim.ModCtrl
	}
	if mods&qt.AltModifier != 0 {
		ev.Mod |= scrim.ModAlt
	}

	switch qt.Key(event.Key()) {
	case qt.Key_Up:
		ev.Key = scrim.KeyUp
	case qt.Key_Down:
		ev.Key = scrim.KeyDown
	case qt.Key_Right:
		ev.Key = scrim.KeyRight
	case qt.Key_Left:
		ev.Key = scrim.KeyLeft
	case qt.Key_Home:
		ev.Key = scrim.KeyHome
	case qt.Key_End:
		ev.Key = scrim.KeyEnd
	case qt.Key_PageUp:
		ev.Key = scrim.KeyPageUp
	case qt.Key_PageDown:
		ev.Key = scrim.KeyPageDown
	case qt.Key_Insert:
		ev.Key = scrim.KeyInsert
	case qt.Key_Delete:
		ev.Key = scrim.KeyDelete
	case qt.Key_Tab:
		ev.Key = scrim.KeyTab
	case qt.Key_Backtab:
		ev.Key = scrim.KeyBacktab
	case qt.Key_F1:
		ev.Key = scrim.KeyF1
	case qt.Key_F2:
		ev.Key = scrim.KeyF2
	case qt.Key_F3:
		ev.Key = scrim.KeyF3
	case qt.Key_F4:
		ev.Key = scrim.KeyF4
	case qt.Key_F5:
		ev.Key = scrim.KeyF5
	case qt.Key_F6:
		ev.Key = scrim.KeyF6
	case qt.Key_F7:
		ev.Key = scrim.KeyF7
	case qt.Key_F8:
		ev.Key = scrim.KeyF8
	case qt.Key_F9:
		ev.Key = scrim.KeyF9
	case qt.Key_F10:
		ev.Key = scrim.KeyF10
	case qt.Key_F11:
		ev.Key = scrim.KeyF11
	case qt.Key_F12:
		ev.Key = scrim.KeyF12
	case qt.Key_Return, qt.Key_Enter:
		ev.Rune = '\r'
	case qt.Key_Backspace:
		ev.Rune = 0x7f
	case qt.Key_Escape:
		ev.Rune = 0x1b
	default:
		text := event.Text()
		for _, r := range text {
			ev.Rune = r
			break
		}
	}
	return ev
}

// RunShell starts the configured shell in the terminal
func (w *Widget) RunShell() error {
	return w.RunCommand(w.options.Shell)
}

// RunCommand runs a command in the terminal
func (w *Widget) RunCommand(name string, args ...string) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("command already running")
	}
	w.done = make(chan struct{})
	w.mu.Unlock()

	cols, rows := w.buffer.Size()

	cmd := exec.Command(name, args...)
	cmd.Dir = w.options.WorkingDir
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)

	pty, err := scrim.StartPTY(cmd, cols, rows)
	if err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	w.mu.Lock()
	w.pty = pty
	w.cmd = cmd
	w.running = true
	w.mu.Unlock()

	go w.readLoop(pty)

	go func() {
		exitCode := 0
		if err := cmd.Wait(); err != nil {
			if exitError, ok := err.(*exec.ExitError); ok {
				exitCode = exitError.ExitCode()
			}
		}
		w.mu.Lock()
		w.running = false
		onExit := w.onExit
		w.mu.Unlock()

		if onExit != nil {
			onExit(exitCode)
		}
		close(w.done)
	}()

	return nil
}

// readLoop feeds child output into the buffer
func (w *Widget) readLoop(pty scrim.PTY) {
	buf := make([]byte, 4096)
	for {
		n, err := pty.Read(buf)
		if n > 0 {
			w.buffer.WriteString(string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}

// Feed writes data directly to the terminal display, bypassing the PTY
func (w *Widget) Feed(data []byte) {
	w.buffer.WriteString(string(data))
}

// Write sends input to the child process
func (w *Widget) Write(data []byte) (int, error) {
	w.mu.Lock()
	pty := w.pty
	w.mu.Unlock()
	if pty == nil {
		return 0, nil
	}
	return pty.Write(data)
}

// SendKey encodes a key event for the child and writes it to the PTY
func (w *Widget) SendKey(ev scrim.KeyEvent) error {
	seq := scrim.EncodeKey(ev, w.buffer.ApplicationCursorKeys())
	if seq == nil {
		return nil
	}
	_, err := w.Write(seq)
	return err
}

// Resize resizes the view and the child PTY together
func (w *Widget) Resize(cols, rows int) error {
	curCols, curRows := w.buffer.Size()
	if cols == curCols && rows == curRows {
		return nil
	}
	w.buffer.Resize(cols, rows)

	w.mu.Lock()
	pty := w.pty
	w.mu.Unlock()
	if pty != nil {
		if err := pty.Resize(cols, rows); err != nil {
			return err
		}
	}
	return w.sched.NotifyResize(cols, rows)
}

// Buffer returns the underlying cell-grid buffer
func (w *Widget) Buffer() *vt.Buffer {
	return w.buffer
}

// ScrollBy scrolls the view by delta lines (positive = into scrollback)
func (w *Widget) ScrollBy(delta int) {
	w.buffer.ScrollView(delta)
	w.requestUpdate()
}

// ScrollToBottom returns the view to the live screen
func (w *Widget) ScrollToBottom() {
	w.buffer.ScrollToLive()
	w.requestUpdate()
}

// SetColorScheme swaps the color scheme and repaints
func (w *Widget) SetColorScheme(scheme scrim.ColorScheme) {
	w.styles.SetScheme(scheme)
	w.requestUpdate()
}

// SetOnExit sets a callback for when the child process exits
func (w *Widget) SetOnExit(fn func(int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onExit = fn
}

// IsRunning reports whether a child command is running
func (w *Widget) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Wait blocks until the child process exits
func (w *Widget) Wait() {
	<-w.done
}

// Stop kills the child process and releases the PTY
func (w *Widget) Stop() error {
	w.sched.Stop()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cmd != nil && w.cmd.Process != nil {
		w.cmd.Process.Kill()
	}
	if w.pty != nil {
		w.pty.Close()
		w.pty = nil
	}
	return nil
}
