// Package scrimgtk embeds a scrim terminal view in a GTK 3 application.
// The widget draws style runs with cairo and feeds GDK key events back
// through scrim's key encoder.
package scrimgtk

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/gotk3/gotk3/gtk"
	"github.com/kestrelo/scrim"
	"github.com/kestrelo/scrim/vt"
)

// Options configures terminal creation
type Options struct {
	Cols           int               // Initial width in columns (default: 80)
	Rows           int               // Initial height in rows (default: 24)
	ScrollbackSize int               // Number of scrollback lines (default: 10000)
	Scheme         scrim.ColorScheme // Color scheme (default: DefaultColorScheme())
	Shell          string            // Shell to run (default: $SHELL or /bin/sh)
	WorkingDir     string            // Initial working directory (default: current dir)
	FontFamily     string            // Monospace font family (default: "monospace")
	FontSize       int               // Font size in points (default: 14)
	FlushDelay     time.Duration     // Repaint coalescing window (default: scrim.DefaultFlushDelay)
}

// Terminal is a terminal emulator hosted in a GTK widget
type Terminal struct {
	mu sync.Mutex

	buffer  *vt.Buffer
	cache   *scrim.RenderCache
	sched   *scrim.Scheduler
	styles  *scrim.StyleCache
	widget  *Widget
	pty     scrim.PTY
	cmd     *exec.Cmd
	options Options

	running bool
	done    chan struct{}

	onExit func(int)
}

// New creates a terminal and its GTK widget. Must be called on the GTK
// main thread after gtk.Init.
func New(opts Options) (*Terminal, error) {
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
		opts.FontSize = 14
	}
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = scrim.DefaultFlushDelay
	}

	buffer := vt.NewBuffer(opts.Cols, opts.Rows, opts.ScrollbackSize)
	t := &Terminal{
		buffer:  buffer,
		cache:   scrim.NewRenderCache(buffer),
		styles:  scrim.NewStyleCache(opts.Scheme),
		options: opts,
		done:    make(chan struct{}),
	}

	widget, err := newWidget(t)
	if err != nil {
		return nil, err
	}
	t.widget = widget

	t.sched = scrim.NewScheduler(buffer, t.cache, widget, opts.FlushDelay)
	buffer.SetDirtyFunc(t.sched.NotifyDirty)

	if err := t.sched.NotifyResize(opts.Cols, opts.Rows); err != nil {
		return nil, err
	}

	return t, nil
}

// Widget returns the drawing area to pack into a container
func (t *Terminal) Widget() *gtk.DrawingArea {
	return t.widget.da
}

// RunShell starts the configured shell in the terminal
func (t *Terminal) RunShell() error {
	return t.RunCommand(t.options.Shell)
}

// RunCommand runs a command in the terminal
func (t *Terminal) RunCommand(name string, args ...string) error {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return fmt.Errorf("command already running")
	}
	t.done = make(chan struct{})
	cols, rows := t.buffer.Size()
	t.mu.Unlock()

	cmd := exec.Command(name, args...)
	cmd.Dir = t.options.WorkingDir
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)

	pty, err := scrim.StartPTY(cmd, cols, rows)
	if err != nil {
		return fmt.Errorf("failed to start PTY: %w", err)
	}

	t.mu.Lock()
	t.pty = pty
	t.cmd = cmd
	t.running = true
	t.mu.Unlock()

	go t.readLoop(pty)

	go func() {
		exitCode := 0
		if err := cmd.Wait(); err != nil {
			if exitError, ok := err.(*exec.ExitError); ok {
				exitCode = exitError.ExitCode()
			}
		}
		t.mu.Lock()
		t.running = false
		onExit := t.onExit
		t.mu.Unlock()

		if onExit != nil {
			onExit(exitCode)
		}
		close(t.done)
	}()

	return nil
}

// readLoop feeds child output into the buffer
func (t *Terminal) readLoop(pty scrim.PTY) {
	buf := make([]byte, 4096)
	for {
		n, err := pty.Read(buf)
		if n > 0 {
			t.buffer.WriteString(string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}

// Feed writes data directly to the terminal display, bypassing the PTY
func (t *Terminal) Feed(data []byte) {
	t.buffer.WriteString(string(data))
}

// Write sends input to the child process
func (t *Terminal) Write(data []byte) (int, error) {
	t.mu.Lock()
	pty := t.pty
	t.mu.Unlock()
	if pty == nil {
		return 0, nil
	}
	return pty.Write(data)
}

// SendKey encodes a key event for the child and writes it to the PTY
func (t *Terminal) SendKey(ev scrim.KeyEvent) error {
	seq := scrim.EncodeKey(ev, t.buffer.ApplicationCursorKeys())
	if seq == nil {
		return nil
	}
	_, err := t.Write(seq)
	return err
}

// Resize resizes the view and the child PTY together
func (t *Terminal) Resize(cols, rows int) error {
	curCols, curRows := t.buffer.Size()
	if cols == curCols && rows == curRows {
		return nil
	}
	t.buffer.Resize(cols, rows)

	t.mu.Lock()
	pty := t.pty
	t.mu.Unlock()
	if pty != nil {
		if err := pty.Resize(cols, rows); err != nil {
			return err
		}
	}
	return t.sched.NotifyResize(cols, rows)
}

// Buffer returns the underlying cell-grid buffer
func (t *Terminal) Buffer() *vt.Buffer {
	return t.buffer
}

// ScrollBy scrolls the view by delta lines (positive = into scrollback)
func (t *Terminal) ScrollBy(delta int) {
	t.buffer.ScrollView(delta)
	t.widget.redrawAll()
}

// ScrollToBottom returns the view to the live screen
func (t *Terminal) ScrollToBottom() {
	t.buffer.ScrollToLive()
	t.widget.redrawAll()
}

// SetOnExit sets a callback for when the child process exits
func (t *Terminal) SetOnExit(fn func(int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExit = fn
}

// SetColorScheme swaps the color scheme and repaints
func (t *Terminal) SetColorScheme(scheme scrim.ColorScheme) {
	t.styles.SetScheme(scheme)
	t.mu.Lock()
	t.options.Scheme = scheme
	t.mu.Unlock()
	t.widget.redrawAll()
}

// IsRunning reports whether a child command is running
func (t *Terminal) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Wait blocks until the child process exits
func (t *Terminal) Wait() {
	<-t.done
}

// Stop kills the child process and releases the PTY
func (t *Terminal) Stop() error {
	t.sched.Stop()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cmd != nil && t.cmd.Process != nil {
		t.cmd.Process.Kill()
	}
	if t.pty != nil {
		t.pty.Close()
		t.pty = nil
	}
	return nil
}

// Close is an alias for Stop
func (t *Terminal) Close() error {
	return t.Stop()
}
