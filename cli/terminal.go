package cli

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kestrelo/scrim"
	"github.com/kestrelo/scrim/vt"
	"golang.org/x/term"
)

// Options configures terminal creation
type Options struct {
	Cols           int               // Terminal width in columns (default: 80)
	Rows           int               // Terminal height in rows (default: 24)
	ScrollbackSize int               // Number of scrollback lines (default: 10000)
	Scheme         scrim.ColorScheme // Color scheme (default: DefaultColorScheme())
	Shell          string            // Shell to run (default: $SHELL or /bin/sh)
	WorkingDir     string            // Initial working directory (default: current dir)
	FlushDelay     time.Duration     // Repaint coalescing window (default: scrim.DefaultFlushDelay)

	// If true, the terminal sizes itself to fill the host terminal
	AutoSize bool
}

// Terminal is a complete terminal running within a CLI terminal
type Terminal struct {
	mu sync.Mutex

	buffer  *vt.Buffer
	cache   *scrim.RenderCache
	sched   *scrim.Scheduler
	styles  *scrim.StyleCache
	pty     scrim.PTY
	cmd     *exec.Cmd
	options Options

	renderer *Renderer
	input    *InputHandler

	running bool
	done    chan struct{}
	stop    chan struct{}

	// Original terminal state for restoration
	oldState *term.State

	hostCols int
	hostRows int

	onExit   func(int)            // Called when the child process exits
	onResize func(cols, rows int) // Called after the view is resized
}

// New creates a new CLI terminal
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
	if opts.FlushDelay <= 0 {
		opts.FlushDelay = scrim.DefaultFlushDelay
	}

	hostCols, hostRows := hostTerminalSize()
	if opts.AutoSize {
		opts.Cols = hostCols
		opts.Rows = hostRows
		if opts.Cols < 20 {
			opts.Cols = 20
		}
		if opts.Rows < 5 {
			opts.Rows = 5
		}
	}

	buffer := vt.NewBuffer(opts.Cols, opts.Rows, opts.ScrollbackSize)
	t := &Terminal{
		buffer:   buffer,
		cache:    scrim.NewRenderCache(buffer),
		styles:   scrim.NewStyleCache(opts.Scheme),
		options:  opts,
		done:     make(chan struct{}),
		stop:     make(chan struct{}),
		hostCols: hostCols,
		hostRows: hostRows,
	}

	t.renderer = NewRenderer(t)
	t.sched = scrim.NewScheduler(buffer, t.cache, t.renderer, opts.FlushDelay)
	t.input = NewInputHandler(t)

	// Buffer mutations flow through the scheduler so repaints coalesce.
	buffer.SetDirtyFunc(t.sched.NotifyDirty)

	return t, nil
}

// hostTerminalSize returns the current size of the host terminal
func hostTerminalSize() (cols, rows int) {
	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80, 24
	}
	return cols, rows
}

// Start enters raw mode, builds the first frame, and starts the input loop
func (t *Terminal) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	t.oldState = oldState

	// Alternate screen, hidden cursor, clear
	fmt.Print("\033[?1049h\033[?25l\033[2J\033[H")

	cols, rows := t.buffer.Size()
	if err := t.sched.NotifyResize(cols, rows); err != nil {
		return err
	}

	go t.handleSIGWINCH()
	go t.input.InputLoop()

	return nil
}

// handleSIGWINCH listens for host terminal resize signals
func (t *Terminal) handleSIGWINCH() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGWINCH)
	defer signal.Stop(sigChan)

	for {
		select {
		case <-sigChan:
			t.handleHostResize()
		case <-t.stop:
			return
		}
	}
}

// handleHostResize tracks the host terminal size when auto-sizing
func (t *Terminal) handleHostResize() {
	t.mu.Lock()
	newCols, newRows := hostTerminalSize()
	if newCols == t.hostCols && newRows == t.hostRows {
		t.mu.Unlock()
		return
	}
	t.hostCols = newCols
	t.hostRows = newRows
	autoSize := t.options.AutoSize
	t.mu.Unlock()

	if !autoSize {
		return
	}
	if newCols < 20 {
		newCols = 20
	}
	if newRows < 5 {
		newRows = 5
	}
	t.Resize(newCols, newRows)
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

// Size returns the terminal size in columns and rows
func (t *Terminal) Size() (cols, rows int) {
	return t.buffer.Size()
}

// Resize resizes the view and the child PTY together
func (t *Terminal) Resize(cols, rows int) error {
	t.buffer.Resize(cols, rows)

	t.mu.Lock()
	pty := t.pty
	onResize := t.onResize
	t.options.Cols = cols
	t.options.Rows = rows
	t.mu.Unlock()

	if pty != nil {
		if err := pty.Resize(cols, rows); err != nil {
			return err
		}
	}

	fmt.Print("\033[2J")
	if err := t.sched.NotifyResize(cols, rows); err != nil {
		return err
	}
	if onResize != nil {
		onResize(cols, rows)
	}
	return nil
}

// Buffer returns the underlying cell-grid buffer
func (t *Terminal) Buffer() *vt.Buffer {
	return t.buffer
}

// ScrollBy scrolls the view by delta lines (positive = into scrollback)
// and repaints the whole viewport.
func (t *Terminal) ScrollBy(delta int) {
	t.buffer.ScrollView(delta)
	t.renderer.RepaintView()
}

// ScrollToTop jumps to the oldest scrollback line
func (t *Terminal) ScrollToTop() {
	t.ScrollBy(t.buffer.MaxScrollOffset())
}

// ScrollToBottom returns the view to the live screen
func (t *Terminal) ScrollToBottom() {
	t.buffer.ScrollToLive()
	t.renderer.RepaintView()
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

// SetOnExit sets a callback for when the child process exits
func (t *Terminal) SetOnExit(fn func(int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onExit = fn
}

// SetOnResize sets a callback for resize events
func (t *Terminal) SetOnResize(fn func(cols, rows int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onResize = fn
}

// SetColorScheme swaps the color scheme and repaints
func (t *Terminal) SetColorScheme(scheme scrim.ColorScheme) {
	t.renderer.setScheme(scheme)
	t.mu.Lock()
	t.options.Scheme = scheme
	t.mu.Unlock()
	t.renderer.RepaintView()
}

// Stop stops the terminal and restores the host terminal state
func (t *Terminal) Stop() error {
	select {
	case <-t.stop:
		return nil
	default:
		close(t.stop)
	}

	t.sched.Stop()

	t.mu.Lock()
	if t.cmd != nil && t.cmd.Process != nil {
		t.cmd.Process.Kill()
	}
	if t.pty != nil {
		t.pty.Close()
	}
	oldState := t.oldState
	t.mu.Unlock()

	if oldState != nil {
		fmt.Print("\033[0m\033[?25h\033[?1049l")
		term.Restore(int(os.Stdin.Fd()), oldState)
	}

	return nil
}

// Close is an alias for Stop
func (t *Terminal) Close() error {
	return t.Stop()
}
