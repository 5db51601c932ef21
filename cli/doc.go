// Package cli runs a scrim terminal view inside an actual CLI terminal.
//
// It puts the host terminal in raw mode, draws the view with
// cursor-addressed ANSI output, and feeds host keystrokes back through
// scrim's key encoder so the child process always sees canonical
// sequences regardless of what the host terminal emits.
//
// # Basic Usage
//
//	term, err := cli.New(cli.Options{AutoSize: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := term.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer term.Stop()
//
//	if err := term.RunShell(); err != nil {
//	    log.Fatal(err)
//	}
//	term.Wait()
//
// # Scrollback Navigation
//
// The following keys are handled locally and never reach the child:
//
//   - Shift+PageUp / Shift+PageDown: scroll one page
//   - Shift+Up / Shift+Down: scroll one line
//   - Shift+Home / Shift+End: jump to top / bottom of scrollback
//
// Any regular input snaps the view back to the live screen.
//
// # Architecture
//
// Terminal owns the vt.Buffer, the PTY, and a scrim.Scheduler. The
// buffer reports dirty row ranges to the scheduler, which coalesces
// them and calls back into the Renderer (scrim.Painter) to emit ANSI
// output for just the rows that changed. InputHandler decodes host
// escape sequences into scrim.KeyEvent values and re-encodes them for
// the PTY with scrim.EncodeKey.
package cli
