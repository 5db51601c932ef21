package scrim

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// PTY is the opaque byte sink/source for the child process. The core never
// reads or writes it directly; frontends pump PTY output into their model
// and forward EncodeKey results back in.
type PTY interface {
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
	Resize(cols, rows int) error
	Close() error
}

type unixPTY struct {
	master *os.File
}

// StartPTY starts cmd attached to a fresh pseudoterminal of the given size
// and returns the master side.
func StartPTY(cmd *exec.Cmd, cols, rows int) (PTY, error) {
	master, err := pty.StartWithSize(cmd, &pty.Winsize{
		Cols: uint16(cols),
		Rows: uint16(rows),
	})
	if err != nil {
		return nil, err
	}
	return &unixPTY{master: master}, nil
}

func (p *unixPTY) Read(b []byte) (int, error) {
	return p.master.Read(b)
}

func (p *unixPTY) Write(b []byte) (int, error) {
	return p.master.Write(b)
}

// Resize pushes the new size to the kernel so the child sees SIGWINCH.
func (p *unixPTY) Resize(cols, rows int) error {
	return pty.Setsize(p.master, &pty.Winsize{
		Cols: uint16(cols),
		Rows: uint16(rows),
	})
}

func (p *unixPTY) Close() error {
	return p.master.Close()
}
