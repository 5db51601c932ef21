package cli

import (
	"os"
	"unicode/utf8"

	"github.com/kestrelo/scrim"
)

// InputHandler reads raw host input, decodes escape sequences into key
// events, and forwards them to the child through the key encoder.
// Shifted navigation keys are consumed locally for scrollback.
type InputHandler struct {
	term *Terminal
	seq  []byte // scratch for one escape sequence within a read; incomplete tails flush raw
}

// NewInputHandler creates an input handler for the terminal
func NewInputHandler(term *Terminal) *InputHandler {
	return &InputHandler{
		term: term,
		seq:  make([]byte, 0, 32),
	}
}

// InputLoop reads and processes input from stdin until the terminal stops
func (h *InputHandler) InputLoop() {
	buf := make([]byte, 256)
	for {
		select {
		case <-h.term.stop:
			return
		default:
		}

		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n > 0 {
			h.processInput(buf[:n])
		}
	}
}

// processInput consumes a chunk of raw input bytes
func (h *InputHandler) processInput(data []byte) {
	for i := 0; i < len(data); {
		b := data[i]

		if b == 0x1b {
			consumed := h.collectEscape(data[i:])
			i += consumed
			continue
		}

		if b < 0x80 {
			h.handleByte(b)
			i++
			continue
		}

		// Multi-byte UTF-8: forward the decoded rune
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			i++
			continue
		}
		h.handleEvent(scrim.KeyEvent{Rune: r})
		i += size
	}
}

// collectEscape gathers an escape sequence starting at data[0] and
// dispatches it. Returns the number of bytes consumed.
func (h *InputHandler) collectEscape(data []byte) int {
	h.seq = append(h.seq[:0], data[0])
	i := 1
	for i < len(data) && len(h.seq) < 32 {
		h.seq = append(h.seq, data[i])
		i++

		ev, done := parseHostEscape(h.seq)
		if done {
			h.handleEvent(ev)
			h.seq = h.seq[:0]
			return i
		}
	}

	// Incomplete or bare ESC at end of read: forward as-is. A lone
	// ESC press arrives as a single byte and belongs to the child.
	h.term.Write(h.seq)
	h.seq = h.seq[:0]
	return i
}

// handleByte processes a plain single-byte input
func (h *InputHandler) handleByte(b byte) {
	// Control bytes already carry their terminal encoding
	if b < 0x20 || b == 0x7f {
		h.scrollToLiveOnInput()
		h.term.Write([]byte{b})
		return
	}
	h.handleEvent(scrim.KeyEvent{Rune: rune(b)})
}

// handleEvent routes a decoded key event: locally for shifted
// scrollback navigation, otherwise re-encoded onto the PTY.
func (h *InputHandler) handleEvent(ev scrim.KeyEvent) {
	if ev.Mod&scrim.ModShift != 0 {
		_, rows := h.term.buffer.Size()
		switch ev.Key {
		case scrim.KeyPageUp:
			h.term.ScrollBy(rows - 1)
			return
		case scrim.KeyPageDown:
			h.term.ScrollBy(-(rows - 1))
			return
		case scrim.KeyUp:
			h.term.ScrollBy(1)
			return
		case scrim.KeyDown:
			h.term.ScrollBy(-1)
			return
		case scrim.KeyHome:
			h.term.ScrollToTop()
			return
		case scrim.KeyEnd:
			h.term.ScrollToBottom()
			return
		}
	}

	h.scrollToLiveOnInput()
	h.term.SendKey(ev)
}

// scrollToLiveOnInput snaps back to the live screen when the user
// types while scrolled into history.
func (h *InputHandler) scrollToLiveOnInput() {
	if h.term.buffer.ScrollOffset() > 0 {
		h.term.ScrollToBottom()
	}
}

// parseHostEscape decodes one host escape sequence into a key event.
// done is false while the sequence is still incomplete.
func parseHostEscape(seq []byte) (ev scrim.KeyEvent, done bool) {
	if len(seq) < 2 {
		return ev, false
	}

	switch seq[1] {
	case '[':
		return parseHostCSI(seq)
	case 'O':
		if len(seq) < 3 {
			return ev, false
		}
		ev.Key = ss3Key(seq[2])
		return ev, true
	}

	// Alt+key: ESC followed by a regular character
	if seq[1] >= 0x20 && seq[1] < 0x7f {
		return scrim.KeyEvent{Rune: rune(seq[1]), Mod: scrim.ModAlt}, true
	}
	return ev, true
}

// parseHostCSI decodes CSI (ESC [) sequences, including the extended
// modifier form ESC [ 1 ; <mod> <final>.
func parseHostCSI(seq []byte) (ev scrim.KeyEvent, done bool) {
	if len(seq) < 3 {
		return ev, false
	}

	final := seq[len(seq)-1]
	if (final >= '0' && final <= '9') || final == ';' {
		return ev, false // need more data
	}

	params := string(seq[2 : len(seq)-1])
	num, mod := splitCSIParams(params)
	ev.Mod = mod

	switch final {
	case 'A':
		ev.Key = scrim.KeyUp
	case 'B':
		ev.Key = scrim.KeyDown
	case 'C':
		ev.Key = scrim.KeyRight
	case 'D':
		ev.Key = scrim.KeyLeft
	case 'H':
		ev.Key = scrim.KeyHome
	case 'F':
		ev.Key = scrim.KeyEnd
	case 'Z':
		ev.Key = scrim.KeyBacktab
	case '~':
		ev.Key = tildeHostKey(num)
	}
	return ev, true
}

// splitCSIParams splits "num;mod" parameter text into the numeric key
// selector and decoded modifier flags.
func splitCSIParams(params string) (num int, mod scrim.Mod) {
	fields := [2]int{}
	n := 0
	cur := 0
	hasCur := false
	for i := 0; i <= len(params); i++ {
		if i == len(params) || params[i] == ';' {
			if hasCur && n < len(fields) {
				fields[n] = cur
				n++
			}
			cur = 0
			hasCur = false
			continue
		}
		c := params[i]
		if c < '0' || c > '9' {
			return 0, 0
		}
		cur = cur*10 + int(c-'0')
		hasCur = true
	}

	num = fields[0]
	if n >= 2 && fields[1] >= 2 {
		bits := fields[1] - 1
		if bits&1 != 0 {
			mod |= scrim.ModShift
		}
		if bits&2 != 0 {
			mod |= scrim.ModAlt
		}
		if bits&4 != 0 {
			mod |= scrim.ModCtrl
		}
	}
	return num, mod
}

// tildeHostKey maps the numeric selector of ESC [ n ~ sequences
func tildeHostKey(num int) scrim.Key {
	switch num {
	case 1, 7:
		return scrim.KeyHome
	case 2:
		return scrim.KeyInsert
	case 3:
		return scrim.KeyDelete
	case 4, 8:
		return scrim.KeyEnd
	case 5:
		return scrim.KeyPageUp
	case 6:
		return scrim.KeyPageDown
	case 11:
		return scrim.KeyF1
	case 12:
		return scrim.KeyF2
	case 13:
		return scrim.KeyF3
	case 14:
		return scrim.KeyF4
	case 15:
		return scrim.KeyF5
	case 17:
		return scrim.KeyF6
	case 18:
		return scrim.KeyF7
	case 19:
		return scrim.KeyF8
	case 20:
		return scrim.KeyF9
	case 21:
		return scrim.KeyF10
	case 23:
		return scrim.KeyF11
	case 24:
		return scrim.KeyF12
	}
	return scrim.KeyNone
}

// ss3Key maps SS3 (ESC O) finals
func ss3Key(final byte) scrim.Key {
	switch final {
	case 'A':
		return scrim.KeyUp
	case 'B':
		return scrim.KeyDown
	case 'C':
		return scrim.KeyRight
	case 'D':
		return scrim.KeyLeft
	case 'H':
		return scrim.KeyHome
	case 'F':
		return scrim.KeyEnd
	case 'P':
		return scrim.KeyF1
	case 'Q':
		return scrim.KeyF2
	case 'R':
		return scrim.KeyF3
	case 'S':
		return scrim.KeyF4
	}
	return scrim.KeyNone
}
