package scrim

// Key names a recognized non-character key. The set is a closed
// enumeration dispatched through fixed tables, so the encoder is
// exhaustively checkable and never compares strings.
type Key int

const (
	KeyNone Key = iota
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyTab
	KeyBacktab
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// Mod is a set of modifier flags on a key event.
type Mod uint8

const (
	ModCtrl Mod = 1 << iota
	ModAlt
	ModShift
)

// KeyEvent is one physical key press: a character (0 if none), modifier
// flags, and a named key (KeyNone if the event is a plain character).
// Produced once, consumed immediately.
type KeyEvent struct {
	Rune rune
	Mod  Mod
	Key  Key
}

// cursorKeyLetters maps the mode-selected navigation keys to their final
// byte: ESC O <letter> in application-cursor mode, ESC [ <letter> otherwise.
var cursorKeyLetters = map[Key]byte{
	KeyUp:    'A',
	KeyDown:  'B',
	KeyRight: 'C',
	KeyLeft:  'D',
	KeyHome:  'H',
	KeyEnd:   'F',
}

// tildeKeyNumbers maps tilde-form keys to their parameter: ESC [ <n> ~.
// These encode the same way in both cursor-key modes, as do Tab and
// Backtab — the whole navigation group follows one mode direction, never
// an inverted one.
var tildeKeyNumbers = map[Key]int{
	KeyPageUp:   5,
	KeyPageDown: 6,
	KeyInsert:   2,
	KeyDelete:   3,
	KeyF5:       15,
	KeyF6:       17,
	KeyF7:       18,
	KeyF8:       19,
	KeyF9:       20,
	KeyF10:      21,
	KeyF11:      23,
	KeyF12:      24,
}

// ss3FunctionKeys maps F1-F4 to their SS3 final byte: ESC O <letter>.
var ss3FunctionKeys = map[Key]byte{
	KeyF1: 'P',
	KeyF2: 'Q',
	KeyF3: 'R',
	KeyF4: 'S',
}

// EncodeKey translates a key event into the byte sequence a
// terminal-attached process expects, or nil when the event maps to
// nothing (a documented no-op, not an error). appCursor is the model's
// application-cursor-key mode, read at encode time.
//
// The encoder has no side effects; the caller forwards non-nil results to
// the process sink.
func EncodeKey(ev KeyEvent, appCursor bool) []byte {
	// Ctrl+character first: a letter becomes its control byte.
	if ev.Mod&ModCtrl != 0 && ev.Key == KeyNone {
		if b, ok := controlByte(ev.Rune); ok {
			return []byte{b}
		}
		return nil
	}

	switch {
	case ev.Key == KeyNone:
		// Plain character insertion, with the traditional ESC prefix
		// when Alt is held.
		if ev.Rune == 0 {
			return nil
		}
		if ev.Mod&ModAlt != 0 {
			return append([]byte{0x1b}, []byte(string(ev.Rune))...)
		}
		return []byte(string(ev.Rune))

	case ev.Key == KeyTab:
		return []byte{'\t'}

	case ev.Key == KeyBacktab:
		return []byte{0x1b, '[', 'Z'}
	}

	// Modified navigation and function keys take the xterm modifier
	// parameter form, which is CSI in either cursor-key mode.
	mod := modParam(ev.Mod)

	if letter, ok := ss3FunctionKeys[ev.Key]; ok {
		if mod > 1 {
			return modifiedLetterKey(mod, letter)
		}
		return []byte{0x1b, 'O', letter}
	}
	if num, ok := tildeKeyNumbers[ev.Key]; ok {
		return tildeKey(num, mod)
	}
	if letter, ok := cursorKeyLetters[ev.Key]; ok {
		if mod > 1 {
			return modifiedLetterKey(mod, letter)
		}
		if appCursor {
			return []byte{0x1b, 'O', letter}
		}
		return []byte{0x1b, '[', letter}
	}

	return nil
}

// modParam packs modifier flags into the xterm parameter value:
// 1 plus Shift=1, Alt=2, Ctrl=4.
func modParam(m Mod) int {
	p := 1
	if m&ModShift != 0 {
		p += 1
	}
	if m&ModAlt != 0 {
		p += 2
	}
	if m&ModCtrl != 0 {
		p += 4
	}
	return p
}

// modifiedLetterKey builds ESC [ 1 ; <mod> <letter>.
func modifiedLetterKey(mod int, letter byte) []byte {
	return []byte{0x1b, '[', '1', ';', byte('0' + mod), letter}
}

// controlByte maps a rune to its control character per the usual terminal
// conventions: letters to 1-26, plus the handful of symbols that have
// historic control codes.
func controlByte(r rune) (byte, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return byte(r) - 'a' + 1, true
	case r >= 'A' && r <= 'Z':
		return byte(r) - 'A' + 1, true
	}
	switch r {
	case '@', ' ':
		return 0x00, true
	case '[':
		return 0x1b, true
	case '\\':
		return 0x1c, true
	case ']':
		return 0x1d, true
	case '^':
		return 0x1e, true
	case '_':
		return 0x1f, true
	case '?':
		return 0x7f, true
	}
	return 0, false
}

// tildeKey builds ESC [ <num> ~, or ESC [ <num> ; <mod> ~ when modified.
func tildeKey(num, mod int) []byte {
	seq := []byte{0x1b, '['}
	if num >= 10 {
		seq = append(seq, byte('0'+num/10))
	}
	seq = append(seq, byte('0'+num%10))
	if mod > 1 {
		seq = append(seq, ';', byte('0'+mod))
	}
	return append(seq, '~')
}
