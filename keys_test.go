package scrim

import (
	"bytes"
	"testing"
)

func TestEncodeControlLetters(t *testing.T) {
	cases := []struct {
		r    rune
		want byte
	}{
		{'c', 0x03},
		{'C', 0x03},
		{'a', 0x01},
		{'z', 0x1a},
		{'[', 0x1b},
		{'@', 0x00},
		{'?', 0x7f},
	}
	for _, tc := range cases {
		got := EncodeKey(KeyEvent{Rune: tc.r, Mod: ModCtrl}, false)
		if len(got) != 1 || got[0] != tc.want {
			t.Fatalf("Ctrl+%q = %#v, want single byte %#x", tc.r, got, tc.want)
		}
	}
}

func TestEncodeFunctionKeysFixedAndDistinct(t *testing.T) {
	want := map[Key][]byte{
		KeyF1:  {0x1b, 'O', 'P'},
		KeyF2:  {0x1b, 'O', 'Q'},
		KeyF3:  {0x1b, 'O', 'R'},
		KeyF4:  {0x1b, 'O', 'S'},
		KeyF5:  []byte("\x1b[15~"),
		KeyF6:  []byte("\x1b[17~"),
		KeyF7:  []byte("\x1b[18~"),
		KeyF8:  []byte("\x1b[19~"),
		KeyF9:  []byte("\x1b[20~"),
		KeyF10: []byte("\x1b[21~"),
		KeyF11: []byte("\x1b[23~"),
		KeyF12: []byte("\x1b[24~"),
	}

	seen := make(map[string]Key)
	for key, seq := range want {
		for _, mode := range []bool{false, true} {
			got := EncodeKey(KeyEvent{Key: key}, mode)
			if !bytes.Equal(got, seq) {
				t.Fatalf("key %d mode=%v = %q, want %q", key, mode, got, seq)
			}
		}
		if prev, dup := seen[string(seq)]; dup {
			t.Fatalf("keys %d and %d share sequence %q", prev, key, seq)
		}
		seen[string(seq)] = key
	}
}

func TestEncodeCursorKeysFollowMode(t *testing.T) {
	cases := []struct {
		key    Key
		letter byte
	}{
		{KeyUp, 'A'},
		{KeyDown, 'B'},
		{KeyRight, 'C'},
		{KeyLeft, 'D'},
		{KeyHome, 'H'},
		{KeyEnd, 'F'},
	}
	for _, tc := range cases {
		app := EncodeKey(KeyEvent{Key: tc.key}, true)
		if !bytes.Equal(app, []byte{0x1b, 'O', tc.letter}) {
			t.Fatalf("key %d application form = %q", tc.key, app)
		}
		normal := EncodeKey(KeyEvent{Key: tc.key}, false)
		if !bytes.Equal(normal, []byte{0x1b, '[', tc.letter}) {
			t.Fatalf("key %d normal form = %q", tc.key, normal)
		}
	}
}

func TestEncodePagingKeysIgnoreMode(t *testing.T) {
	// The whole navigation group follows one mode direction; the paging
	// keys and Backtab never invert on the mode flag.
	fixed := map[Key][]byte{
		KeyPageUp:   []byte("\x1b[5~"),
		KeyPageDown: []byte("\x1b[6~"),
		KeyBacktab:  []byte("\x1b[Z"),
		KeyTab:      {'\t'},
		KeyInsert:   []byte("\x1b[2~"),
		KeyDelete:   []byte("\x1b[3~"),
	}
	for key, seq := range fixed {
		for _, mode := range []bool{false, true} {
			if got := EncodeKey(KeyEvent{Key: key}, mode); !bytes.Equal(got, seq) {
				t.Fatalf("key %d mode=%v = %q, want %q", key, mode, got, seq)
			}
		}
	}
}

func TestEncodeModifiedNavigationKeys(t *testing.T) {
	// Modifier flags on named keys carry through as the xterm parameter
	// (1 plus Shift=1, Alt=2, Ctrl=4) instead of being dropped.
	cases := []struct {
		ev   KeyEvent
		want string
	}{
		{KeyEvent{Key: KeyRight, Mod: ModCtrl}, "\x1b[1;5C"},
		{KeyEvent{Key: KeyUp, Mod: ModAlt}, "\x1b[1;3A"},
		{KeyEvent{Key: KeyLeft, Mod: ModCtrl | ModShift}, "\x1b[1;6D"},
		{KeyEvent{Key: KeyHome, Mod: ModCtrl}, "\x1b[1;5H"},
		{KeyEvent{Key: KeyDelete, Mod: ModShift}, "\x1b[3;2~"},
		{KeyEvent{Key: KeyPageUp, Mod: ModCtrl}, "\x1b[5;5~"},
		{KeyEvent{Key: KeyF5, Mod: ModCtrl}, "\x1b[15;5~"},
		{KeyEvent{Key: KeyF1, Mod: ModCtrl}, "\x1b[1;5P"},
		{KeyEvent{Key: KeyF2, Mod: ModShift | ModAlt | ModCtrl}, "\x1b[1;8Q"},
	}
	for _, tc := range cases {
		got := EncodeKey(tc.ev, false)
		if !bytes.Equal(got, []byte(tc.want)) {
			t.Fatalf("key %d mod %#x = %q, want %q", tc.ev.Key, tc.ev.Mod, got, tc.want)
		}
	}

	// The modified form is CSI regardless of application-cursor mode.
	app := EncodeKey(KeyEvent{Key: KeyRight, Mod: ModCtrl}, true)
	if !bytes.Equal(app, []byte("\x1b[1;5C")) {
		t.Fatalf("modified arrow in application mode = %q", app)
	}
}

func TestEncodePlainAndAltCharacters(t *testing.T) {
	if got := EncodeKey(KeyEvent{Rune: 'x'}, false); !bytes.Equal(got, []byte("x")) {
		t.Fatalf("plain rune = %q", got)
	}
	if got := EncodeKey(KeyEvent{Rune: 'é'}, false); !bytes.Equal(got, []byte("é")) {
		t.Fatalf("unicode rune must pass through as UTF-8: %q", got)
	}
	if got := EncodeKey(KeyEvent{Rune: 'x', Mod: ModAlt}, false); !bytes.Equal(got, []byte("\x1bx")) {
		t.Fatalf("Alt rune = %q, want ESC prefix", got)
	}
	if got := EncodeKey(KeyEvent{Rune: '\r'}, false); !bytes.Equal(got, []byte("\r")) {
		t.Fatalf("carriage return = %q", got)
	}
}

func TestEncodeUnrecognizedIsNoOp(t *testing.T) {
	if got := EncodeKey(KeyEvent{}, false); got != nil {
		t.Fatalf("empty event = %#v, want nil", got)
	}
	if got := EncodeKey(KeyEvent{Rune: '5', Mod: ModCtrl}, false); got != nil {
		t.Fatalf("Ctrl+digit has no mapping, got %#v", got)
	}
}
