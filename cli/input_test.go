package cli

import (
	"testing"

	"github.com/kestrelo/scrim"
)

func TestParseHostEscapeCursorKeys(t *testing.T) {
	cases := []struct {
		seq string
		key scrim.Key
	}{
		{"\x1b[A", scrim.KeyUp},
		{"\x1b[B", scrim.KeyDown},
		{"\x1b[C", scrim.KeyRight},
		{"\x1b[D", scrim.KeyLeft},
		{"\x1b[H", scrim.KeyHome},
		{"\x1b[F", scrim.KeyEnd},
		{"\x1b[Z", scrim.KeyBacktab},
		{"\x1bOA", scrim.KeyUp},
		{"\x1bOP", scrim.KeyF1},
		{"\x1bOS", scrim.KeyF4},
	}
	for _, tc := range cases {
		ev, done := parseHostEscape([]byte(tc.seq))
		if !done {
			t.Fatalf("sequence %q not recognized as complete", tc.seq)
		}
		if ev.Key != tc.key {
			t.Fatalf("sequence %q decoded to key %d, want %d", tc.seq, ev.Key, tc.key)
		}
	}
}

func TestParseHostEscapeTildeKeys(t *testing.T) {
	cases := []struct {
		seq string
		key scrim.Key
	}{
		{"\x1b[2~", scrim.KeyInsert},
		{"\x1b[3~", scrim.KeyDelete},
		{"\x1b[5~", scrim.KeyPageUp},
		{"\x1b[6~", scrim.KeyPageDown},
		{"\x1b[15~", scrim.KeyF5},
		{"\x1b[24~", scrim.KeyF12},
		{"\x1b[1~", scrim.KeyHome},
		{"\x1b[4~", scrim.KeyEnd},
	}
	for _, tc := range cases {
		ev, done := parseHostEscape([]byte(tc.seq))
		if !done || ev.Key != tc.key {
			t.Fatalf("sequence %q decoded to (%d, done=%v), want key %d", tc.seq, ev.Key, done, tc.key)
		}
	}
}

func TestParseHostEscapeModifiers(t *testing.T) {
	ev, done := parseHostEscape([]byte("\x1b[1;2A"))
	if !done {
		t.Fatalf("modified arrow not recognized")
	}
	if ev.Key != scrim.KeyUp || ev.Mod != scrim.ModShift {
		t.Fatalf("decoded %+v, want Shift+Up", ev)
	}

	ev, _ = parseHostEscape([]byte("\x1b[5;2~"))
	if ev.Key != scrim.KeyPageUp || ev.Mod != scrim.ModShift {
		t.Fatalf("decoded %+v, want Shift+PageUp", ev)
	}

	ev, _ = parseHostEscape([]byte("\x1b[1;5C"))
	if ev.Key != scrim.KeyRight || ev.Mod != scrim.ModCtrl {
		t.Fatalf("decoded %+v, want Ctrl+Right", ev)
	}

	ev, _ = parseHostEscape([]byte("\x1b[1;4D"))
	if ev.Key != scrim.KeyLeft || ev.Mod != scrim.ModShift|scrim.ModAlt {
		t.Fatalf("decoded %+v, want Shift+Alt+Left", ev)
	}
}

func TestParseHostEscapeAltCharacter(t *testing.T) {
	ev, done := parseHostEscape([]byte("\x1bx"))
	if !done {
		t.Fatalf("Alt+x not recognized")
	}
	if ev.Rune != 'x' || ev.Mod != scrim.ModAlt {
		t.Fatalf("decoded %+v, want Alt+x", ev)
	}
}

func TestParseHostEscapeIncomplete(t *testing.T) {
	for _, seq := range []string{"\x1b", "\x1b[", "\x1b[1", "\x1b[1;", "\x1b[1;2", "\x1bO"} {
		if _, done := parseHostEscape([]byte(seq)); done {
			t.Fatalf("partial sequence %q treated as complete", seq)
		}
	}
}

func TestHostKeyRoundTripNormalizesMode(t *testing.T) {
	// A host arrow in normal form comes back out in application form
	// when the child has application cursor keys enabled.
	ev, _ := parseHostEscape([]byte("\x1b[A"))
	if got := scrim.EncodeKey(ev, true); string(got) != "\x1bOA" {
		t.Fatalf("re-encoded arrow = %q, want application form", got)
	}
	// Paging keys come back unchanged in either mode.
	ev, _ = parseHostEscape([]byte("\x1b[6~"))
	if got := scrim.EncodeKey(ev, true); string(got) != "\x1b[6~" {
		t.Fatalf("re-encoded PageDown = %q", got)
	}
	// Modifier parameters survive the round trip in either mode.
	ev, _ = parseHostEscape([]byte("\x1b[1;5C"))
	for _, mode := range []bool{false, true} {
		if got := scrim.EncodeKey(ev, mode); string(got) != "\x1b[1;5C" {
			t.Fatalf("re-encoded Ctrl+Right mode=%v = %q", mode, got)
		}
	}
	ev, _ = parseHostEscape([]byte("\x1b[3;2~"))
	if got := scrim.EncodeKey(ev, false); string(got) != "\x1b[3;2~" {
		t.Fatalf("re-encoded Shift+Delete = %q", got)
	}
}
