package vt

import (
	"testing"

	"github.com/kestrelo/scrim"
)

func rowText(b *Buffer, abs int) string {
	cols, _ := b.Size()
	text := ""
	for _, r := range scrim.BuildRuns(b.Row(abs), cols) {
		text += r.Text
	}
	return text
}

func TestBufferWriteStringPlacesCells(t *testing.T) {
	b := NewBuffer(10, 3, 100)
	b.SetAttr(scrim.PackAttr(2, 0, 0))
	b.WriteString("hey")

	row := b.Row(0)
	if row[0].Rune != 'h' || row[1].Rune != 'e' || row[2].Rune != 'y' {
		t.Fatalf("row content wrong: %#v", row[:3])
	}
	if row[0].Attr != scrim.PackAttr(2, 0, 0) {
		t.Fatalf("attribute not applied: %#v", row[0])
	}
	if x, y := b.Cursor(); x != 3 || y != 0 {
		t.Fatalf("cursor at (%d,%d), want (3,0)", x, y)
	}
}

func TestBufferControlCharacters(t *testing.T) {
	b := NewBuffer(20, 4, 100)
	b.WriteString("ab\r\ncd")

	if got := rowText(b, 0); got[:2] != "ab" {
		t.Fatalf("first line %q", got)
	}
	if got := rowText(b, 1); got[:2] != "cd" {
		t.Fatalf("second line %q", got)
	}

	b = NewBuffer(20, 4, 100)
	b.WriteString("a\tb")
	row := b.Row(0)
	if row[8].Rune != 'b' {
		t.Fatalf("tab should advance to column 8, row: %q", rowText(b, 0))
	}

	b = NewBuffer(20, 4, 100)
	b.WriteString("ax\bo")
	if got := rowText(b, 0); got[:2] != "ao" {
		t.Fatalf("backspace overwrite failed: %q", got)
	}
}

func TestBufferWideRuneContinuation(t *testing.T) {
	b := NewBuffer(10, 2, 100)
	b.WriteString("漢x")

	row := b.Row(0)
	if row[0].Rune != '漢' {
		t.Fatalf("wide rune missing: %#v", row[0])
	}
	if row[1].Rune != 0 {
		t.Fatalf("continuation cell should be rune 0: %#v", row[1])
	}
	if row[2].Rune != 'x' {
		t.Fatalf("next rune should land after the continuation: %#v", row[2])
	}
}

func TestBufferDirtyRangeBatchesToUnion(t *testing.T) {
	b := NewBuffer(10, 5, 100)
	var calls []scrim.DirtyRange
	b.SetDirtyFunc(func(start, end int) {
		calls = append(calls, scrim.DirtyRange{Start: start, End: end})
	})

	b.WriteString("line0\nline1\nline2")

	if len(calls) != 1 {
		t.Fatalf("expected one callback per mutation batch, got %d", len(calls))
	}
	if calls[0].Start != 0 || calls[0].End != 2 {
		t.Fatalf("batch range [%d,%d], want [0,2]", calls[0].Start, calls[0].End)
	}
}

func TestBufferScrollKeepsAbsoluteIndicesStable(t *testing.T) {
	b := NewBuffer(10, 2, 100)
	b.WriteString("one\ntwo\nthree")

	if b.TotalRows() != 3 {
		t.Fatalf("TotalRows = %d, want 3", b.TotalRows())
	}
	if got := rowText(b, 0); got[:3] != "one" {
		t.Fatalf("absolute row 0 = %q, should be stable under scrolling", got)
	}
	if got := rowText(b, 2); got[:5] != "three" {
		t.Fatalf("absolute row 2 = %q", got)
	}
}

func TestBufferScrollDirtyNamesOnlyNewRow(t *testing.T) {
	b := NewBuffer(10, 2, 100)
	b.WriteString("one\ntwo")

	var last scrim.DirtyRange
	b.SetDirtyFunc(func(start, end int) {
		last = scrim.DirtyRange{Start: start, End: end}
	})
	b.WriteString("\n")

	if last.Start != 2 || last.End != 2 {
		t.Fatalf("scroll dirty range [%d,%d], want [2,2]", last.Start, last.End)
	}
}

func TestBufferScrollViewClamps(t *testing.T) {
	b := NewBuffer(10, 2, 100)
	b.WriteString("a\nb\nc\nd")

	if off := b.ScrollView(100); off != b.MaxScrollOffset() {
		t.Fatalf("offset %d, want clamp to %d", off, b.MaxScrollOffset())
	}
	if off := b.ScrollView(-100); off != 0 {
		t.Fatalf("offset %d, want clamp to 0", off)
	}
	b.ScrollView(2)
	b.ScrollToLive()
	if b.ScrollOffset() != 0 {
		t.Fatalf("ScrollToLive left offset %d", b.ScrollOffset())
	}
}

func TestBufferResizePreservesContent(t *testing.T) {
	b := NewBuffer(10, 3, 100)
	b.WriteString("keep")

	b.Resize(6, 2)
	cols, rows := b.Size()
	if cols != 6 || rows != 2 {
		t.Fatalf("size %dx%d, want 6x2", cols, rows)
	}
	if got := rowText(b, 0); got[:4] != "keep" {
		t.Fatalf("content lost on resize: %q", got)
	}

	row := b.Row(0)
	if len(row) != 6 {
		t.Fatalf("row width %d after shrink, want 6", len(row))
	}
}

func TestBufferApplicationCursorKeys(t *testing.T) {
	b := NewBuffer(10, 2, 100)
	if b.ApplicationCursorKeys() {
		t.Fatalf("mode must default off")
	}
	b.SetApplicationCursorKeys(true)
	if !b.ApplicationCursorKeys() {
		t.Fatalf("mode not set")
	}

	// The encoder reads the flag at encode time.
	up := scrim.EncodeKey(scrim.KeyEvent{Key: scrim.KeyUp}, b.ApplicationCursorKeys())
	if string(up) != "\x1bOA" {
		t.Fatalf("application-mode arrow = %q", up)
	}
}

func TestBufferEraseScreen(t *testing.T) {
	b := NewBuffer(8, 2, 100)
	b.SetAttr(scrim.PackAttr(1, 2, scrim.AttrBold))
	b.WriteString("junk")
	b.EraseScreen()

	for x, cell := range b.Row(0) {
		if cell.Rune != 0 {
			t.Fatalf("cell %d not blank after erase: %#v", x, cell)
		}
		if cell.Attr != scrim.DefaultAttr {
			t.Fatalf("cell %d keeps a stale attribute after erase: %#v", x, cell)
		}
	}
	if x, y := b.Cursor(); x != 0 || y != 0 {
		t.Fatalf("cursor not homed: (%d,%d)", x, y)
	}
}
