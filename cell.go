// Package scrim synchronizes a terminal cell-grid model with a visual
// surface and with a child process's input stream.
//
// This package contains:
//   - Cell and packed style attributes
//   - Style-run coalescing for one row of cells
//   - A render cache rebuilt incrementally from dirty-row ranges
//   - A trailing-edge redraw scheduler
//   - Cursor rectangle calculation
//   - Keyboard-event to byte-sequence encoding
//   - PTY plumbing for the child process
//
// Frontend packages (scrim/cli, scrim/gtk, scrim/qt) provide the surfaces
// that consume this core. The escape-sequence state machine that owns the
// grid stays outside the package boundary: the core reads any
// implementation of Model.
package scrim

// Attr is a packed style attribute: foreground palette index in bits 0-7,
// background palette index in bits 8-15, flags above. Palette indices refer
// to the 256-color table; cells carrying the scheme defaults set the
// AttrDefaultFG/AttrDefaultBG flags instead of an index.
type Attr uint32

// Flag bits. AttrInverse swaps resolved foreground and background.
const (
	AttrBold Attr = 1 << (16 + iota)
	AttrUnderline
	AttrInverse
	AttrBlink
	AttrItalic
	AttrStrikethrough
	AttrDefaultFG
	AttrDefaultBG
)

// flagMask covers every flag bit.
const flagMask = AttrBold | AttrUnderline | AttrInverse | AttrBlink |
	AttrItalic | AttrStrikethrough | AttrDefaultFG | AttrDefaultBG

// PackAttr builds an attribute from palette indices and flags.
func PackAttr(fg, bg uint8, flags Attr) Attr {
	return Attr(fg) | Attr(bg)<<8 | (flags & flagMask)
}

// DefaultAttr is the attribute of an untouched cell: scheme foreground on
// scheme background, no flags.
const DefaultAttr = AttrDefaultFG | AttrDefaultBG

// Foreground returns the foreground palette index (meaningless if
// AttrDefaultFG is set).
func (a Attr) Foreground() uint8 { return uint8(a) }

// Background returns the background palette index (meaningless if
// AttrDefaultBG is set).
func (a Attr) Background() uint8 { return uint8(a >> 8) }

// Flags returns only the flag bits.
func (a Attr) Flags() Attr { return a & flagMask }

// Has reports whether every flag in f is set.
func (a Attr) Has(f Attr) bool { return a&f == f }

// Cell is a single grid position. Rune 0 marks a blank (or the continuation
// column of a wide rune) and renders as a space with the cell's attribute.
type Cell struct {
	Rune rune
	Attr Attr
}

// EmptyCell returns a blank cell with the default attribute.
func EmptyCell() Cell {
	return Cell{Attr: DefaultAttr}
}
