package scrim

import (
	"fmt"
	"strings"
)

// StyleRun is a maximal run of adjacent cells sharing one attribute,
// paired with its text. Blank cells appear as single spaces, so the
// concatenated text of a row's runs always reproduces the row.
type StyleRun struct {
	Start int    // first column covered by the run
	Text  string // one rune per column
	Attr  Attr
}

// Width returns the number of columns the run covers.
func (r StyleRun) Width() int {
	return len([]rune(r.Text))
}

// BuildRuns coalesces one row of cells into ordered style runs. A new run
// opens at column 0 and whenever the attribute changes; character identity
// never splits a run. The runs partition [0, cols) left to right with no
// gaps or overlaps. cols == 0 yields nil.
//
// The caller must pass a row of at least cols cells; a shorter row is a
// caller bug and panics before any run is built. Extra cells are ignored.
// Run count is what the consumer pays per draw call, so keeping it
// minimal is the whole point of coalescing.
func BuildRuns(row []Cell, cols int) []StyleRun {
	if cols <= 0 {
		return nil
	}
	if len(row) < cols {
		panic(fmt.Sprintf("scrim: BuildRuns row has %d cells, need %d", len(row), cols))
	}

	runs := make([]StyleRun, 0, 4)
	var text strings.Builder
	start := 0
	attr := row[0].Attr

	for x := 0; x < cols; x++ {
		cell := row[x]
		if cell.Attr != attr {
			runs = append(runs, StyleRun{Start: start, Text: text.String(), Attr: attr})
			text.Reset()
			start = x
			attr = cell.Attr
		}
		if cell.Rune == 0 {
			text.WriteByte(' ')
		} else {
			text.WriteRune(cell.Rune)
		}
	}

	return append(runs, StyleRun{Start: start, Text: text.String(), Attr: attr})
}
