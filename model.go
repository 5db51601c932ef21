package scrim

// Model is the read-only surface of the buffer model the core consumes.
// Row indices are absolute: counted from the top of scrollback, stable
// under scrolling. The live viewport covers the last Rows() of TotalRows().
//
// The model's owner is also expected to deliver dirty-range notifications
// (start and end absolute rows, inclusive) after each mutation batch;
// those are wired straight into Scheduler.NotifyDirty.
type Model interface {
	// Size returns the viewport dimensions in cells.
	Size() (cols, rows int)

	// TotalRows returns scrollback plus viewport row count.
	TotalRows() int

	// Row returns the cells of the absolute row. The returned slice must
	// hold exactly Size() cols cells and must not be retained.
	Row(abs int) []Cell

	// Cursor returns the live cursor position, viewport-relative.
	Cursor() (col, row int)

	// CursorVisible reports whether the model wants the caret drawn.
	CursorVisible() bool

	// ScrollOffset returns how many rows the view is scrolled back from
	// the live viewport. 0 means live.
	ScrollOffset() int

	// ApplicationCursorKeys reports the DECCKM-style mode flag. Read at
	// encode time, never cached.
	ApplicationCursorKeys() bool
}

// DirtyRange is an inclusive span of absolute rows changed since the last
// cache rebuild.
type DirtyRange struct {
	Start, End int
}

// union widens the range to cover r.
func (d DirtyRange) union(r DirtyRange) DirtyRange {
	if r.Start < d.Start {
		d.Start = r.Start
	}
	if r.End > d.End {
		d.End = r.End
	}
	return d
}
