package scrim

// Rect is a caller-relative rectangle in the consumer's coordinate space.
type Rect struct {
	X, Y, W, H int
}

// LocateCursor maps the model's logical cursor cell to a rectangle. col and
// row are viewport-relative; scrollOffset shifts the row downward when the
// view is scrolled back. Text-cell consumers pass cellW = cellH = 1; pixel
// consumers pass their glyph metrics.
//
// Pure function. The caller suppresses caret drawing whenever the view is
// scrolled away from the live viewport; the rectangle itself is always
// computed.
func LocateCursor(col, row, scrollOffset, cellW, cellH int) Rect {
	return Rect{
		X: col * cellW,
		Y: (row + scrollOffset) * cellH,
		W: cellW,
		H: cellH,
	}
}
