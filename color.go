package scrim

// RGB holds red, green, blue components.
type RGB struct {
	R, G, B uint8
}

// ANSIColorsRGB is the standard 16-color palette in ANSI order.
var ANSIColorsRGB = [16]RGB{
	{R: 0, G: 0, B: 0},       // 0: Black
	{R: 170, G: 0, B: 0},     // 1: Red
	{R: 0, G: 170, B: 0},     // 2: Green
	{R: 170, G: 85, B: 0},    // 3: Yellow/Brown
	{R: 0, G: 0, B: 170},     // 4: Blue
	{R: 170, G: 0, B: 170},   // 5: Magenta
	{R: 0, G: 170, B: 170},   // 6: Cyan
	{R: 170, G: 170, B: 170}, // 7: White/Silver
	{R: 85, G: 85, B: 85},    // 8: Bright Black
	{R: 255, G: 85, B: 85},   // 9: Bright Red
	{R: 85, G: 255, B: 85},   // 10: Bright Green
	{R: 255, G: 255, B: 85},  // 11: Bright Yellow
	{R: 85, G: 85, B: 255},   // 12: Bright Blue
	{R: 255, G: 85, B: 255},  // 13: Bright Magenta
	{R: 85, G: 255, B: 255},  // 14: Bright Cyan
	{R: 255, G: 255, B: 255}, // 15: White
}

// Palette256 returns the RGB value for a 256-color palette index:
// 0-15 from the ANSI table, 16-231 the 6x6x6 cube, 232-255 the gray ramp.
func Palette256(idx int) RGB {
	if idx < 0 {
		idx = 0
	} else if idx > 255 {
		idx = 255
	}
	if idx < 16 {
		return ANSIColorsRGB[idx]
	}
	if idx < 232 {
		idx -= 16
		b := idx % 6
		g := (idx / 6) % 6
		r := idx / 36
		return RGB{R: uint8(r * 51), G: uint8(g * 51), B: uint8(b * 51)}
	}
	gray := uint8((idx-232)*10 + 8)
	return RGB{R: gray, G: gray, B: gray}
}

// ColorScheme defines the concrete colors a surface renders with. The core
// never resolves colors itself; a StyleCache owned by the presentation side
// applies the scheme.
type ColorScheme struct {
	Foreground RGB
	Background RGB
	Palette    [16]RGB // overrides for ANSI indices 0-15

	Cursor    RGB
	Selection RGB
}

// DefaultColorScheme returns a dark scheme with the standard ANSI palette.
func DefaultColorScheme() ColorScheme {
	return ColorScheme{
		Foreground: RGB{R: 212, G: 212, B: 212},
		Background: RGB{R: 30, G: 30, B: 30},
		Palette:    ANSIColorsRGB,
		Cursor:     RGB{R: 255, G: 255, B: 255},
		Selection:  RGB{R: 68, G: 68, B: 68},
	}
}

// color looks an index up in the scheme: 0-15 through the scheme palette,
// 16-255 through the fixed 256-color table.
func (s ColorScheme) color(idx uint8) RGB {
	if idx < 16 {
		return s.Palette[idx]
	}
	return Palette256(int(idx))
}
