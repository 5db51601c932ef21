package scrim

import colorful "github.com/lucasb-eyer/go-colorful"

// ResolvedStyle is a packed attribute turned into concrete drawing state:
// final foreground/background after default lookup, bold-as-bright, and
// inverse-video swapping, plus the flags a surface still renders itself.
type ResolvedStyle struct {
	FG, BG        RGB
	Bold          bool
	Underline     bool
	Italic        bool
	Strikethrough bool
	Blink         bool
}

// StyleCache memoizes attribute resolution for a presentation surface. The
// packed attribute space is small and bounded, so entries are never
// evicted. The cache is an explicit object passed by reference into the
// run-drawing path, not ambient state; each surface owns one and rebuilds
// it when its scheme changes.
//
// Not safe for concurrent use; a surface resolves styles only on its own
// drawing thread.
type StyleCache struct {
	scheme   ColorScheme
	resolved map[Attr]ResolvedStyle
}

// NewStyleCache creates an empty cache over the scheme.
func NewStyleCache(scheme ColorScheme) *StyleCache {
	return &StyleCache{
		scheme:   scheme,
		resolved: make(map[Attr]ResolvedStyle),
	}
}

// Scheme returns the scheme the cache resolves against.
func (sc *StyleCache) Scheme() ColorScheme {
	return sc.scheme
}

// SetScheme replaces the scheme and drops every memoized entry.
func (sc *StyleCache) SetScheme(scheme ColorScheme) {
	sc.scheme = scheme
	sc.resolved = make(map[Attr]ResolvedStyle)
}

// Resolve returns the drawing state for a packed attribute, memoized.
func (sc *StyleCache) Resolve(a Attr) ResolvedStyle {
	if st, ok := sc.resolved[a]; ok {
		return st
	}

	var st ResolvedStyle
	if a.Has(AttrDefaultFG) {
		st.FG = sc.scheme.Foreground
	} else {
		idx := a.Foreground()
		// Bold on a standard color selects the bright variant, the
		// classic 16-color convention.
		if a.Has(AttrBold) && idx < 8 {
			idx += 8
		}
		st.FG = sc.scheme.color(idx)
	}
	if a.Has(AttrDefaultBG) {
		st.BG = sc.scheme.Background
	} else {
		st.BG = sc.scheme.color(a.Background())
	}

	if a.Has(AttrInverse) {
		st.FG, st.BG = st.BG, st.FG
	}

	st.Bold = a.Has(AttrBold)
	st.Underline = a.Has(AttrUnderline)
	st.Italic = a.Has(AttrItalic)
	st.Strikethrough = a.Has(AttrStrikethrough)
	st.Blink = a.Has(AttrBlink)

	sc.resolved[a] = st
	return st
}

// Blend mixes two colors in Lab space, which keeps selection and caret
// overlays perceptually even across the palette. t=0 yields a, t=1 yields b.
func Blend(a, b RGB, t float64) RGB {
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	m := ca.BlendLab(cb, t).Clamped()
	return RGB{
		R: uint8(m.R*255 + 0.5),
		G: uint8(m.G*255 + 0.5),
		B: uint8(m.B*255 + 0.5),
	}
}
