package scrim

import "testing"

func TestStyleCacheResolvesDefaultsAndPalette(t *testing.T) {
	scheme := DefaultColorScheme()
	sc := NewStyleCache(scheme)

	st := sc.Resolve(DefaultAttr)
	if st.FG != scheme.Foreground || st.BG != scheme.Background {
		t.Fatalf("default attr resolved to %+v", st)
	}

	st = sc.Resolve(PackAttr(1, 4, 0))
	if st.FG != scheme.Palette[1] || st.BG != scheme.Palette[4] {
		t.Fatalf("palette attr resolved to %+v", st)
	}
}

func TestStyleCacheBoldSelectsBrightVariant(t *testing.T) {
	sc := NewStyleCache(DefaultColorScheme())
	st := sc.Resolve(PackAttr(1, 0, AttrBold))
	if st.FG != ANSIColorsRGB[9] {
		t.Fatalf("bold red resolved to %+v, want bright red", st.FG)
	}
	if !st.Bold {
		t.Fatalf("bold flag lost in resolution")
	}

	// Indices outside 0-7 keep their color; bold stays a font weight.
	st = sc.Resolve(PackAttr(9, 0, AttrBold))
	if st.FG != ANSIColorsRGB[9] {
		t.Fatalf("bright index shifted by bold: %+v", st.FG)
	}
}

func TestStyleCacheInverseSwapsResolvedColors(t *testing.T) {
	sc := NewStyleCache(DefaultColorScheme())
	plain := sc.Resolve(PackAttr(2, 5, 0))
	inverse := sc.Resolve(PackAttr(2, 5, AttrInverse))
	if inverse.FG != plain.BG || inverse.BG != plain.FG {
		t.Fatalf("inverse did not swap: %+v vs %+v", inverse, plain)
	}
}

func TestStyleCacheMemoizes(t *testing.T) {
	sc := NewStyleCache(DefaultColorScheme())
	attr := PackAttr(3, 7, AttrUnderline)

	first := sc.Resolve(attr)
	if len(sc.resolved) != 1 {
		t.Fatalf("expected one memo entry, have %d", len(sc.resolved))
	}
	second := sc.Resolve(attr)
	if first != second {
		t.Fatalf("memoized resolution differs: %+v vs %+v", first, second)
	}
	if len(sc.resolved) != 1 {
		t.Fatalf("second resolve grew the memo to %d entries", len(sc.resolved))
	}
}

func TestStyleCacheSetSchemeDropsMemo(t *testing.T) {
	sc := NewStyleCache(DefaultColorScheme())
	attr := PackAttr(1, 0, 0)
	before := sc.Resolve(attr)

	scheme := DefaultColorScheme()
	scheme.Palette[1] = RGB{R: 1, G: 2, B: 3}
	sc.SetScheme(scheme)

	after := sc.Resolve(attr)
	if after == before {
		t.Fatalf("stale memo survived a scheme change")
	}
	if after.FG != scheme.Palette[1] {
		t.Fatalf("new scheme not applied: %+v", after.FG)
	}
}

func TestBlendEndpoints(t *testing.T) {
	a := RGB{R: 10, G: 20, B: 30}
	b := RGB{R: 200, G: 100, B: 50}
	if got := Blend(a, b, 0); got != a {
		t.Fatalf("Blend(t=0) = %+v, want %+v", got, a)
	}
	if got := Blend(a, b, 1); got != b {
		t.Fatalf("Blend(t=1) = %+v, want %+v", got, b)
	}
}
