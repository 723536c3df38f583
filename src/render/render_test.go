package render

import (
	"image"
	"image/color"
	"testing"

	"screen-clip/src/screenshot"
	"screen-clip/src/throttle"
)

var gray = color.RGBA{R: 200, G: 200, B: 200, A: 255}

func solidFrame(t *testing.T, w, h int, dpr float64) *screenshot.Frame {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = gray.R, gray.G, gray.B, gray.A
	}
	f, err := screenshot.NewFrame(img, dpr)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	return f
}

func gradientFrame(t *testing.T, w, h int, dpr float64) *screenshot.Frame {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x7f, A: 0xff})
		}
	}
	f, err := screenshot.NewFrame(img, dpr)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	return f
}

func TestColorToHex(t *testing.T) {
	tests := []struct {
		c    color.Color
		want string
	}{
		{color.RGBA{R: 0, G: 0, B: 0, A: 255}, "#000000"},
		{color.RGBA{R: 255, G: 255, B: 255, A: 255}, "#FFFFFF"},
		{color.RGBA{R: 0x0a, G: 0xbc, B: 0x3f, A: 255}, "#0ABC3F"},
		{color.NRGBA{R: 0x12, G: 0x34, B: 0x56, A: 255}, "#123456"},
	}
	for _, tt := range tests {
		if got := ColorToHex(tt.c); got != tt.want {
			t.Errorf("ColorToHex(%v) = %s, want %s", tt.c, got, tt.want)
		}
	}
}

func TestPixelColorScalesAndClamps(t *testing.T) {
	r := New(gradientFrame(t, 200, 200, 2), nil)
	if got := r.PixelColor(image.Pt(10, 20)); got.R != 20 || got.G != 40 {
		t.Fatalf("PixelColor(10,20) = %v, want physical (20,40)", got)
	}
	if got := r.PixelColor(image.Pt(1000, -5)); got.R != 199 || got.G != 0 {
		t.Fatalf("clamped PixelColor = %v", got)
	}
	if got := ColorToHex(r.PixelColor(image.Pt(10, 20))); got != "#14287F" {
		t.Fatalf("hex = %s", got)
	}
}

func TestRenderMaskAndHole(t *testing.T) {
	r := New(solidFrame(t, 400, 300, 1), nil)
	out := r.Render(Scene{Rect: image.Rect(100, 100, 200, 200), HasSelection: true})
	if out.Bounds() != image.Rect(0, 0, 400, 300) {
		t.Fatalf("bounds = %v", out.Bounds())
	}
	if got := out.RGBAAt(150, 150); got != gray {
		t.Fatalf("inside selection = %v, want undimmed %v", got, gray)
	}
	dim := out.RGBAAt(50, 250)
	if dim.R < 95 || dim.R > 105 || dim.A != 255 {
		t.Fatalf("outside selection = %v, want about half brightness", dim)
	}
	if got := out.RGBAAt(100, 150); got != (color.RGBA{R: 0, G: 170, B: 255, A: 255}) {
		t.Fatalf("outline pixel = %v", got)
	}
}

func TestRenderHandlesOnlyWhenFinished(t *testing.T) {
	r := New(solidFrame(t, 400, 300, 1), nil)
	rect := image.Rect(100, 100, 200, 200)
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}

	out := r.Render(Scene{Rect: rect, HasSelection: true, Finished: true})
	if got := out.RGBAAt(200, 100); got != white {
		t.Fatalf("top-right handle center = %v, want white", got)
	}
	if got := out.RGBAAt(150, 200); got != white {
		t.Fatalf("bottom-center handle center = %v, want white", got)
	}

	out = r.Render(Scene{Rect: rect, HasSelection: true})
	if got := out.RGBAAt(150, 203); got == white {
		t.Fatal("handles drawn before the selection was finished")
	}
}

func TestRenderDpr(t *testing.T) {
	r := New(solidFrame(t, 800, 600, 2), nil)
	out := r.Render(Scene{Rect: image.Rect(100, 100, 200, 200), HasSelection: true})
	if got := out.RGBAAt(300, 300); got != gray {
		t.Fatalf("physical hole pixel = %v", got)
	}
	if got := out.RGBAAt(190, 300); got == gray {
		t.Fatal("pixel left of the scaled hole is not dimmed")
	}
}

func TestHintOnlyWithoutSelection(t *testing.T) {
	r := New(solidFrame(t, 400, 300, 1), nil)
	bare := r.Render(Scene{})
	dimmed := bare.RGBAAt(5, 5)
	if got := bare.RGBAAt(56, 31); got == dimmed {
		t.Fatal("hint banner missing")
	}
	sel := r.Render(Scene{Rect: image.Rect(100, 150, 200, 250), HasSelection: true})
	if got := sel.RGBAAt(56, 31); got != dimmed {
		t.Fatalf("hint drawn with an active selection: %v", got)
	}
}

func TestSizeLabel(t *testing.T) {
	if got := SizeLabel(image.Rect(10, 10, 110, 160)); got != "100 × 150" {
		t.Fatalf("SizeLabel = %q", got)
	}
}

func TestPlaceMagnifier(t *testing.T) {
	tests := []struct {
		name   string
		pos    image.Point
		canvas image.Point
		want   image.Point
	}{
		{"default", image.Pt(50, 50), image.Pt(400, 300), image.Pt(70, 70)},
		{"flip left", image.Pt(350, 50), image.Pt(400, 300), image.Pt(210, 70)},
		{"flip up", image.Pt(50, 250), image.Pt(400, 300), image.Pt(70, 50)},
		{"bottom right corner", image.Pt(395, 295), image.Pt(400, 300), image.Pt(255, 95)},
		{"tiny canvas", image.Pt(50, 50), image.Pt(100, 100), image.Pt(5, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlaceMagnifier(tt.pos, tt.canvas); got != tt.want {
				t.Fatalf("PlaceMagnifier(%v, %v) = %v, want %v", tt.pos, tt.canvas, got, tt.want)
			}
		})
	}
}

func TestMagnifierSource(t *testing.T) {
	r := New(solidFrame(t, 400, 300, 1), nil)
	if got := r.MagnifierSource(image.Pt(0, 0)); got != image.Rect(0, 0, 40, 40) {
		t.Fatalf("top-left source = %v", got)
	}
	if got := r.MagnifierSource(image.Pt(399, 299)); got != image.Rect(360, 260, 400, 300) {
		t.Fatalf("bottom-right source = %v", got)
	}
	r2 := New(solidFrame(t, 800, 600, 2), nil)
	if got := r2.MagnifierSource(image.Pt(100, 100)); got != image.Rect(160, 160, 240, 240) {
		t.Fatalf("retina source = %v", got)
	}
}

func TestMagnifierUsesCacheForSamePosition(t *testing.T) {
	th := throttle.New(0, nil)
	cache := th.MagnifierCache()
	r := New(solidFrame(t, 400, 300, 1), cache)

	green := color.RGBA{G: 255, A: 255}
	sentinel := image.NewRGBA(image.Rect(0, 0, MagnifierSize, MagnifierSize))
	for i := 0; i < len(sentinel.Pix); i += 4 {
		sentinel.Pix[i+1], sentinel.Pix[i+3] = 255, 255
	}
	cache.Store(image.Pt(50, 50), sentinel)

	out := r.Render(Scene{Pointer: image.Pt(50, 50), PointerValid: true})
	if got := out.RGBAAt(100, 100); got != green {
		t.Fatalf("loupe pixel = %v, want cached content", got)
	}

	out = r.Render(Scene{Pointer: image.Pt(60, 50), PointerValid: true})
	if got := out.RGBAAt(110, 100); got != gray {
		t.Fatalf("loupe pixel after move = %v, want resampled %v", got, gray)
	}
	first, ok := cache.Lookup(image.Pt(60, 50))
	if !ok {
		t.Fatal("resampled loupe was not cached")
	}
	r.Render(Scene{Pointer: image.Pt(60, 50), PointerValid: true})
	if second, _ := cache.Lookup(image.Pt(60, 50)); second != first {
		t.Fatal("same position resampled instead of reusing the cache")
	}
}

func TestMagnifierHiddenWhenFinished(t *testing.T) {
	th := throttle.New(0, nil)
	r := New(solidFrame(t, 400, 300, 1), th.MagnifierCache())
	r.Render(Scene{Rect: image.Rect(200, 10, 300, 100), HasSelection: true, Finished: true, Pointer: image.Pt(50, 50), PointerValid: true})
	if th.MagnifierCache().Valid() {
		t.Fatal("loupe sampled while the selection is finished")
	}
}

func TestClearCache(t *testing.T) {
	th := throttle.New(0, nil)
	cache := th.MagnifierCache()
	r := New(gradientFrame(t, 100, 100, 1), cache)
	r.Render(Scene{Pointer: image.Pt(10, 10), PointerValid: true})
	if !cache.Valid() {
		t.Fatal("expected a cached loupe")
	}
	r.ClearCache()
	if cache.Valid() {
		t.Fatal("ClearCache left the loupe cached")
	}
	if got := r.PixelColor(image.Pt(3, 4)); got.R != 3 || got.G != 4 {
		t.Fatalf("PixelColor after clear = %v", got)
	}
}
