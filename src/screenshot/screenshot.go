package screenshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"log"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/kbinani/screenshot"
)

var (
	// ErrEmptyCapture is returned when the capture provider yields no pixels.
	ErrEmptyCapture = errors.New("empty capture")
	// ErrEmptyRegion is returned when a crop rectangle does not overlap the frame.
	ErrEmptyRegion = errors.New("crop region is empty")
)

// Frame is the frozen capture a selection session works on. It is read-only
// once created and may be shared by every component of the session.
type Frame struct {
	Image image.Image
	// DevicePixelRatio is physical pixels per logical pixel.
	DevicePixelRatio float64

	rgbaOnce sync.Once
	rgba     *image.RGBA
}

// NewFrame wraps img. A nil or zero-sized image yields ErrEmptyCapture and a
// non-positive ratio is treated as 1.
func NewFrame(img image.Image, dpr float64) (*Frame, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyCapture
	}
	if dpr <= 0 || math.IsNaN(dpr) || math.IsInf(dpr, 0) {
		dpr = 1
	}
	return &Frame{Image: img, DevicePixelRatio: dpr}, nil
}

// Bounds returns the physical bounds of the bitmap.
func (f *Frame) Bounds() image.Rectangle { return f.Image.Bounds() }

// LogicalSize is the canvas size in logical pixels.
func (f *Frame) LogicalSize() image.Point {
	b := f.Image.Bounds()
	return image.Pt(
		int(math.Round(float64(b.Dx())/f.DevicePixelRatio)),
		int(math.Round(float64(b.Dy())/f.DevicePixelRatio)),
	)
}

// RGBA returns the bitmap as *image.RGBA, converting it on first use.
func (f *Frame) RGBA() *image.RGBA {
	f.rgbaOnce.Do(func() {
		if rgba, ok := f.Image.(*image.RGBA); ok {
			f.rgba = rgba
			return
		}
		b := f.Image.Bounds()
		rgba := image.NewRGBA(b)
		draw.Draw(rgba, b, f.Image, b.Min, draw.Src)
		f.rgba = rgba
	})
	return f.rgba
}

// ToPhysical scales a logical rectangle by dpr into the coordinate space of
// bounds and intersects it with bounds.
func ToPhysical(r image.Rectangle, dpr float64, bounds image.Rectangle) image.Rectangle {
	if dpr <= 0 {
		dpr = 1
	}
	scale := func(v int) int { return int(math.Round(float64(v) * dpr)) }
	p := image.Rect(scale(r.Min.X), scale(r.Min.Y), scale(r.Max.X), scale(r.Max.Y))
	return p.Add(bounds.Min).Intersect(bounds)
}

// ToPhysicalPoint maps a logical point into bounds, clamped to the last pixel.
func ToPhysicalPoint(pt image.Point, dpr float64, bounds image.Rectangle) image.Point {
	if dpr <= 0 {
		dpr = 1
	}
	x := bounds.Min.X + int(float64(pt.X)*dpr)
	y := bounds.Min.Y + int(float64(pt.Y)*dpr)
	return image.Pt(clamp(x, bounds.Min.X, bounds.Max.X-1), clamp(y, bounds.Min.Y, bounds.Max.Y-1))
}

// Crop cuts the logical rectangle r out of the frame at full physical resolution.
func (f *Frame) Crop(r image.Rectangle) (*image.NRGBA, error) {
	p := ToPhysical(r, f.DevicePixelRatio, f.Bounds())
	if p.Empty() {
		return nil, fmt.Errorf("crop %v at ratio %.2f: %w", r, f.DevicePixelRatio, ErrEmptyRegion)
	}
	return imaging.Crop(f.Image, p), nil
}

// CapturePrimary captures the primary display. A positive dprOverride is used
// as-is; otherwise the ratio is the captured width over the display's reported width.
func CapturePrimary(dprOverride float64) (*Frame, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return nil, fmt.Errorf("no active displays found: %w", ErrEmptyCapture)
	}
	bounds := screenshot.GetDisplayBounds(0)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture primary display: %w", err)
	}
	dpr := dprOverride
	if dpr <= 0 && img != nil && bounds.Dx() > 0 {
		dpr = float64(img.Bounds().Dx()) / float64(bounds.Dx())
	}
	frame, err := NewFrame(img, dpr)
	if err != nil {
		return nil, err
	}
	log.Printf("SCREENSHOT: captured %dx%d at ratio %.2f", img.Bounds().Dx(), img.Bounds().Dy(), frame.DevicePixelRatio)
	return frame, nil
}

// GetDisplayBounds returns the bounds of the primary display
func GetDisplayBounds() (image.Rectangle, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	return screenshot.GetDisplayBounds(0), nil
}

// Load reads an image file as a frame.
func Load(path string, dpr float64) (*Frame, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return NewFrame(img, dpr)
}

// DecodePNG decodes a PNG stream.
func DecodePNG(r io.Reader) (image.Image, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}
	return img, nil
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
