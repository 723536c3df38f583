package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"screen-clip/src/screenshot"
	"screen-clip/src/selection"
)

var (
	maskColor   = color.NRGBA{A: 127}
	accentColor = color.NRGBA{R: 0, G: 170, B: 255, A: 255}
	handleFill  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

const outlineWidth = 2

// Scene is everything about the interaction the compositor needs for one frame.
// Coordinates are logical.
type Scene struct {
	Rect         image.Rectangle
	HasSelection bool
	Finished     bool
	Pointer      image.Point
	PointerValid bool
}

// SourceCache stores the scaled loupe image for one pointer position.
type SourceCache interface {
	Lookup(pos image.Point) (*image.RGBA, bool)
	Store(pos image.Point, img *image.RGBA)
	Invalidate()
}

// Renderer composites session frames from a frozen capture. The output is at
// the capture's physical resolution; overlay geometry is scaled by the frame's
// device pixel ratio.
type Renderer struct {
	frame *screenshot.Frame
	cache SourceCache

	colorPos   image.Point
	colorValue color.RGBA
	colorValid bool
}

// New returns a renderer over frame. A nil cache gets a private one.
func New(frame *screenshot.Frame, cache SourceCache) *Renderer {
	if cache == nil {
		cache = &loupeCache{}
	}
	return &Renderer{frame: frame, cache: cache}
}

// Frame returns the capture being rendered.
func (r *Renderer) Frame() *screenshot.Frame { return r.frame }

// Render draws background, dimming mask, selection outline, handles, magnifier
// and labels, in that order.
func (r *Renderer) Render(s Scene) *image.RGBA {
	src := r.frame.RGBA()
	b := src.Bounds()
	dst := image.NewRGBA(b)

	draw.Draw(dst, b, src, b.Min, draw.Src)
	r.drawMask(dst, src, s)

	active := s.HasSelection && !s.Rect.Empty()
	if active {
		strokeRect(dst, r.toPhysical(s.Rect), r.px(outlineWidth), accentColor)
		if s.Finished {
			r.drawHandles(dst, s.Rect)
		}
	}
	if !s.Finished && s.PointerValid {
		r.drawMagnifier(dst, s.Pointer)
	}
	if active {
		r.drawSizeLabel(dst, s.Rect)
	} else {
		r.drawHint(dst)
	}
	return dst
}

func (r *Renderer) drawMask(dst, src *image.RGBA, s Scene) {
	b := dst.Bounds()
	draw.Draw(dst, b, image.NewUniform(maskColor), image.Point{}, draw.Over)
	if !s.HasSelection || s.Rect.Empty() {
		return
	}
	hole := screenshot.ToPhysical(s.Rect, r.frame.DevicePixelRatio, b)
	if hole.Empty() {
		return
	}
	draw.Draw(dst, hole, src, hole.Min, draw.Src)
}

func (r *Renderer) drawHandles(dst *image.RGBA, rect image.Rectangle) {
	w := r.px(outlineWidth)
	for _, h := range selection.Handles {
		hr := r.toPhysical(selection.HandleRect(rect, h))
		fillRect(dst, hr, handleFill)
		strokeRect(dst, hr, w, accentColor)
	}
}

// PixelColor samples the capture under logical point pos, clamped to the
// bitmap. The last (position, color) pair is cached.
func (r *Renderer) PixelColor(pos image.Point) color.RGBA {
	if r.colorValid && pos == r.colorPos {
		return r.colorValue
	}
	src := r.frame.RGBA()
	p := screenshot.ToPhysicalPoint(pos, r.frame.DevicePixelRatio, src.Bounds())
	c := src.RGBAAt(p.X, p.Y)
	r.colorPos, r.colorValue, r.colorValid = pos, c, true
	return c
}

// ClearCache drops the loupe source and the sampled color.
func (r *Renderer) ClearCache() {
	r.cache.Invalidate()
	r.colorValid = false
}

// px scales a logical length to physical pixels, never rounding a positive length to zero.
func (r *Renderer) px(v int) int {
	n := int(math.Round(float64(v) * r.frame.DevicePixelRatio))
	if n == 0 && v > 0 {
		return 1
	}
	return n
}

// toPhysical scales a logical rectangle without clipping it.
func (r *Renderer) toPhysical(lr image.Rectangle) image.Rectangle {
	return image.Rect(r.px(lr.Min.X), r.px(lr.Min.Y), r.px(lr.Max.X), r.px(lr.Max.Y)).
		Add(r.frame.Bounds().Min)
}

func (r *Renderer) toPhysicalPt(p image.Point) image.Point {
	return image.Pt(r.px(p.X), r.px(p.Y)).Add(r.frame.Bounds().Min)
}

func fillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// strokeRect draws a border of width w centered on the edges of r.
func strokeRect(dst draw.Image, r image.Rectangle, w int, c color.Color) {
	if w <= 0 {
		w = 1
	}
	o := r.Inset(-(w / 2))
	fillRect(dst, image.Rect(o.Min.X, o.Min.Y, o.Max.X, o.Min.Y+w), c)
	fillRect(dst, image.Rect(o.Min.X, o.Max.Y-w, o.Max.X, o.Max.Y), c)
	fillRect(dst, image.Rect(o.Min.X, o.Min.Y+w, o.Min.X+w, o.Max.Y-w), c)
	fillRect(dst, image.Rect(o.Max.X-w, o.Min.Y+w, o.Max.X, o.Max.Y-w), c)
}

type loupeCache struct {
	pos   image.Point
	img   *image.RGBA
	valid bool
}

func (c *loupeCache) Lookup(pos image.Point) (*image.RGBA, bool) {
	if !c.valid || c.pos != pos {
		return nil, false
	}
	return c.img, true
}

func (c *loupeCache) Store(pos image.Point, img *image.RGBA) {
	c.pos, c.img, c.valid = pos, img, img != nil
}

func (c *loupeCache) Invalidate() {
	c.img, c.valid = nil, false
}
