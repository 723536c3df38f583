package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Loupe geometry in logical pixels.
const (
	MagnifierSize    = 120
	MagnifierZoom    = 3
	MagnifierOffset  = 20
	magnifierMargin  = 5
	panelReserve     = 60
	panelGap         = 2
	panelHeight      = 55
	crosshairReach   = 5
	magnifierBorderW = 2
)

var (
	loupeBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 240}
	loupeBorder     = color.NRGBA{A: 200}
	crosshairColor  = color.NRGBA{R: 255, A: 255}
	panelFill       = color.NRGBA{A: 200}
	panelText       = color.NRGBA{R: 160, G: 160, B: 160, A: 255}
)

// PlaceMagnifier returns the logical top-left of the loupe for pointer pos on a
// canvas of the given logical size. The loupe sits down-right of the pointer,
// flips to the other side of an edge it would cross (leaving room for the text
// panel below it), and is finally clamped inside the canvas.
func PlaceMagnifier(pos, canvas image.Point) image.Point {
	x := pos.X + MagnifierOffset
	y := pos.Y + MagnifierOffset
	if x+MagnifierSize > canvas.X {
		x = pos.X - MagnifierSize - MagnifierOffset
	}
	if y+MagnifierSize+panelReserve > canvas.Y {
		y = pos.Y - MagnifierSize - panelReserve - MagnifierOffset
	}
	x = max(magnifierMargin, min(x, canvas.X-MagnifierSize-magnifierMargin))
	y = max(magnifierMargin, min(y, canvas.Y-MagnifierSize-panelReserve-magnifierMargin))
	return image.Pt(x, y)
}

// MagnifierSource returns the physical region of the capture shown in the
// loupe for logical pointer pos: a square of MagnifierSize/MagnifierZoom
// logical pixels centered on the pointer and kept inside the bitmap.
func (r *Renderer) MagnifierSource(pos image.Point) image.Rectangle {
	b := r.frame.Bounds()
	dpr := r.frame.DevicePixelRatio
	size := int(float64(MagnifierSize/MagnifierZoom) * dpr)
	size = min(size, b.Dx(), b.Dy())
	cx := int(float64(pos.X) * dpr)
	cy := int(float64(pos.Y) * dpr)
	x := max(0, min(cx-size/2, b.Dx()-size))
	y := max(0, min(cy-size/2, b.Dy()-size))
	return image.Rect(x, y, x+size, y+size).Add(b.Min)
}

// magnified returns the scaled loupe content for pos, reusing the cached image
// when the pointer has not moved.
func (r *Renderer) magnified(pos image.Point) *image.RGBA {
	if img, ok := r.cache.Lookup(pos); ok {
		return img
	}
	side := r.px(MagnifierSize)
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	src := r.frame.RGBA()
	xdraw.NearestNeighbor.Scale(img, img.Bounds(), src, r.MagnifierSource(pos), draw.Src, nil)
	r.cache.Store(pos, img)
	return img
}

func (r *Renderer) drawMagnifier(dst *image.RGBA, pos image.Point) {
	at := PlaceMagnifier(pos, r.frame.LogicalSize())
	loupe := r.toPhysical(image.Rect(at.X, at.Y, at.X+MagnifierSize, at.Y+MagnifierSize))

	fillRect(dst, loupe, loupeBackground)
	img := r.magnified(pos)
	draw.Draw(dst, loupe, img, img.Bounds().Min, draw.Src)
	strokeRect(dst, loupe, r.px(magnifierBorderW), loupeBorder)

	c := r.toPhysicalPt(at.Add(image.Pt(MagnifierSize/2, MagnifierSize/2)))
	reach := r.px(crosshairReach)
	thick := r.px(1)
	fillRect(dst, image.Rect(c.X-reach, c.Y, c.X+reach+1, c.Y+thick), crosshairColor)
	fillRect(dst, image.Rect(c.X, c.Y-reach, c.X+thick, c.Y+reach+1), crosshairColor)

	panelTop := at.Y + MagnifierSize + panelGap
	fillRect(dst, r.toPhysical(image.Rect(at.X, panelTop, at.X+MagnifierSize, panelTop+panelHeight)), panelFill)
	lines := []string{
		fmt.Sprintf("Pos: (%d, %d)", pos.X, pos.Y),
		"Color: " + ColorToHex(r.PixelColor(pos)),
		"Press C to copy",
	}
	for i, line := range lines {
		baseline := r.toPhysicalPt(image.Pt(at.X+5, at.Y+MagnifierSize+15*(i+1)))
		drawText(dst, baseline, line, panelText)
	}
}
