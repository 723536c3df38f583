package overlay

import (
	"image"
	"image/color"
)

const (
	cursorSize = 17
	arrowLen   = 7
	headLen    = 3
)

// arrowCursor is a custom cursor with arrows pointing from the center.
type arrowCursor struct {
	img *image.NRGBA
}

func newArrowCursor(dirs ...image.Point) *arrowCursor {
	img := image.NewNRGBA(image.Rect(0, 0, cursorSize, cursorSize))
	c := image.Pt(cursorSize/2, cursorSize/2)

	var core []image.Point
	for _, d := range dirs {
		for k := 0; k <= arrowLen; k++ {
			core = append(core, c.Add(d.Mul(k)))
		}
		tip := c.Add(d.Mul(arrowLen))
		perp := image.Pt(-d.Y, d.X)
		for k := 1; k <= headLen; k++ {
			base := tip.Sub(d.Mul(k))
			for j := -k; j <= k; j++ {
				core = append(core, base.Add(perp.Mul(j)))
			}
		}
	}

	white := color.NRGBA{255, 255, 255, 255}
	for _, p := range core {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if q := p.Add(image.Pt(dx, dy)); q.In(img.Rect) {
					img.SetNRGBA(q.X, q.Y, white)
				}
			}
		}
	}
	black := color.NRGBA{0, 0, 0, 255}
	for _, p := range core {
		if p.In(img.Rect) {
			img.SetNRGBA(p.X, p.Y, black)
		}
	}
	return &arrowCursor{img: img}
}

// Image returns the cursor bitmap with its hot spot at the center.
func (a *arrowCursor) Image() (image.Image, int, int) {
	return a.img, cursorSize / 2, cursorSize / 2
}
