package render

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// HintText is shown at the top of the canvas until a selection exists.
const HintText = "Drag to select a region, ESC to cancel"

var (
	labelFace     = basicfont.Face7x13
	sizeLabelFill = color.NRGBA{R: 0x29, G: 0x2c, B: 0x33, A: 255}
	hintFill      = color.NRGBA{R: 125, G: 125, B: 125, A: 180}
	labelText     = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

const (
	sizeLabelMargin = 8
	hintTop         = 30
)

// SizeLabel is the text of the dimensions label for rect.
func SizeLabel(rect image.Rectangle) string {
	return fmt.Sprintf("%d × %d", rect.Dx(), rect.Dy())
}

func drawText(dst *image.RGBA, baseline image.Point, s string, c color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: labelFace,
		Dot:  fixed.P(baseline.X, baseline.Y),
	}
	d.DrawString(s)
}

// labelBox returns the physical size of a padded label holding s.
func (r *Renderer) labelBox(s string, padX, padY int) image.Point {
	w := font.MeasureString(labelFace, s).Ceil()
	return image.Pt(w+2*r.px(padX), labelFace.Height+2*r.px(padY))
}

func (r *Renderer) drawLabel(dst *image.RGBA, at image.Point, s string, padX, padY int, fill color.Color) {
	box := r.labelBox(s, padX, padY)
	fillRect(dst, image.Rectangle{Min: at, Max: at.Add(box)}, fill)
	baseline := at.Add(image.Pt(r.px(padX), r.px(padY)+labelFace.Ascent))
	drawText(dst, baseline, s, labelText)
}

// drawSizeLabel places the dimensions label above the selection's top-left
// corner, inside the selection when there is no room above, and shifted left
// when it would leave the canvas.
func (r *Renderer) drawSizeLabel(dst *image.RGBA, rect image.Rectangle) {
	s := SizeLabel(rect)
	b := dst.Bounds()
	box := r.labelBox(s, 6, 3)
	p := r.toPhysicalPt(rect.Min)
	x := p.X
	y := p.Y - r.px(sizeLabelMargin)
	if y-box.Y < b.Min.Y+r.px(4) {
		y = p.Y + box.Y
	}
	if x+box.X > b.Max.X {
		x = b.Max.X - box.X - r.px(4)
	}
	r.drawLabel(dst, image.Pt(x, y-box.Y), s, 6, 3, sizeLabelFill)
}

func (r *Renderer) drawHint(dst *image.RGBA) {
	b := dst.Bounds()
	box := r.labelBox(HintText, 12, 6)
	x := b.Min.X + (b.Dx()-box.X)/2
	r.drawLabel(dst, image.Pt(x, b.Min.Y+r.px(hintTop)), HintText, 12, 6, hintFill)
}
