package render

import (
	"fmt"
	"image/color"
)

// ColorToHex formats c as uppercase #RRGGBB, ignoring alpha.
func ColorToHex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B)
}
