package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
	"sync"
)

const iconSize = 32

var (
	iconOnce  sync.Once
	iconBytes []byte
)

// Icon returns the tray icon in the format systray expects on this platform:
// an ICO container on Windows and a PNG elsewhere.
func Icon() []byte {
	iconOnce.Do(func() {
		pngData := iconPNG()
		if runtime.GOOS == "windows" {
			iconBytes = wrapICO(pngData, iconSize)
		} else {
			iconBytes = pngData
		}
	})
	return iconBytes
}

// iconPNG draws a dashed selection frame with a solid bottom-right corner.
func iconPNG() []byte {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	accent := color.NRGBA{0, 170, 255, 255}
	dark := color.NRGBA{51, 51, 51, 255}

	const lo, hi = 4, iconSize - 5
	for i := lo; i <= hi; i++ {
		if ((i-lo)/3)%2 == 0 {
			for w := 0; w < 2; w++ {
				img.SetNRGBA(i, lo+w, accent)
				img.SetNRGBA(i, hi-w, accent)
				img.SetNRGBA(lo+w, i, accent)
				img.SetNRGBA(hi-w, i, accent)
			}
		}
	}
	for y := hi - 7; y <= hi+2; y++ {
		for x := hi - 7; x <= hi+2; x++ {
			if x < iconSize && y < iconSize && (x >= hi-1 || y >= hi-1) {
				img.SetNRGBA(x, y, dark)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

// wrapICO embeds a PNG image in a single-entry ICO container.
func wrapICO(pngData []byte, size int) []byte {
	var buf bytes.Buffer
	le := binary.LittleEndian
	binary.Write(&buf, le, [3]uint16{0, 1, 1}) // reserved, type icon, one image
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	buf.Write([]byte{dim, dim, 0, 0})
	binary.Write(&buf, le, uint16(1))  // planes
	binary.Write(&buf, le, uint16(32)) // bpp
	binary.Write(&buf, le, uint32(len(pngData)))
	binary.Write(&buf, le, uint32(6+16))
	buf.Write(pngData)
	return buf.Bytes()
}
