package throttle

import "image"

// MagnifierCache holds the last scaled loupe image keyed by the pointer
// position it was sampled at.
type MagnifierCache struct {
	pos   image.Point
	img   *image.RGBA
	valid bool
}

// Lookup returns the cached image if it was sampled at pos.
func (c *MagnifierCache) Lookup(pos image.Point) (*image.RGBA, bool) {
	if !c.valid || c.pos != pos {
		return nil, false
	}
	return c.img, true
}

// Store replaces the cached entry.
func (c *MagnifierCache) Store(pos image.Point, img *image.RGBA) {
	c.pos = pos
	c.img = img
	c.valid = img != nil
}

func (c *MagnifierCache) Invalidate() {
	c.img = nil
	c.valid = false
}

// Valid reports whether an entry is cached.
func (c *MagnifierCache) Valid() bool { return c.valid }
