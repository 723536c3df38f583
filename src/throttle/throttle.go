package throttle

import (
	"image"
	"log"
	"time"
)

// DefaultInterval is the minimum spacing between accepted redraws (about 60 fps).
const DefaultInterval = 16 * time.Millisecond

// Throttler coalesces redraw requests so at most one frame is produced per
// interval. State updates are never dropped, only the redraw requests for them.
//
// Not safe for concurrent use; it lives on the session's event loop.
type Throttler struct {
	interval time.Duration
	now      func() time.Time
	redraw   func()

	last     time.Time
	started  bool
	pending  bool
	magPos   image.Point
	magValid bool

	cache *MagnifierCache
}

// New returns a throttler that calls redraw for every accepted update.
func New(interval time.Duration, redraw func()) *Throttler {
	return NewWithClock(interval, redraw, time.Now)
}

// NewWithClock is New with an injectable clock. time.Now carries a monotonic
// reading, so wall-clock jumps do not affect the interval.
func NewWithClock(interval time.Duration, redraw func(), now func() time.Time) *Throttler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if redraw == nil {
		redraw = func() {}
	}
	return &Throttler{
		interval: interval,
		now:      now,
		redraw:   redraw,
		cache:    &MagnifierCache{},
	}
}

// ShouldUpdate reports whether the interval has elapsed since the last accepted
// update and, if so, records now as the new reference. The first call is always accepted.
func (t *Throttler) ShouldUpdate() bool {
	now := t.now()
	if t.started && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	t.started = true
	return true
}

// TriggerOptimizedUpdate requests a redraw if the throttle allows it. A rejected
// request is remembered and picked up by the next accepted update or FlushPending.
func (t *Throttler) TriggerOptimizedUpdate() bool {
	if !t.ShouldUpdate() {
		t.pending = true
		return false
	}
	t.pending = false
	t.redraw()
	return true
}

// UpdateMagnifierRegion requests a redraw for a new pointer position. Repeats of
// the last position are ignored.
func (t *Throttler) UpdateMagnifierRegion(pos image.Point) bool {
	if t.magValid && pos == t.magPos {
		return false
	}
	t.magPos = pos
	t.magValid = true
	return t.TriggerOptimizedUpdate()
}

// ForceFullRedraw redraws immediately, bypassing and resetting the throttle.
func (t *Throttler) ForceFullRedraw() {
	t.last = t.now()
	t.started = true
	t.pending = false
	t.redraw()
}

// FlushPending delivers a coalesced redraw once the interval allows it. It is
// meant to be run by a periodic task so the final frame of a burst is not lost.
func (t *Throttler) FlushPending() bool {
	if !t.pending || !t.ShouldUpdate() {
		return false
	}
	t.pending = false
	t.redraw()
	return true
}

// Pending reports whether a redraw was coalesced and not yet delivered.
func (t *Throttler) Pending() bool { return t.pending }

// SetInterval changes the throttle interval. Non-positive values are ignored.
func (t *Throttler) SetInterval(d time.Duration) {
	if d <= 0 {
		log.Printf("THROTTLE: ignoring non-positive interval %v", d)
		return
	}
	t.interval = d
}

func (t *Throttler) Interval() time.Duration { return t.interval }

// MagnifierCache returns the cache shared with the renderer.
func (t *Throttler) MagnifierCache() *MagnifierCache { return t.cache }

// InvalidateMagnifierCache drops the cached loupe source.
func (t *Throttler) InvalidateMagnifierCache() {
	t.cache.Invalidate()
}

// ClearAllCaches drops the loupe source and forgets the last magnifier position.
func (t *Throttler) ClearAllCaches() {
	t.cache.Invalidate()
	t.magValid = false
}
