package session

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"screen-clip/src/cursor"
	"screen-clip/src/screenshot"
	"screen-clip/src/selection"
)

type fakeHost struct {
	redraws int
	cursors []cursor.Shape
	queue   []func()
}

func (h *fakeHost) RequestRedraw()            { h.redraws++ }
func (h *fakeHost) SetCursor(s cursor.Shape) { h.cursors = append(h.cursors, s) }
func (h *fakeHost) Post(fn func())            { h.queue = append(h.queue, fn) }

// drain runs one loop iteration worth of posted work.
func (h *fakeHost) drain() {
	q := h.queue
	h.queue = nil
	for _, fn := range q {
		fn()
	}
}

type fakeClipboard struct {
	texts []string
	err   error
}

func (c *fakeClipboard) WriteText(s string) error {
	if c.err != nil {
		return c.err
	}
	c.texts = append(c.texts, s)
	return nil
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testFrame(t *testing.T, w, h int) *screenshot.Frame {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x33, A: 0xff})
		}
	}
	f, err := screenshot.NewFrame(img, 1)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	return f
}

type harness struct {
	s         *Session
	host      *fakeHost
	clock     *testClock
	clip      *fakeClipboard
	finished  []Outcome
	cancelled int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{host: &fakeHost{}, clock: &testClock{t: time.Unix(100, 0)}, clip: &fakeClipboard{}}
	s, err := New(testFrame(t, 400, 300), Config{
		Host:        h.host,
		Clipboard:   h.clip,
		Now:         h.clock.now,
		OnFinished:  func(o Outcome) { h.finished = append(h.finished, o) },
		OnCancelled: func() { h.cancelled++ },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.s = s
	return h
}

// drag performs a primary-button gesture, spacing events past the throttle interval.
func (h *harness) drag(from, to image.Point) {
	h.s.Handle(PointerPressed{Pos: from})
	h.clock.advance(20 * time.Millisecond)
	h.s.Handle(PointerMoved{Pos: to})
	h.clock.advance(20 * time.Millisecond)
	h.s.Handle(PointerReleased{Pos: to})
	h.clock.advance(20 * time.Millisecond)
}

func TestNewRejectsEmptyCapture(t *testing.T) {
	if _, err := New(nil, Config{Host: &fakeHost{}}); !errors.Is(err, screenshot.ErrEmptyCapture) {
		t.Fatalf("nil frame: err = %v", err)
	}
	if _, err := New(testFrame(t, 10, 10), Config{}); err == nil {
		t.Fatal("expected error without host")
	}
}

func TestDragCreatesSelection(t *testing.T) {
	h := newHarness(t)
	h.drag(image.Pt(110, 160), image.Pt(10, 10))
	e := h.s.Engine()
	if e.Mode() != selection.ModeFinished || e.Rect() != image.Rect(10, 10, 110, 160) {
		t.Fatalf("got %s %v", e.Mode(), e.Rect())
	}
	if h.host.redraws != 3 {
		t.Fatalf("redraws = %d, want one per event", h.host.redraws)
	}
}

func TestTinyDragIsDiscarded(t *testing.T) {
	h := newHarness(t)
	h.drag(image.Pt(0, 0), image.Pt(5, 5))
	if h.s.Engine().HasSelection() {
		t.Fatal("tiny drag kept a selection")
	}
}

func TestEscapeCancelsOnNextIteration(t *testing.T) {
	h := newHarness(t)
	h.drag(image.Pt(10, 10), image.Pt(110, 160))
	h.s.Handle(KeyPressed{Key: KeyEscape})
	if h.cancelled != 0 {
		t.Fatal("cancel notification must not run synchronously")
	}
	if !h.s.Ended() || h.s.Engine().HasSelection() {
		t.Fatal("session should be ended with the selection dropped")
	}
	h.s.Handle(KeyPressed{Key: KeyEscape})
	h.s.Handle(PointerPressed{Pos: image.Pt(50, 50)})
	h.host.drain()
	if h.cancelled != 1 {
		t.Fatalf("cancelled = %d, want 1", h.cancelled)
	}
	if h.s.Engine().HasSelection() {
		t.Fatal("events after cancel must be ignored")
	}
}

func TestKeysConfirmSelection(t *testing.T) {
	tests := []struct {
		key  Key
		want Action
	}{
		{KeyEnter, ActionOk},
		{KeyS, ActionSave},
	}
	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			h := newHarness(t)
			h.s.Handle(KeyPressed{Key: tt.key})
			h.host.drain()
			if len(h.finished) != 0 || h.s.Ended() {
				t.Fatal("confirm without a selection must be ignored")
			}

			h.drag(image.Pt(10, 10), image.Pt(110, 160))
			h.s.Handle(KeyPressed{Key: tt.key})
			if len(h.finished) != 0 {
				t.Fatal("finish notification must be deferred")
			}
			h.host.drain()
			want := Outcome{Action: tt.want, Rect: image.Rect(10, 10, 110, 160)}
			if len(h.finished) != 1 || h.finished[0] != want {
				t.Fatalf("finished = %+v, want %+v", h.finished, want)
			}
		})
	}
}

func TestPerformOkWithoutSelection(t *testing.T) {
	h := newHarness(t)
	if err := h.s.Perform(ActionOk); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("err = %v", err)
	}
	if err := h.s.Perform(Action(99)); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestCopyColor(t *testing.T) {
	h := newHarness(t)
	h.s.Handle(PointerMoved{Pos: image.Pt(0x12, 0x34)})
	h.s.Handle(KeyPressed{Key: KeyC})
	if len(h.clip.texts) != 1 || h.clip.texts[0] != "#123433" {
		t.Fatalf("copied %v", h.clip.texts)
	}

	h.drag(image.Pt(10, 10), image.Pt(110, 160))
	h.s.Handle(KeyPressed{Key: KeyC})
	if len(h.clip.texts) != 1 {
		t.Fatal("C must be ignored once the selection is finished")
	}

	h2 := newHarness(t)
	h2.clip.err = errors.New("busy")
	if err := h2.s.Perform(ActionCopyColor); err == nil {
		t.Fatal("expected clipboard error")
	}
}

func TestResizeThroughHandle(t *testing.T) {
	h := newHarness(t)
	h.drag(image.Pt(10, 10), image.Pt(110, 160))
	h.s.Handle(PointerPressed{Pos: image.Pt(110, 160)})
	if !h.s.Engine().IsResizing() || h.s.Cursor() != cursor.ResizeNWSE {
		t.Fatalf("press on corner: mode %s cursor %s", h.s.Engine().Mode(), h.s.Cursor())
	}
	h.s.Handle(PointerMoved{Pos: image.Pt(130, 180)})
	h.s.Handle(PointerReleased{Pos: image.Pt(130, 180)})
	if got := h.s.Engine().Rect(); got != image.Rect(10, 10, 130, 180) {
		t.Fatalf("rect = %v", got)
	}
}

func TestMoveInsideSelection(t *testing.T) {
	h := newHarness(t)
	h.drag(image.Pt(10, 10), image.Pt(110, 160))
	h.s.Handle(PointerPressed{Pos: image.Pt(60, 80)})
	if !h.s.Engine().IsMoving() {
		t.Fatalf("mode = %s", h.s.Engine().Mode())
	}
	h.s.Handle(PointerMoved{Pos: image.Pt(90, 100)})
	h.s.Handle(PointerReleased{Pos: image.Pt(90, 100)})
	if got := h.s.Engine().Rect(); got != image.Rect(40, 30, 140, 180) {
		t.Fatalf("rect = %v", got)
	}

	h.s.Handle(PointerPressed{Pos: image.Pt(90, 100)})
	h.s.Handle(PointerMoved{Pos: image.Pt(2000, 2000)})
	h.s.Handle(PointerReleased{Pos: image.Pt(2000, 2000)})
	if got := h.s.Engine().Rect(); got != image.Rect(300, 150, 400, 300) {
		t.Fatalf("rect after large move = %v", got)
	}
}

func TestHoverWhenFinishedOnlyUpdatesCursor(t *testing.T) {
	h := newHarness(t)
	h.drag(image.Pt(10, 10), image.Pt(110, 160))
	before := h.host.redraws
	h.s.Handle(PointerMoved{Pos: image.Pt(60, 80)})
	h.clock.advance(time.Second)
	h.s.Handle(PointerMoved{Pos: image.Pt(300, 280)})
	if h.host.redraws != before {
		t.Fatalf("hover triggered %d redraws", h.host.redraws-before)
	}
	want := []cursor.Shape{cursor.Move, cursor.Arrow}
	if len(h.host.cursors) != 2 || h.host.cursors[0] != want[0] || h.host.cursors[1] != want[1] {
		t.Fatalf("cursors = %v, want %v", h.host.cursors, want)
	}
}

func TestIdleMovesCoalesceAndFlushOnTick(t *testing.T) {
	h := newHarness(t)
	h.s.Handle(PointerEntered{Pos: image.Pt(5, 5)})
	h.s.Handle(PointerEntered{Pos: image.Pt(5, 5)})
	for i := 0; i < 5; i++ {
		h.s.Handle(PointerMoved{Pos: image.Pt(6+i, 5)})
	}
	if h.host.redraws != 1 {
		t.Fatalf("redraws = %d, want 1 inside one interval", h.host.redraws)
	}
	h.s.Tick()
	if h.host.redraws != 1 {
		t.Fatal("tick inside the interval must wait")
	}
	h.clock.advance(16 * time.Millisecond)
	h.s.Tick()
	if h.host.redraws != 2 {
		t.Fatalf("redraws = %d, want the coalesced frame flushed", h.host.redraws)
	}
	if pos, ok := h.s.Pointer(); !ok || pos != image.Pt(10, 5) {
		t.Fatalf("pointer = %v %v", pos, ok)
	}
}

func TestFinishingSelectionDropsMagnifierCache(t *testing.T) {
	h := newHarness(t)
	h.s.Handle(PointerMoved{Pos: image.Pt(40, 40)})
	h.s.Render()
	if !h.s.Throttler().MagnifierCache().Valid() {
		t.Fatal("expected loupe to be cached after render")
	}
	h.clock.advance(time.Second)
	h.drag(image.Pt(10, 10), image.Pt(110, 160))
	if h.s.Throttler().MagnifierCache().Valid() {
		t.Fatal("finishing the selection must invalidate the loupe cache")
	}
	if out := h.s.Render(); out.Bounds() != image.Rect(0, 0, 400, 300) {
		t.Fatalf("frame bounds = %v", out.Bounds())
	}
}

func TestSecondaryButtonIgnored(t *testing.T) {
	h := newHarness(t)
	h.s.Handle(PointerPressed{Pos: image.Pt(10, 10), Button: ButtonSecondary})
	if h.s.Engine().HasSelection() {
		t.Fatal("secondary button started a selection")
	}
}
