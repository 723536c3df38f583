package eventloop

import (
	"context"
	"errors"
	"log"

	"screen-clip/src/session"
)

// CaptureRunner performs one complete capture session, typically in a child process.
type CaptureRunner func(ctx context.Context) error

// ErrBusy is replied to requests that arrive while a capture is running.
var ErrBusy = errors.New("capture already in progress")

type request struct {
	source string
	reply  func(error)
}

// Coordinator is the resident-mode loop: it serializes capture requests from
// the hotkey and the tray so only one overlay is ever open.
type Coordinator struct {
	run      CaptureRunner
	busy     bool
	pending  func(error)
	requests chan request
	results  chan error

	// OnBusyChanged is called on the coordinator goroutine when a capture starts or ends.
	OnBusyChanged func(busy bool)
	// OnError is called for capture failures other than a user cancel.
	OnError func(err error)
}

func NewCoordinator(run CaptureRunner) *Coordinator {
	return &Coordinator{
		run:      run,
		requests: make(chan request, 4),
		results:  make(chan error, 1),
	}
}

// Request asks for a capture. It never blocks; requests beyond the buffer are dropped.
func (c *Coordinator) Request(source string) bool {
	return c.RequestWithReply(source, nil)
}

// RequestWithReply is Request with a callback that receives the capture's
// result, or ErrBusy. reply runs on the coordinator goroutine.
func (c *Coordinator) RequestWithReply(source string, reply func(error)) bool {
	select {
	case c.requests <- request{source: source, reply: reply}:
		return true
	default:
		log.Printf("COORDINATOR: request from %s dropped, queue full", source)
		return false
	}
}

// Busy reports whether a capture is in progress. Only meaningful on the coordinator goroutine.
func (c *Coordinator) Busy() bool { return c.busy }

// Run processes requests until ctx is cancelled.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-c.requests:
			c.handleRequest(ctx, req)
		case err := <-c.results:
			c.handleResult(err)
		}
	}
}

func (c *Coordinator) handleRequest(ctx context.Context, req request) {
	if c.busy {
		log.Printf("COORDINATOR: %s request ignored, capture already running", req.source)
		if req.reply != nil {
			req.reply(ErrBusy)
		}
		return
	}
	log.Printf("COORDINATOR: capture requested by %s", req.source)
	c.pending = req.reply
	c.setBusy(true)
	go func() {
		c.results <- c.run(ctx)
	}()
}

func (c *Coordinator) handleResult(err error) {
	c.setBusy(false)
	if reply := c.pending; reply != nil {
		c.pending = nil
		reply(err)
	}
	switch {
	case err == nil:
		log.Printf("COORDINATOR: capture completed")
	case errors.Is(err, session.ErrSelectionCancelled):
		log.Printf("COORDINATOR: capture cancelled")
	case errors.Is(err, context.Canceled):
	default:
		log.Printf("COORDINATOR: capture failed: %v", err)
		if c.OnError != nil {
			c.OnError(err)
		}
	}
}

func (c *Coordinator) setBusy(b bool) {
	c.busy = b
	if c.OnBusyChanged != nil {
		c.OnBusyChanged(b)
	}
}
