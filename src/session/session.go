package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"screen-clip/src/clipboard"
	"screen-clip/src/screenshot"
)

var (
	ErrSelectionCancelled = errors.New("selection cancelled")
	ErrNoSelection        = errors.New("no finished selection")
)

// CaptureFunc produces the frozen frame a session works on.
type CaptureFunc func() (*screenshot.Frame, error)

// RegionSelectorFunc runs an interactive session over frame. It returns the
// outcome, or cancelled=true when the user backed out.
type RegionSelectorFunc func(ctx context.Context, frame *screenshot.Frame) (Outcome, bool, error)

// CommitSink receives a confirmed selection. It crops frame itself using the
// frame's device pixel ratio and returns a short description of where the
// image went.
type CommitSink interface {
	Commit(rect image.Rectangle, frame *screenshot.Frame) (string, error)
}

type Options struct {
	Capture      CaptureFunc
	SelectRegion RegionSelectorFunc
	// Target handles ActionOk, SaveTarget handles ActionSave.
	Target     CommitSink
	SaveTarget CommitSink
	// Warn surfaces sink failures to the user.
	Warn func(title, message string)
}

type Result struct {
	Outcome Outcome
	Detail  string
}

// Execute runs one capture, select and commit cycle.
func Execute(ctx context.Context, opts Options) (Result, error) {
	if opts.Capture == nil {
		return Result{}, errors.New("capture is required")
	}
	if opts.SelectRegion == nil {
		return Result{}, errors.New("select region is required")
	}
	if opts.Target == nil {
		return Result{}, errors.New("target is required")
	}
	warn := opts.Warn
	if warn == nil {
		warn = func(title, message string) { log.Printf("%s: %s", title, message) }
	}

	frame, err := opts.Capture()
	if err != nil {
		warn("Screen Clip", fmt.Sprintf("Screen capture failed: %v", err))
		return Result{}, fmt.Errorf("capture failed: %w", err)
	}

	outcome, cancelled, err := opts.SelectRegion(ctx, frame)
	if err != nil {
		return Result{}, fmt.Errorf("selection failed: %w", err)
	}
	if cancelled {
		return Result{Outcome: Outcome{Action: ActionCancel}}, ErrSelectionCancelled
	}

	sink := opts.Target
	if outcome.Action == ActionSave && opts.SaveTarget != nil {
		sink = opts.SaveTarget
	}
	detail, err := sink.Commit(outcome.Rect, frame)
	if err != nil {
		warn("Screen Clip", fmt.Sprintf("Could not %s the selection: %v", outcome.Action, err))
		return Result{Outcome: outcome}, err
	}
	log.Printf("SESSION: committed %v via %s to %s", outcome.Rect, outcome.Action, detail)
	return Result{Outcome: outcome, Detail: detail}, nil
}

func crop(rect image.Rectangle, frame *screenshot.Frame) (*image.NRGBA, error) {
	if frame == nil {
		return nil, screenshot.ErrEmptyCapture
	}
	if rect.Empty() {
		return nil, ErrNoSelection
	}
	return frame.Crop(rect)
}

// ClipboardTarget writes the crop to the system clipboard as PNG.
type ClipboardTarget struct{}

func (ClipboardTarget) Commit(rect image.Rectangle, frame *screenshot.Frame) (string, error) {
	img, err := crop(rect, frame)
	if err != nil {
		return "", err
	}
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return "", err
	}
	if err := clipboard.WriteImage(data); err != nil {
		return "", fmt.Errorf("clipboard error: %w", err)
	}
	return "clipboard", nil
}

// FileTarget saves the crop as screenshot_YYYYMMDD_HHMMSS.png in Dir.
type FileTarget struct {
	Dir string
	Now func() time.Time
}

// FileName returns the name used for a capture taken at t.
func FileName(t time.Time) string {
	return "screenshot_" + t.Format("20060102_150405") + ".png"
}

func (t FileTarget) Commit(rect image.Rectangle, frame *screenshot.Frame) (string, error) {
	img, err := crop(rect, frame)
	if err != nil {
		return "", err
	}
	now := t.Now
	if now == nil {
		now = time.Now
	}
	dir := t.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(now()))
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	return path, nil
}

// WriterTarget streams the crop as PNG to Writer, stdout by default.
type WriterTarget struct {
	Writer io.Writer
}

func (t WriterTarget) Commit(rect image.Rectangle, frame *screenshot.Frame) (string, error) {
	img, err := crop(rect, frame)
	if err != nil {
		return "", err
	}
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return "", err
	}
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	if _, err := w.Write(data); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d bytes", len(data)), nil
}

// ColorClipboard adapts the clipboard package to TextClipboard.
type ColorClipboard struct{}

func (ColorClipboard) WriteText(text string) error {
	return clipboard.Write(text)
}
