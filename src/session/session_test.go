package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"screen-clip/src/screenshot"
)

type recordingSink struct {
	rects []image.Rectangle
	err   error
}

func (s *recordingSink) Commit(rect image.Rectangle, frame *screenshot.Frame) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.rects = append(s.rects, rect)
	return "recorded", nil
}

func TestExecuteRoutesByAction(t *testing.T) {
	frame := testFrame(t, 200, 200)
	ok := &recordingSink{}
	save := &recordingSink{}
	rect := image.Rect(10, 10, 60, 60)

	for _, action := range []Action{ActionOk, ActionSave} {
		res, err := Execute(context.Background(), Options{
			Capture: func() (*screenshot.Frame, error) { return frame, nil },
			SelectRegion: func(ctx context.Context, f *screenshot.Frame) (Outcome, bool, error) {
				if f != frame {
					t.Fatal("selector did not receive the captured frame")
				}
				return Outcome{Action: action, Rect: rect}, false, nil
			},
			Target:     ok,
			SaveTarget: save,
		})
		if err != nil {
			t.Fatalf("%s: %v", action, err)
		}
		if res.Detail != "recorded" || res.Outcome.Action != action {
			t.Fatalf("%s: result %+v", action, res)
		}
	}
	if len(ok.rects) != 1 || len(save.rects) != 1 {
		t.Fatalf("ok=%d save=%d commits", len(ok.rects), len(save.rects))
	}
}

func TestExecuteCancelled(t *testing.T) {
	sink := &recordingSink{}
	_, err := Execute(context.Background(), Options{
		Capture: func() (*screenshot.Frame, error) { return testFrame(t, 20, 20), nil },
		SelectRegion: func(context.Context, *screenshot.Frame) (Outcome, bool, error) {
			return Outcome{}, true, nil
		},
		Target: sink,
	})
	if !errors.Is(err, ErrSelectionCancelled) {
		t.Fatalf("err = %v", err)
	}
	if len(sink.rects) != 0 {
		t.Fatal("cancelled selection was committed")
	}
}

func TestExecuteWarnsOnFailures(t *testing.T) {
	var warnings []string
	warn := func(title, msg string) { warnings = append(warnings, msg) }

	_, err := Execute(context.Background(), Options{
		Capture:      func() (*screenshot.Frame, error) { return nil, screenshot.ErrEmptyCapture },
		SelectRegion: func(context.Context, *screenshot.Frame) (Outcome, bool, error) { t.Fatal("selector ran"); return Outcome{}, false, nil },
		Target:       &recordingSink{},
		Warn:         warn,
	})
	if !errors.Is(err, screenshot.ErrEmptyCapture) || len(warnings) != 1 {
		t.Fatalf("capture failure: err=%v warnings=%v", err, warnings)
	}

	sinkErr := errors.New("disk full")
	_, err = Execute(context.Background(), Options{
		Capture: func() (*screenshot.Frame, error) { return testFrame(t, 20, 20), nil },
		SelectRegion: func(context.Context, *screenshot.Frame) (Outcome, bool, error) {
			return Outcome{Action: ActionOk, Rect: image.Rect(0, 0, 10, 10)}, false, nil
		},
		Target: &recordingSink{err: sinkErr},
		Warn:   warn,
	})
	if !errors.Is(err, sinkErr) || len(warnings) != 2 {
		t.Fatalf("sink failure: err=%v warnings=%v", err, warnings)
	}
}

func TestExecuteRequiresCallbacks(t *testing.T) {
	if _, err := Execute(context.Background(), Options{}); err == nil {
		t.Fatal("expected error without callbacks")
	}
}

func TestFileTarget(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	stamp := time.Date(2024, 3, 5, 7, 8, 9, 0, time.Local)
	target := FileTarget{Dir: dir, Now: func() time.Time { return stamp }}

	path, err := target.Commit(image.Rect(10, 20, 40, 60), testFrame(t, 100, 100))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if want := filepath.Join(dir, "screenshot_20240305_070809.png"); path != want {
		t.Fatalf("path = %s, want %s", path, want)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := screenshot.DecodePNG(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(30, 40) {
		t.Fatalf("saved size = %v", got)
	}
}

func TestWriterTargetScalesByRatio(t *testing.T) {
	big := testFrame(t, 200, 200)
	frame, err := screenshot.NewFrame(big.Image, 2)
	if err != nil {
		t.Fatalf("NewFrame: %v", err)
	}
	var buf bytes.Buffer
	if _, err := (WriterTarget{Writer: &buf}).Commit(image.Rect(10, 10, 60, 40), frame); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	img, err := screenshot.DecodePNG(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Size(); got != image.Pt(100, 60) {
		t.Fatalf("crop size = %v, want physical 100x60", got)
	}
}

func TestTargetsRejectEmptySelection(t *testing.T) {
	var buf bytes.Buffer
	if _, err := (WriterTarget{Writer: &buf}).Commit(image.Rectangle{}, testFrame(t, 20, 20)); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("empty rect err = %v", err)
	}
	if _, err := (WriterTarget{Writer: &buf}).Commit(image.Rect(0, 0, 5, 5), nil); !errors.Is(err, screenshot.ErrEmptyCapture) {
		t.Fatalf("nil frame err = %v", err)
	}
	if _, err := (WriterTarget{Writer: &buf}).Commit(image.Rect(50, 50, 90, 90), testFrame(t, 20, 20)); !errors.Is(err, screenshot.ErrEmptyRegion) {
		t.Fatalf("off-frame err = %v", err)
	}
}

func TestParseActionAndKeys(t *testing.T) {
	for _, name := range []string{"ok", "save", "cancel", "copy-color"} {
		a, err := ParseAction(name)
		if err != nil || a.String() != name {
			t.Errorf("ParseAction(%q) = %v, %v", name, a, err)
		}
	}
	if _, err := ParseAction("pin"); err == nil {
		t.Error("expected error for unknown action")
	}
	if a, ok := ActionForKey(KeyEscape); !ok || a != ActionCancel {
		t.Errorf("Escape -> %v %v", a, ok)
	}
	if _, ok := ActionForKey(KeyUnknown); ok {
		t.Error("unknown key mapped to an action")
	}
}
