package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"

	"screen-clip/src/clipboard"
	"screen-clip/src/config"
	"screen-clip/src/eventloop"
	"screen-clip/src/notification"
	"screen-clip/src/overlay"
	"screen-clip/src/screenshot"
	"screen-clip/src/session"
	"screen-clip/src/singleinstance"
)

// runCapture freezes the primary screen, runs the overlay on it and commits
// the result, all in this process.
func runCapture(ctx context.Context, cfg *config.Config) (session.Result, error) {
	if err := clipboard.Init(); err != nil {
		notification.Warning("Screen Clip", fmt.Sprintf("Clipboard unavailable: %v", err))
		return session.Result{}, fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	sel := overlay.NewSelector(overlay.Options{
		Clipboard:        session.ColorClipboard{},
		ThrottleInterval: cfg.ThrottleInterval,
		ReassertInterval: cfg.FocusCheckInterval,
	})
	res, err := session.Execute(ctx, captureOptions(cfg, sel.Select))
	if err != nil {
		return res, err
	}
	if res.Outcome.Action == session.ActionSave {
		notification.Info("Screen Clip", "Saved to "+res.Detail)
	}
	return res, nil
}

func captureOptions(cfg *config.Config, selectRegion session.RegionSelectorFunc) session.Options {
	file := session.FileTarget{Dir: cfg.SaveDir}
	var primary session.CommitSink = session.ClipboardTarget{}
	if cfg.Output == config.OutputFile {
		primary = file
	}
	return session.Options{
		Capture: func() (*screenshot.Frame, error) {
			return screenshot.CapturePrimary(cfg.DevicePixelRatio)
		},
		SelectRegion: selectRegion,
		Target:       primary,
		SaveTarget:   file,
		Warn:         notification.Warning,
	}
}

// childRunner starts exe with args for each capture. An exit status of
// exitCancelled is reported as a cancelled selection.
func childRunner(exe string, args ...string) eventloop.CaptureRunner {
	return func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, exe, args...)
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
		err := cmd.Run()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == exitCancelled {
			return session.ErrSelectionCancelled
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("capture process failed: %w", err)
		}
		return nil
	}
}

type delegateClient interface {
	TryCapture(ctx context.Context) (bool, string, error)
}

func newDelegateClient() delegateClient { return singleinstance.NewClient() }

// handleRunOnceWithDelegation hands the capture to a running resident so only
// one overlay is ever open. Without a resident, or when the resident cannot
// be reached, fallback runs the capture locally.
func handleRunOnceWithDelegation(ctx context.Context, client delegateClient, fallback func() error) error {
	delegated, detail, err := client.TryCapture(ctx)
	switch {
	case delegated && err == nil:
		log.Printf("MAIN: capture delegated to resident (%s)", detail)
		return nil
	case errors.Is(err, session.ErrSelectionCancelled), errors.Is(err, singleinstance.ErrResidentBusy):
		return err
	case err != nil:
		log.Printf("MAIN: delegation error: %v; capturing standalone", err)
	default:
		log.Printf("MAIN: no resident detected, capturing standalone")
	}
	return fallback()
}
