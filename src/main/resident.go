package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"screen-clip/src/config"
	"screen-clip/src/eventloop"
	"screen-clip/src/hotkey"
	"screen-clip/src/notification"
	"screen-clip/src/session"
	"screen-clip/src/singleinstance"
	"screen-clip/src/tray"
)

// runResident keeps the tray icon and the global hotkey alive and opens one
// capture child at a time.
func runResident(ctx context.Context, cfg *config.Config, opts mainOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := singleinstance.NewServer()
	if err := srv.Start(ctx); err != nil {
		start, _ := singleinstance.PortRange()
		fmt.Printf("screen-clip is already running on port %d\n", start)
		return fmt.Errorf("resident already running: %w", err)
	}
	defer srv.Close()

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}
	coord := eventloop.NewCoordinator(childRunner(exe, opts.childArgs()...))

	idle := fmt.Sprintf("screen-clip - Press %s to capture", cfg.Hotkey)
	t, err := tray.New(tray.Config{
		Title:     "screen-clip",
		Tooltip:   idle,
		OnCapture: func() { coord.Request("tray") },
		OnExit:    cancel,
	})
	if err != nil {
		return fmt.Errorf("failed to create tray icon: %w", err)
	}
	coord.OnBusyChanged = t.SetBusy
	coord.OnError = func(err error) {
		// Warning blocks until dismissed; keep the coordinator responsive.
		go notification.Warning("Screen Clip", fmt.Sprintf("Capture failed: %v", err))
	}

	stopHotkey, err := hotkey.Listen(cfg.Hotkey, func() { coord.Request("hotkey") })
	if err != nil {
		log.Printf("MAIN: hotkey unavailable: %v", err)
		notification.Warning("Screen Clip", fmt.Sprintf("Hotkey %s could not be registered: %v", cfg.Hotkey, err))
	} else {
		defer stopHotkey()
	}

	go serveDelegated(ctx, srv, coord)
	go func() {
		if err := coord.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("MAIN: coordinator stopped: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		t.Destroy()
	}()

	log.Printf("MAIN: screen-clip resident ready, hotkey %s, output %s", cfg.Hotkey, cfg.Output)
	t.Run()
	return nil
}

// serveDelegated forwards run-once clients to the coordinator and answers
// each with its capture result.
func serveDelegated(ctx context.Context, srv singleinstance.Server, coord *eventloop.Coordinator) {
	for {
		conn, err := srv.Next(ctx)
		if err != nil {
			return
		}
		reply := func(err error) {
			if rerr := respond(conn, err); rerr != nil {
				log.Printf("MAIN: failed to answer delegated capture: %v", rerr)
			}
			_ = conn.Close()
		}
		if !coord.RequestWithReply("run-once", reply) {
			reply(eventloop.ErrBusy)
		}
	}
}

func respond(conn singleinstance.Conn, err error) error {
	switch {
	case err == nil:
		return conn.RespondSuccess("")
	case errors.Is(err, session.ErrSelectionCancelled):
		return conn.RespondCancelled()
	case errors.Is(err, eventloop.ErrBusy):
		return conn.RespondBusy()
	default:
		return conn.RespondError(err.Error())
	}
}
