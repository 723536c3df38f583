package singleinstance

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"screen-clip/src/session"
)

// usePort points the range at a single free loopback port.
func usePort(t *testing.T) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("loopback unavailable: %v", err)
	}
	port := lis.Addr().(*net.TCPAddr).Port
	lis.Close()
	t.Setenv("SCREEN_CLIP_PORT_START", fmt.Sprint(port))
	t.Setenv("SCREEN_CLIP_PORT_END", fmt.Sprint(port))
}

func startServer(t *testing.T, ctx context.Context) Server {
	t.Helper()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("cannot listen in this environment: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func TestCaptureRoundTrip(t *testing.T) {
	usePort(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := startServer(t, ctx)

	tests := []struct {
		name    string
		respond func(Conn) error
		detail  string
		wantErr error
	}{
		{"success", func(c Conn) error { return c.RespondSuccess("clipboard") }, "clipboard", nil},
		{"cancelled", Conn.RespondCancelled, "", session.ErrSelectionCancelled},
		{"busy", Conn.RespondBusy, "", ErrResidentBusy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			type result struct {
				delegated bool
				detail    string
				err       error
			}
			got := make(chan result, 1)
			go func() {
				d, detail, err := NewClient().TryCapture(ctx)
				got <- result{d, detail, err}
			}()

			conn, err := srv.Next(ctx)
			if err != nil {
				t.Fatalf("next: %v", err)
			}
			if err := tt.respond(conn); err != nil {
				t.Fatalf("respond: %v", err)
			}
			conn.Close()

			r := <-got
			if !r.delegated {
				t.Fatal("expected delegation")
			}
			if r.detail != tt.detail {
				t.Fatalf("detail = %q, want %q", r.detail, tt.detail)
			}
			if !errors.Is(r.err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", r.err, tt.wantErr)
			}
		})
	}
}

func TestErrorResponseCarriesMessage(t *testing.T) {
	usePort(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := startServer(t, ctx)

	errc := make(chan error, 1)
	go func() {
		_, _, err := NewClient().TryCapture(ctx)
		errc <- err
	}()
	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	conn.RespondError("capture failed: no display")
	conn.Close()

	if err := <-errc; err == nil || err.Error() != "capture failed: no display" {
		t.Fatalf("err = %v", err)
	}
}

func TestNoResidentIsNotDelegated(t *testing.T) {
	usePort(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	delegated, _, err := NewClient().TryCapture(ctx)
	if delegated || err != nil {
		t.Fatalf("delegated=%v err=%v, want false/nil", delegated, err)
	}
	if _, ok := DetectResidentPort(ctx); ok {
		t.Fatal("detected a resident that does not exist")
	}
}

func TestDetectResidentPort(t *testing.T) {
	usePort(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := startServer(t, ctx)
	port, ok := DetectResidentPort(ctx)
	if !ok || port != srv.Port() {
		t.Fatalf("detected %d/%v, want %d", port, ok, srv.Port())
	}
}

func TestParseResponseRejectsGarbage(t *testing.T) {
	if _, err := parseResponse("HELLO\n", ""); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestPortRangeClamps(t *testing.T) {
	t.Setenv("SCREEN_CLIP_PORT_START", "80")
	t.Setenv("SCREEN_CLIP_PORT_END", "70000")
	start, end := PortRange()
	if start != 1024 || end != 65535 {
		t.Fatalf("range = %d-%d", start, end)
	}
	t.Setenv("SCREEN_CLIP_PORT_START", "50010")
	t.Setenv("SCREEN_CLIP_PORT_END", "50000")
	if start, end := PortRange(); start != 50000 || end != 50010 {
		t.Fatalf("swapped range = %d-%d", start, end)
	}
}
