package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"screen-clip/src/session"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) TryCapture(ctx context.Context) (bool, string, error) {
	timeout := dialTimeout(ctx, 2*time.Second)
	start, end := getPortRange()
	for port := start; port <= end; port++ {
		addr := residentAddr(port)
		if !ping(addr, timeout) {
			continue
		}
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			continue
		}
		detail, err := c.capture(ctx, conn)
		return true, detail, err
	}
	return false, "", nil
}

// capture sends the request and waits, without a deadline unless ctx has one,
// for the user to finish with the overlay.
func (c *tcpClient) capture(ctx context.Context, conn net.Conn) (string, error) {
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	if _, err := conn.Write([]byte(captureRequest)); err != nil {
		return "", fmt.Errorf("failed to send capture request: %w", err)
	}
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("failed to read resident response: %w", err)
	}
	body, _ := io.ReadAll(br)
	return parseResponse(status, string(body))
}

func parseResponse(status, body string) (string, error) {
	switch status {
	case statusSuccess:
		return body, nil
	case statusCancelled:
		return "", session.ErrSelectionCancelled
	case statusBusy:
		return "", ErrResidentBusy
	case statusError:
		return "", errors.New(body)
	default:
		return "", fmt.Errorf("unexpected resident response %q", strings.TrimSpace(status))
	}
}
