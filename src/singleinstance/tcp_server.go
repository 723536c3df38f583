package singleinstance

import (
	"bufio"
	"context"
	"log"
	"net"
	"sync"
	"time"
)

const (
	residentHost   = "127.0.0.1"
	pingRequest    = "PING\n"
	pongResponse   = "PONG\n"
	captureRequest = "CAPTURE\n"

	statusSuccess   = "SUCCESS\n"
	statusCancelled = "CANCELLED\n"
	statusBusy      = "BUSY\n"
	statusError     = "ERROR\n"
)

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	mu       sync.Mutex
	lis      net.Listener
	incoming chan *tcpConn
	done     chan struct{}
	port     int
}

func newTcpServer() Server {
	return &tcpServer{incoming: make(chan *tcpConn, 8), done: make(chan struct{})}
}

// Start binds ONLY the start port of the configured range. If occupied, fail.
func (s *tcpServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		return nil
	}
	start, _ := getPortRange()
	addr := residentAddr(start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("SINGLEINSTANCE: failed to bind %s: %v", addr, err)
		return err
	}
	s.lis = lis
	s.port = start
	log.Printf("SINGLEINSTANCE: listening on %s", addr)
	go s.acceptLoop(ctx, lis)
	return nil
}

// Port returns the bound port (0 if not started).
func (s *tcpServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *tcpServer) acceptLoop(ctx context.Context, lis net.Listener) {
	for {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		remote := c.RemoteAddr().String()
		_ = c.SetDeadline(time.Now().Add(3 * time.Second))
		br := bufio.NewReader(c)
		line, _ := br.ReadString('\n')
		switch line {
		case pingRequest:
			_, _ = c.Write([]byte(pongResponse))
			_ = c.Close()
			continue
		case captureRequest:
		default:
			log.Printf("SINGLEINSTANCE: unknown request %q from %s", line, remote)
			_, _ = c.Write([]byte(statusError + "unknown request"))
			_ = c.Close()
			continue
		}
		_ = c.SetDeadline(time.Time{})
		log.Printf("SINGLEINSTANCE: capture request from %s", remote)
		select {
		case s.incoming <- &tcpConn{c: c}:
		case <-s.done:
			_ = c.Close()
			return
		case <-ctx.Done():
			_ = c.Close()
			return
		}
	}
}

func (s *tcpServer) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, net.ErrClosed
	case tc := <-s.incoming:
		return tc, nil
	}
}

func (s *tcpServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return nil
	}
	err := s.lis.Close()
	s.lis = nil
	s.port = 0
	close(s.done)
	return err
}

type tcpConn struct {
	c net.Conn
}

func (tc *tcpConn) respond(status, body string) error {
	_, err := tc.c.Write([]byte(status + body))
	return err
}

func (tc *tcpConn) RespondSuccess(detail string) error { return tc.respond(statusSuccess, detail) }
func (tc *tcpConn) RespondCancelled() error            { return tc.respond(statusCancelled, "") }
func (tc *tcpConn) RespondBusy() error                 { return tc.respond(statusBusy, "") }
func (tc *tcpConn) RespondError(msg string) error      { return tc.respond(statusError, msg) }

func (tc *tcpConn) Close() error { return tc.c.Close() }
