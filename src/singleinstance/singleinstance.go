package singleinstance

// This file defines the API for resident ownership and run-once delegation.

import (
	"context"
	"errors"
)

// ErrResidentBusy is returned by a delegated capture when the resident already has an overlay open.
var ErrResidentBusy = errors.New("resident is busy with another capture")

// Server owns the TCP endpoint and answers delegated capture requests.
type Server interface {
	// Start begins listening on the first port of the configured range.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next accepted connection as a Conn, or ctx error.
	Next(ctx context.Context) (Conn, error)
	// Close releases ownership and stops accepting clients.
	Close() error
}

// Conn represents one client connection waiting for its capture result.
type Conn interface {
	RespondSuccess(detail string) error
	RespondCancelled() error
	RespondBusy() error
	// RespondError sends an error with human-readable message.
	RespondError(msg string) error
	Close() error
}

// Client attempts to delegate a capture to a resident server.
type Client interface {
	// TryCapture scans the port range and asks the first resident found to run
	// a capture. If no resident is found, returns delegated=false, err=nil.
	// A capture the user cancelled returns session.ErrSelectionCancelled.
	TryCapture(ctx context.Context) (delegated bool, detail string, err error)
}

// NewServer returns TCP implementation.
func NewServer() Server { return newTcpServer() }

// NewClient returns TCP implementation.
func NewClient() Client { return newTcpClient() }
