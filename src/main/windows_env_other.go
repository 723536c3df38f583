//go:build !windows

package main

import (
	"log"

	"screen-clip/src/screenshot"
)

func enableDPIAwareness() {}

func logMonitorConfiguration() {
	if b, err := screenshot.GetDisplayBounds(); err == nil {
		log.Printf("MONITOR: primary %v", b)
	}
}
