//go:build !windows

package windowlevel

func newPlatform(string) Controller { return Noop{} }
