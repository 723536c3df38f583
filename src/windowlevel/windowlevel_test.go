package windowlevel

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

type flakyController struct {
	errs  []error
	calls int
}

func (f *flakyController) Raise() error { return nil }

func (f *flakyController) Reassert() error {
	err := f.errs[f.calls%len(f.errs)]
	f.calls++
	return err
}

func TestKeeperLogsRepeatedFailureOnce(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	lost := errors.New("window lost")
	c := &flakyController{errs: []error{lost, lost, lost, nil, lost}}
	tick := Keeper(c)
	for i := 0; i < 5; i++ {
		tick()
	}
	if c.calls != 5 {
		t.Fatalf("calls = %d", c.calls)
	}
	if n := strings.Count(buf.String(), "reassert failed"); n != 2 {
		t.Fatalf("logged %d failures, want 2:\n%s", n, buf.String())
	}
}

func TestNoop(t *testing.T) {
	var c Controller = Noop{}
	if c.Raise() != nil || c.Reassert() != nil {
		t.Fatal("Noop returned an error")
	}
}
