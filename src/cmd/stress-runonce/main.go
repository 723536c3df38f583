package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-clip/src/session"
	"screen-clip/src/singleinstance"
)

type stressOptions struct {
	n        int
	deadline time.Duration
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-runonce",
		Short:         "Fire concurrent run-once captures at a resident; exactly one should open an overlay",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

type outcome int

const (
	outcomeCaptured outcome = iota
	outcomeCancelled
	outcomeBusy
	outcomeNoResident
	outcomeError
)

func classify(delegated bool, err error) outcome {
	switch {
	case errors.Is(err, singleinstance.ErrResidentBusy):
		return outcomeBusy
	case errors.Is(err, session.ErrSelectionCancelled):
		return outcomeCancelled
	case err != nil:
		return outcomeError
	case !delegated:
		return outcomeNoResident
	default:
		return outcomeCaptured
	}
}

type tally struct {
	counts [outcomeError + 1]atomic.Int32
}

func (t *tally) add(o outcome) { t.counts[o].Add(1) }

func (t *tally) String() string {
	return fmt.Sprintf("captured=%d cancelled=%d busy=%d no-resident=%d err=%d",
		t.counts[outcomeCaptured].Load(), t.counts[outcomeCancelled].Load(),
		t.counts[outcomeBusy].Load(), t.counts[outcomeNoResident].Load(),
		t.counts[outcomeError].Load())
}

// opened reports how many clients got an overlay of their own.
func (t *tally) opened() int32 {
	return t.counts[outcomeCaptured].Load() + t.counts[outcomeCancelled].Load()
}

func runWithOptions(opts stressOptions) error {
	if _, ok := singleinstance.DetectResidentPort(context.Background()); !ok {
		return errors.New("no resident screen-clip found")
	}

	var wg sync.WaitGroup
	var results tally

	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			delegated, _, err := singleinstance.NewClient().TryCapture(ctx)
			results.add(classify(delegated, err))
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)
	fmt.Fprintf(os.Stdout, "launched=%d %s elapsed=%s\n", opts.n, &results, elapsed)
	if n := results.opened(); n > 1 {
		return fmt.Errorf("%d overlays were opened concurrently", n)
	}
	return nil
}
