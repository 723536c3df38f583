package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"screen-clip/src/config"
	"screen-clip/src/logutil"
	"screen-clip/src/session"
)

// exitCancelled is the exit status of a capture the user backed out of.
const exitCancelled = 2

type mainOptions struct {
	runOnce bool
	capture bool
	output  string
	saveDir string
	dpr     float64
	verbose bool
}

func main() {
	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()

	// The overlay and the tray both need the main OS thread.
	runtime.LockOSThread()

	os.Exit(exitCode(run(normalizeLegacyArgs(os.Args))))
}

func run(args []string) error {
	if len(args) == 0 {
		args = []string{"screen-clip"}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.ExecuteContext(context.Background())
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-clip",
		Short:         "Select a screen region and copy or save it",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd.Context(), *opts)
		},
	}

	cmd.Flags().BoolVar(&opts.runOnce, "run-once", false, "Capture once (through the resident if one is running) and exit")
	cmd.Flags().BoolVar(&opts.capture, "capture", false, "Run the overlay in this process; used by the resident")
	cmd.Flags().StringVar(&opts.output, "output", "", "Where Enter sends the selection: clipboard or file")
	cmd.Flags().StringVar(&opts.saveDir, "save-dir", "", "Directory for saved captures")
	cmd.Flags().Float64Var(&opts.dpr, "dpr", 0, "Device pixel ratio override (0 = detect)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")
	_ = cmd.Flags().MarkHidden("capture")
	cmd.MarkFlagsMutuallyExclusive("run-once", "capture")

	return cmd
}

func (o mainOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		OutputOverride:           o.output,
		SaveDirOverride:          o.saveDir,
		DevicePixelRatioOverride: o.dpr,
	}
}

// childArgs forwards command-line overrides to a capture child.
func (o mainOptions) childArgs() []string {
	args := []string{"--capture"}
	if o.output != "" {
		args = append(args, "--output", o.output)
	}
	if o.saveDir != "" {
		args = append(args, "--save-dir", o.saveDir)
	}
	if o.dpr > 0 {
		args = append(args, "--dpr", fmt.Sprint(o.dpr))
	}
	if o.verbose {
		args = append(args, "--verbose")
	}
	return args
}

func runWithOptions(parent context.Context, opts mainOptions) error {
	cfg, err := config.LoadWithOptions(opts.loadOptions())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg.EnableFileLogging, opts.verbose)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case opts.capture:
		log.Printf("MAIN: capture child started")
		_, err := runCapture(ctx, cfg)
		return err
	case opts.runOnce:
		return handleRunOnceWithDelegation(ctx, newDelegateClient(), func() error {
			_, err := runCapture(ctx, cfg)
			return err
		})
	default:
		logMonitorConfiguration()
		return runResident(ctx, cfg, opts)
	}
}

func setupLogging(enableFileLogging, verbose bool) {
	if verbose {
		logutil.SetupStderr(true)
		return
	}
	logutil.Setup(enableFileLogging)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, session.ErrSelectionCancelled), errors.Is(err, context.Canceled):
		return exitCancelled
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}

// normalizeLegacyArgs maps single-dash long flags (-run-once) to the
// double-dash form cobra expects.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"run-once", "capture", "output", "save-dir", "dpr", "verbose"} {
			flag := "-" + name
			if arg == flag || strings.HasPrefix(arg, flag+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}
