package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"screen-clip/src/logutil"
	"screen-clip/src/screenshot"
	"screen-clip/src/session"
)

const (
	maxFileSizeMB = 64
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type cliOptions struct {
	filePath   string
	dpr        float64
	drag       string
	resize     []string
	move       []string
	hover      string
	action     string
	framePath  string
	outPath    string
	saveDir    string
	jsonOutput bool
	verbose    bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args), os.Stdin, os.Stdout)
}

func runWithArgs(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		args = []string{"screen-clip-cli"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, stdin, stdout)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions, stdin io.Reader, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "screen-clip-cli",
		Short: "Replay a region selection over a PNG without a display",
		Example: `  screen-clip-cli --file shot.png --drag 10,10:210,110 --frame overlay.png
  screen-clip-cli --file shot.png --dpr 2 --drag 10,10:210,110 --resize br:20,20 --move 5,0 --out crop.png --json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(cmd.Context(), *opts, stdin, stdout)
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG file used as the frozen capture (use '-' for stdin)")
	cmd.Flags().Float64Var(&opts.dpr, "dpr", 1, "Device pixel ratio of the capture")
	cmd.Flags().StringVar(&opts.drag, "drag", "", "Initial selection drag, x1,y1:x2,y2 in logical pixels")
	cmd.Flags().StringArrayVar(&opts.resize, "resize", nil, "Drag a handle by a delta, handle:dx,dy (tl,tc,tr,ml,mr,bl,bc,br); repeatable")
	cmd.Flags().StringArrayVar(&opts.move, "move", nil, "Drag the selection by a delta, dx,dy; repeatable")
	cmd.Flags().StringVar(&opts.hover, "hover", "", "Final pointer position, x,y")
	cmd.Flags().StringVar(&opts.action, "action", "ok", "Key to finish with: ok, save, cancel or copy-color")
	cmd.Flags().StringVar(&opts.framePath, "frame", "", "Write the composited overlay before the final action to this PNG")
	cmd.Flags().StringVar(&opts.outPath, "out", "", "Write the committed crop to this PNG ('-' for stdout)")
	cmd.Flags().StringVar(&opts.saveDir, "save-dir", ".", "Directory used by the save action")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runWithOptions(ctx context.Context, opts cliOptions, stdin io.Reader, stdout io.Writer) error {
	// Configure logging BEFORE any other operations.
	logutil.SetupStderr(opts.verbose)
	if ctx == nil {
		ctx = context.Background()
	}

	script, err := buildScript(opts)
	if err != nil {
		return err
	}

	data, err := readInput(opts.filePath, stdin)
	if err != nil {
		return err
	}
	img, err := screenshot.DecodePNG(bytes.NewReader(data))
	if err != nil {
		return err
	}
	frame, err := screenshot.NewFrame(img, opts.dpr)
	if err != nil {
		return err
	}
	log.Printf("CLI: loaded %v capture from %s at ratio %.2f", frame.Bounds().Size(), opts.filePath, frame.DevicePixelRatio)

	var rep *replay
	selectRegion := func(ctx context.Context, f *screenshot.Frame) (session.Outcome, bool, error) {
		var err error
		rep, err = runReplay(f, script)
		if err != nil {
			return session.Outcome{}, false, err
		}
		if opts.framePath != "" {
			if err := writePNG(opts.framePath, rep.frame); err != nil {
				return session.Outcome{}, false, err
			}
		}
		return rep.outcome, rep.cancelled, nil
	}

	res, err := session.Execute(ctx, session.Options{
		Capture:      func() (*screenshot.Frame, error) { return frame, nil },
		SelectRegion: selectRegion,
		Target:       primaryTarget(opts.outPath, stdout),
		SaveTarget:   session.FileTarget{Dir: opts.saveDir},
		Warn:         func(title, message string) { log.Printf("CLI: %s: %s", title, message) },
	})
	cancelled := errors.Is(err, session.ErrSelectionCancelled)
	if err != nil && !cancelled {
		return err
	}
	if rep == nil {
		return errors.New("replay did not run")
	}
	return outputResult(stdout, opts, frame, rep, res, cancelled)
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		return nil, fmt.Errorf("input is not a valid PNG file (invalid magic number)")
	}
	return data, nil
}

// primaryTarget picks where ActionOk sends the crop. Without --out nothing is
// written and only the rectangle is reported.
func primaryTarget(outPath string, stdout io.Writer) session.CommitSink {
	switch outPath {
	case "":
		return reportTarget{}
	case "-":
		return session.WriterTarget{Writer: stdout}
	default:
		return fileWriterTarget{path: outPath}
	}
}

type reportTarget struct{}

func (reportTarget) Commit(rect image.Rectangle, frame *screenshot.Frame) (string, error) {
	phys := screenshot.ToPhysical(rect, frame.DevicePixelRatio, frame.Bounds())
	if phys.Empty() {
		return "", session.ErrNoSelection
	}
	return "not written", nil
}

type fileWriterTarget struct{ path string }

func (t fileWriterTarget) Commit(rect image.Rectangle, frame *screenshot.Frame) (string, error) {
	f, err := os.Create(t.path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", t.path, err)
	}
	if _, err := (session.WriterTarget{Writer: f}).Commit(rect, frame); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return t.path, nil
}

func writePNG(path string, img image.Image) error {
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

type rectJSON struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func toRectJSON(r image.Rectangle) rectJSON {
	return rectJSON{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// ReplayResult is the --json output.
type ReplayResult struct {
	Action           string    `json:"action"`
	Cancelled        bool      `json:"cancelled"`
	Selection        *rectJSON `json:"selection,omitempty"`
	Physical         *rectJSON `json:"physical,omitempty"`
	Detail           string    `json:"detail,omitempty"`
	CopiedColor      string    `json:"copied_color,omitempty"`
	Cursor           string    `json:"cursor"`
	Redraws          int       `json:"redraws"`
	DevicePixelRatio float64   `json:"device_pixel_ratio"`
}

func outputResult(stdout io.Writer, opts cliOptions, frame *screenshot.Frame, rep *replay, res session.Result, cancelled bool) error {
	result := ReplayResult{
		Action:           rep.action.String(),
		Cancelled:        cancelled,
		Detail:           res.Detail,
		CopiedColor:      rep.copied,
		Cursor:           rep.cursor.String(),
		Redraws:          rep.redraws,
		DevicePixelRatio: frame.DevicePixelRatio,
	}
	if !cancelled && !rep.outcome.Rect.Empty() {
		sel := toRectJSON(rep.outcome.Rect)
		phys := toRectJSON(screenshot.ToPhysical(rep.outcome.Rect, frame.DevicePixelRatio, frame.Bounds()))
		result.Selection, result.Physical = &sel, &phys
	}

	if opts.outPath == "-" {
		// stdout carries the PNG; keep the report off it.
		stdout = os.Stderr
	}
	if opts.jsonOutput {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("failed to encode JSON output: %w", err)
		}
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "action: %s\n", result.Action)
	switch {
	case cancelled:
		b.WriteString("cancelled\n")
	case result.Selection != nil:
		s, p := result.Selection, result.Physical
		fmt.Fprintf(&b, "selection: %d,%d %dx%d (physical %d,%d %dx%d)\n", s.X, s.Y, s.Width, s.Height, p.X, p.Y, p.Width, p.Height)
	}
	if result.CopiedColor != "" {
		fmt.Fprintf(&b, "color: %s\n", result.CopiedColor)
	}
	if result.Detail != "" {
		fmt.Fprintf(&b, "output: %s\n", result.Detail)
	}
	_, err := io.WriteString(stdout, b.String())
	return err
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	long := []string{"file", "dpr", "drag", "resize", "move", "hover", "action", "frame", "out", "save-dir", "json", "verbose"}
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range long {
			if arg == "-"+name || strings.HasPrefix(arg, "-"+name+"=") {
				normalized[i] = "-" + arg
				break
			}
		}
	}

	return normalized
}
