package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clearwave/clearwave/internal/cli"
	"github.com/clearwave/clearwave/internal/enhance"
	"github.com/clearwave/clearwave/internal/mains"
	"github.com/clearwave/clearwave/internal/ui"
	"github.com/clearwave/clearwave/internal/video"
)

var (
	version = "0.0.1"
)

// CLI defines the command-line interface
type CLI struct {
	Version    bool     `short:"v" help:"Show version information"`
	Output     string   `short:"o" type:"path" help:"Output file (single input only)"`
	OutputDir  string   `short:"d" type:"existingdir" help:"Directory for enhanced files"`
	Workers    int      `short:"j" default:"0" help:"Concurrent assets (0 = number of CPUs)"`
	Target     float64  `default:"-18" help:"Audio normalisation target in dBFS RMS"`
	SampleRate int      `help:"Output sample rate (0 = keep input rate)"`
	Resolution string   `default:"auto" help:"Video resolution: auto, off, or WxH (e.g. 1280x720)"`
	Report     bool     `help:"Save a detailed enhancement report beside each output"`
	Plain      bool     `help:"Plain text progress instead of the full-screen UI"`
	Files      []string `arg:"" name:"files" help:"Audio or video files to enhance" type:"existingfile" optional:""`
}

func main() {
	cliArgs := &CLI{}
	kctx := kong.Parse(cliArgs,
		kong.Name("clearwave"),
		kong.Description("Adaptive audio and video enhancement"),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	// Handle version flag
	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	// Validate input
	if len(cliArgs.Files) == 0 {
		cli.PrintError("No input files specified")
		kctx.PrintUsage(false)
		os.Exit(1)
	}
	if cliArgs.Output != "" && len(cliArgs.Files) > 1 {
		cli.PrintError("--output needs exactly one input file; use --output-dir for batches")
		os.Exit(1)
	}

	resolution, err := parseResolution(cliArgs.Resolution)
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	opts := enhance.Options{
		OutputPath:  cliArgs.Output,
		OutputDir:   cliArgs.OutputDir,
		TargetRMSDB: cliArgs.Target,
		OutputRate:  cliArgs.SampleRate,
		MainsHz:     mains.Frequency(),
		Resolution:  resolution,
		WriteReport: cliArgs.Report,
	}

	batch := enhance.NewBatch(cliArgs.Files, opts, cliArgs.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var results []*enhance.Result
	if cliArgs.Plain {
		results, err = runPlain(ctx, batch)
	} else {
		results, err = runTUI(ctx, batch, cliArgs.Files)
	}
	if err != nil {
		cli.PrintError(err.Error())
		os.Exit(1)
	}

	if failed := enhance.FailedResults(results); len(failed) > 0 {
		for _, r := range failed {
			cli.PrintError(fmt.Sprintf("%s: %v", filepath.Base(r.Path), r.Err))
		}
		os.Exit(1)
	}
}

// runTUI drives the batch behind the Bubbletea interface, bridging the
// event stream into the model's message channel.
func runTUI(ctx context.Context, batch *enhance.Batch, files []string) ([]*enhance.Result, error) {
	// Quitting the TUI (q, ctrl+c) abandons the batch as well
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(files)
	p := tea.NewProgram(model, tea.WithAltScreen())

	var results []*enhance.Result
	var runErr error
	done := make(chan struct{})

	go func() {
		defer close(done)
		results, runErr = batch.Run(ctx, func(ev enhance.Event) {
			if msg := ui.FromEvent(ev); msg != nil {
				p.Send(msg)
			}
		})
		// The batch always finishes with EventBatchDone, which quits
		// the program. If Run bailed out before emitting it, quit here.
		if results == nil {
			p.Send(ui.BatchDoneMsg{})
		}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("UI error: %w", err)
	}
	cancel()
	<-done
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return results, runErr
	}
	return results, nil
}

// runPlain drives the batch with line-oriented progress output, for
// scripts and terminals without alt-screen support.
func runPlain(ctx context.Context, batch *enhance.Batch) ([]*enhance.Result, error) {
	return batch.Run(ctx, func(ev enhance.Event) {
		switch ev.Kind {
		case enhance.EventAssetStart:
			fmt.Printf("%s: starting\n", filepath.Base(ev.Path))
		case enhance.EventAnalyzed:
			if ev.AudioMetrics != nil {
				fmt.Printf("%s: analyzed, SNR %.1f dB, noise floor %.1f dBFS\n",
					filepath.Base(ev.Path), ev.AudioMetrics.SNR, ev.AudioMetrics.NoiseFloorDB)
			} else if ev.VideoMetrics != nil {
				fmt.Printf("%s: analyzed, %dx%d @ %.3g fps\n",
					filepath.Base(ev.Path), ev.VideoMetrics.Width, ev.VideoMetrics.Height, ev.VideoMetrics.FrameRate)
			}
		case enhance.EventAssetDone:
			if ev.Result != nil && ev.Result.Err != nil {
				fmt.Printf("%s: failed: %v\n", filepath.Base(ev.Path), ev.Result.Err)
			} else if ev.Result != nil {
				fmt.Printf("%s: done -> %s\n", filepath.Base(ev.Path), ev.Result.OutputPath)
			}
		}
	})
}

// parseResolution maps the --resolution flag onto a ResolutionConfig.
func parseResolution(s string) (video.ResolutionConfig, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return video.ResolutionConfig{Mode: video.ResolutionAuto}, nil
	case "off", "keep", "none":
		return video.ResolutionConfig{Mode: video.ResolutionUnchanged}, nil
	}

	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if ok {
		width, werr := strconv.Atoi(w)
		height, herr := strconv.Atoi(h)
		if werr == nil && herr == nil && width > 0 && height > 0 {
			return video.ResolutionConfig{
				Mode:   video.ResolutionExplicit,
				Width:  width,
				Height: height,
			}, nil
		}
	}
	return video.ResolutionConfig{}, fmt.Errorf("invalid resolution %q: use auto, off, or WxH", s)
}
