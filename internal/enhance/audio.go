package enhance

import (
	"context"
	"errors"
	"math"
	"os"
	"time"

	"github.com/clearwave/clearwave/internal/audio"
	"github.com/clearwave/clearwave/internal/logging"
	"github.com/clearwave/clearwave/internal/media"
	"github.com/clearwave/clearwave/internal/video"
)

// Options carries caller preferences into an enhancement run.
type Options struct {
	OutputPath string // explicit output path, single-asset runs only
	OutputDir  string // directory for derived output names

	// Audio
	TargetRMSDB float64 // 0 = default target
	OutputRate  int     // 0 = keep input rate
	MainsHz     float64 // local mains fundamental, 0 = ignore

	// Video
	Resolution video.ResolutionConfig

	// WriteReport writes a <output>.log analysis report per asset.
	WriteReport bool
}

// EnhanceAudioFile runs the full two-pass enhancement on one audio
// asset. The input file is never modified; failures leave no partial
// output behind.
func EnhanceAudioFile(ctx context.Context, index int, path string, opts Options, emit EventFunc) *Result {
	res := &Result{Path: path}
	started := time.Now()

	outPath := OutputPath(path, opts.OutputPath, opts.OutputDir)
	res.OutputPath = outPath
	if err := validateOutput(path, outPath); err != nil {
		res.Err = &InputError{Path: path, Err: err}
		return res
	}

	emit.emit(Event{Kind: EventAssetStart, AssetIndex: index, Path: path, OutputPath: outPath})
	emit.emit(Event{Kind: EventProgress, AssetIndex: index, Path: path, Pass: 1, PassName: "Analyzing", Fraction: 0.0})

	// Decode
	chans, rate, err := media.DecodeAudio(ctx, path)
	if err != nil {
		res.Err = &InputError{Path: path, Err: err}
		return res
	}
	emit.emit(Event{Kind: EventProgress, AssetIndex: index, Path: path, Pass: 1, PassName: "Analyzing", Fraction: 0.5})

	// Pass 1: analyze
	metrics, err := audio.Analyze(ctx, chans, rate)
	if err != nil {
		res.Err = classifyAnalysisError(path, err)
		return res
	}
	res.AudioMetrics = &metrics

	plan := audio.PlanEnhancement(metrics, audio.PlanOptions{
		TargetRMSDB: opts.TargetRMSDB,
		MainsHz:     opts.MainsHz,
		OutputRate:  opts.OutputRate,
	})
	res.AudioPlan = &plan

	emit.emit(Event{
		Kind: EventAnalyzed, AssetIndex: index, Path: path,
		Pass: 1, PassName: "Analyzing", Fraction: 1.0,
		AudioMetrics: &metrics, AudioPlan: &plan,
	})

	// Pass 2: process
	processed, outRate, err := audio.Enhance(ctx, chans, rate, plan, func(fraction float64) {
		emit.emit(Event{
			Kind: EventProgress, AssetIndex: index, Path: path,
			Pass: 2, PassName: "Processing", Fraction: fraction,
		})
	})
	if err != nil {
		res.Err = classifyProcessingError(ctx, path, err)
		return res
	}
	res.OutputRMSDB = monoRMSDB(processed)

	// Write to a work file, then rename into place
	tempPath := tempOutputPath(outPath)
	if err := media.EncodeAudio(ctx, tempPath, processed, outRate); err != nil {
		os.Remove(tempPath)
		res.Err = &OutputError{Path: outPath, Err: err}
		return res
	}
	if err := commitOutput(tempPath, outPath); err != nil {
		res.Err = &OutputError{Path: outPath, Err: err}
		return res
	}

	if opts.WriteReport {
		report := logging.AudioReport{
			InputPath:   path,
			OutputPath:  outPath,
			Metrics:     metrics,
			Plan:        plan,
			OutputRMSDB: res.OutputRMSDB,
			MainsHz:     opts.MainsHz,
			ProcessTime: time.Since(started),
		}
		if err := logging.WriteAudioReport(outPath+".log", report); err != nil {
			res.Err = &OutputError{Path: outPath + ".log", Err: err}
			return res
		}
	}

	return res
}

// classifyAnalysisError maps analyzer failures onto the taxonomy.
func classifyAnalysisError(path string, err error) error {
	switch {
	case errors.Is(err, audio.ErrInsufficientData):
		return &InsufficientDataError{Path: path, Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return &AnalysisError{Path: path, Err: err}
	}
}

// classifyProcessingError keeps cancellation distinct from real
// processing failures.
func classifyProcessingError(ctx context.Context, path string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return &ProcessingError{Path: path, Err: err}
}

// monoRMSDB measures the mean RMS level across channels in dBFS.
func monoRMSDB(chans [][]float64) float64 {
	var sum float64
	var n int
	for _, ch := range chans {
		for _, s := range ch {
			sum += s * s
		}
		n += len(ch)
	}
	if n == 0 {
		return -120.0
	}
	return audio.LinearToDb(math.Sqrt(sum / float64(n)))
}
