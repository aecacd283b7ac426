package enhance

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"github.com/clearwave/clearwave/internal/logging"
	"github.com/clearwave/clearwave/internal/media"
	"github.com/clearwave/clearwave/internal/video"
)

// frameFailureTolerance is the fraction of frames that may individually
// fail before the whole asset is considered failed.
const frameFailureTolerance = 0.02

// EnhanceVideoFile runs the full two-pass enhancement on one video
// asset. Frames stream through the pipeline; the input file is never
// modified and failures leave no partial output behind.
func EnhanceVideoFile(ctx context.Context, index int, path string, opts Options, emit EventFunc) *Result {
	res := &Result{Path: path}
	started := time.Now()

	outPath := OutputPath(path, opts.OutputPath, opts.OutputDir)
	res.OutputPath = outPath
	if err := validateOutput(path, outPath); err != nil {
		res.Err = &InputError{Path: path, Err: err}
		return res
	}

	info, err := media.Probe(ctx, path)
	if err != nil {
		res.Err = &InputError{Path: path, Err: err}
		return res
	}
	if info.Video == nil {
		res.Err = &InputError{Path: path, Err: fmt.Errorf("no video stream")}
		return res
	}

	emit.emit(Event{Kind: EventAssetStart, AssetIndex: index, Path: path, OutputPath: outPath})

	// Pass 1: sample and measure frames
	metrics, err := analyzeVideo(ctx, path, info, func(fraction float64) {
		emit.emit(Event{
			Kind: EventProgress, AssetIndex: index, Path: path,
			Pass: 1, PassName: "Analyzing", Fraction: fraction,
		})
	})
	if err != nil {
		res.Err = classifyVideoAnalysisError(path, err)
		return res
	}
	res.VideoMetrics = &metrics

	plan := video.PlanEnhancement(metrics, opts.Resolution)
	res.VideoPlan = &plan

	emit.emit(Event{
		Kind: EventAnalyzed, AssetIndex: index, Path: path,
		Pass: 1, PassName: "Analyzing", Fraction: 1.0,
		VideoMetrics: &metrics, VideoPlan: &plan,
	})

	// Pass 2: stream every frame through the pipeline
	tempPath := tempOutputPath(outPath)
	processed, skipped, err := processVideo(ctx, path, tempPath, info, plan, func(fraction float64) {
		emit.emit(Event{
			Kind: EventProgress, AssetIndex: index, Path: path,
			Pass: 2, PassName: "Processing", Fraction: fraction,
		})
	})
	res.FramesProcessed = processed
	res.FramesSkipped = skipped
	if err != nil {
		os.Remove(tempPath)
		res.Err = err
		return res
	}

	if err := commitOutput(tempPath, outPath); err != nil {
		res.Err = &OutputError{Path: outPath, Err: err}
		return res
	}

	if opts.WriteReport {
		report := logging.VideoReport{
			InputPath:       path,
			OutputPath:      outPath,
			Metrics:         metrics,
			Plan:            plan,
			FramesProcessed: processed,
			FramesSkipped:   skipped,
			ProcessTime:     time.Since(started),
		}
		if err := logging.WriteVideoReport(outPath+".log", report); err != nil {
			res.Err = &OutputError{Path: outPath + ".log", Err: err}
			return res
		}
	}

	return res
}

// analyzeVideo measures evenly spaced sample frames from the stream.
func analyzeVideo(ctx context.Context, path string, info *media.Info, progress func(float64)) (video.Metrics, error) {
	vs := info.Video
	reader, err := media.NewFrameReader(ctx, path, vs.Width, vs.Height)
	if err != nil {
		return video.Metrics{}, err
	}
	defer reader.Close()

	targets := video.SampleIndices(vs.FrameCount, video.DefaultSampleCount)
	var frames []video.FrameMetrics
	next := 0

	frameIndex := 0
	for {
		if frameIndex%32 == 0 {
			if err := ctx.Err(); err != nil {
				return video.Metrics{}, err
			}
		}
		img, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return video.Metrics{}, err
		}

		measure := false
		if len(targets) > 0 {
			if next < len(targets) && frameIndex == targets[next] {
				measure = true
				next++
			}
		} else if frameIndex%12 == 0 && len(frames) < video.DefaultSampleCount {
			// Frame count unknown; sample a steady stride instead
			measure = true
		}

		if measure {
			frames = append(frames, video.MeasureFrame(img))
			if progress != nil && len(targets) > 0 {
				progress(float64(next) / float64(len(targets)))
			}
		}

		// All samples collected; no need to decode the rest
		if len(targets) > 0 && next >= len(targets) {
			break
		}
		frameIndex++
	}

	frameCount := vs.FrameCount
	if frameCount == 0 {
		frameCount = frameIndex
	}
	return video.Aggregate(ctx, frames, vs.Width, vs.Height, vs.FrameRate, frameCount, info.Duration)
}

// frameSource and frameSink are the streaming halves of the frame loop,
// satisfied by media.FrameReader and media.FrameWriter and stubbed in
// tests.
type frameSource interface {
	Next() (*image.RGBA, error)
}

type frameSink interface {
	WriteFrame(img *image.RGBA) error
}

// processVideo streams every frame through the enhancement chain into
// the encoder. A small fraction of frames may fail enhancement; those
// pass through unenhanced so the output keeps one frame per input
// frame. More than the tolerated fraction fails the asset.
func processVideo(ctx context.Context, path, tempPath string, info *media.Info, plan video.Plan, progress func(float64)) (processed, skipped int, err error) {
	vs := info.Video

	outW, outH := vs.Width, vs.Height
	if plan.TargetWidth > 0 && plan.TargetHeight > 0 {
		outW, outH = plan.TargetWidth, plan.TargetHeight
	}

	reader, err := media.NewFrameReader(ctx, path, vs.Width, vs.Height)
	if err != nil {
		return 0, 0, &ProcessingError{Path: path, Err: err}
	}
	defer reader.Close()

	writer, err := media.NewFrameWriter(ctx, tempPath, path, outW, outH, vs.FrameRate)
	if err != nil {
		return 0, 0, &OutputError{Path: tempPath, Err: err}
	}

	processed, skipped, err = streamFrames(ctx, path, reader, writer, plan, vs.FrameCount, progress)
	if err != nil {
		writer.Close()
		return processed, skipped, err
	}
	if werr := writer.Close(); werr != nil {
		return processed, skipped, &OutputError{Path: tempPath, Err: werr}
	}
	if progress != nil {
		progress(1.0)
	}
	return processed, skipped, nil
}

// streamFrames runs the frame loop. A frame the enhancement chain
// cannot deliver is written through with only the geometry stage
// applied, keeping the audio track in sync with the video. Source
// errors abort immediately: the decoder absorbs bitstream corruption
// upstream, so a read failure here means the pipe itself is gone.
func streamFrames(ctx context.Context, path string, src frameSource, sink frameSink, plan video.Plan, frameCount int, progress func(float64)) (processed, skipped int, err error) {
	maxSkipped := int(float64(frameCount) * frameFailureTolerance)
	if maxSkipped < 1 {
		maxSkipped = 1
	}

	frameIndex := 0
	for {
		if frameIndex%16 == 0 {
			if cerr := ctx.Err(); cerr != nil {
				return processed, skipped, cerr
			}
		}
		img, rerr := src.Next()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return processed, skipped, &ProcessingError{Path: path, Err: rerr}
		}

		if werr := sink.WriteFrame(video.EnhanceFrame(img, plan)); werr != nil {
			skipped++
			if skipped > maxSkipped {
				return processed, skipped, &ProcessingError{
					Path: path,
					Err:  fmt.Errorf("%d of %d frames failed: %w", skipped, frameIndex+1, werr),
				}
			}
			if perr := sink.WriteFrame(video.PassthroughFrame(img, plan)); perr != nil {
				return processed, skipped, &OutputError{Path: path, Err: perr}
			}
		} else {
			processed++
		}

		frameIndex++
		if progress != nil && frameCount > 0 && frameIndex%16 == 0 {
			fraction := float64(frameIndex) / float64(frameCount)
			if fraction > 1.0 {
				fraction = 1.0
			}
			progress(fraction)
		}
	}

	if processed == 0 {
		return 0, skipped, &ProcessingError{Path: path, Err: video.ErrNoFrames}
	}
	return processed, skipped, nil
}

func classifyVideoAnalysisError(path string, err error) error {
	switch {
	case errors.Is(err, video.ErrInsufficientData), errors.Is(err, video.ErrNoFrames):
		return &InsufficientDataError{Path: path, Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return &AnalysisError{Path: path, Err: err}
	}
}
