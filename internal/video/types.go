// Package video implements quality analysis and adaptive enhancement for
// video frames. Analysis samples a handful of frames, a pure planner maps
// the aggregated measurements to processing parameters, and the pipeline
// applies them frame by frame.
package video

import "errors"

// Sentinel errors returned by analysis and processing.
var (
	// ErrInsufficientData indicates too few decodable frames to measure.
	ErrInsufficientData = errors.New("video: not enough frames to analyse")

	// ErrNoFrames indicates the asset produced no frames at all.
	ErrNoFrames = errors.New("video: no decodable frames")
)

// FrameMetrics holds the measurements of a single frame.
type FrameMetrics struct {
	Brightness float64 // mean luma, 0-255
	Contrast   float64 // luma standard deviation
	Sharpness  float64 // Laplacian variance
	Noise      float64 // residual std-dev after smoothing the centre region
}

// Metrics holds the aggregated Pass 1 measurements for an asset.
// Frame values are medians across the sampled frames, which keeps title
// cards and black frames from skewing the result.
type Metrics struct {
	Width      int
	Height     int
	FrameRate  float64
	FrameCount int
	Duration   float64 // seconds

	SampledFrames int
	Frame         FrameMetrics // median-aggregated
}

// ResolutionMode selects how the planner treats output resolution.
type ResolutionMode int

const (
	// ResolutionAuto upscales low-resolution material and never
	// downscales.
	ResolutionAuto ResolutionMode = iota

	// ResolutionExplicit targets a caller-supplied size, letterboxing
	// to preserve the source aspect ratio.
	ResolutionExplicit

	// ResolutionUnchanged keeps the source dimensions.
	ResolutionUnchanged
)

// ResolutionConfig carries the caller's resolution request.
type ResolutionConfig struct {
	Mode   ResolutionMode
	Width  int // used by ResolutionExplicit
	Height int
}

// Plan holds the processing parameters derived from Metrics.
type Plan struct {
	Denoise          float64 // 0-10, blur blend strength
	Sharpen          float64 // 0-1.5, unsharp mask amount
	BrightnessDelta  float64 // -50..+50, added to each luma value
	ContrastFactor   float64 // 0.5..2.0, 1.0 = unchanged
	SaturationFactor float64 // 1.0 = unchanged

	TargetWidth  int // 0 = unchanged
	TargetHeight int
}

// Resizes reports whether the plan changes the frame dimensions.
func (p Plan) Resizes(srcW, srcH int) bool {
	if p.TargetWidth == 0 || p.TargetHeight == 0 {
		return false
	}
	return p.TargetWidth != srcW || p.TargetHeight != srcH
}
