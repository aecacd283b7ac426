package video

import (
	"context"
	"image"
	"math"
	"sort"
)

// Analysis constants.
const (
	// DefaultSampleCount is how many frames Pass 1 measures, spread
	// evenly across the asset.
	DefaultSampleCount = 20

	// minSampledFrames is the fewest decodable frames analysis accepts.
	minSampledFrames = 3

	// noiseRegionFraction bounds the centre crop used for noise
	// estimation. Edges often carry letterboxing and vignetting that
	// would inflate the estimate.
	noiseRegionFraction = 0.5
)

// SampleIndices returns sampleCount frame indices spread evenly across
// an asset of frameCount frames. All frames are selected when the asset
// is shorter than the sample count.
func SampleIndices(frameCount, sampleCount int) []int {
	if frameCount <= 0 {
		return nil
	}
	if sampleCount <= 0 {
		sampleCount = DefaultSampleCount
	}
	if frameCount <= sampleCount {
		idx := make([]int, frameCount)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}

	idx := make([]int, sampleCount)
	step := float64(frameCount-1) / float64(sampleCount-1)
	for i := range idx {
		idx[i] = int(math.Round(float64(i) * step))
	}
	return idx
}

// MeasureFrame computes the quality metrics of a single frame.
func MeasureFrame(img *image.RGBA) FrameMetrics {
	luma := lumaPlane(img)
	w := img.Rect.Dx()
	h := img.Rect.Dy()

	mean, std := meanStd(luma)

	return FrameMetrics{
		Brightness: mean,
		Contrast:   std,
		Sharpness:  laplacianVariance(luma, w, h),
		Noise:      noiseEstimate(luma, w, h),
	}
}

// Aggregate combines sampled frame metrics into asset metrics using the
// median of each measurement.
func Aggregate(ctx context.Context, frames []FrameMetrics, width, height int, frameRate float64, frameCount int, duration float64) (Metrics, error) {
	if err := ctx.Err(); err != nil {
		return Metrics{}, err
	}
	if len(frames) == 0 {
		return Metrics{}, ErrNoFrames
	}
	if len(frames) < minSampledFrames {
		return Metrics{}, ErrInsufficientData
	}

	return Metrics{
		Width:         width,
		Height:        height,
		FrameRate:     frameRate,
		FrameCount:    frameCount,
		Duration:      duration,
		SampledFrames: len(frames),
		Frame: FrameMetrics{
			Brightness: medianOf(frames, func(f FrameMetrics) float64 { return f.Brightness }),
			Contrast:   medianOf(frames, func(f FrameMetrics) float64 { return f.Contrast }),
			Sharpness:  medianOf(frames, func(f FrameMetrics) float64 { return f.Sharpness }),
			Noise:      medianOf(frames, func(f FrameMetrics) float64 { return f.Noise }),
		},
	}, nil
}

// lumaPlane extracts the Rec.601 luma of every pixel.
func lumaPlane(img *image.RGBA) []float64 {
	b := img.Rect
	w, h := b.Dx(), b.Dy()
	luma := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			r := float64(row[x*4])
			g := float64(row[x*4+1])
			bl := float64(row[x*4+2])
			luma[y*w+x] = 0.299*r + 0.587*g + 0.114*bl
		}
	}
	return luma
}

func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		d := v - mean
		std += d * d
	}
	std = math.Sqrt(std / float64(len(values)))
	return mean, std
}

// laplacianVariance measures focus as the variance of the 4-neighbour
// Laplacian. Sharp edges produce large responses, soft focus small ones.
func laplacianVariance(luma []float64, w, h int) float64 {
	if w < 3 || h < 3 {
		return 0
	}
	responses := make([]float64, 0, (w-2)*(h-2))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			c := luma[y*w+x]
			lap := luma[(y-1)*w+x] + luma[(y+1)*w+x] + luma[y*w+x-1] + luma[y*w+x+1] - 4.0*c
			responses = append(responses, lap)
		}
	}
	_, std := meanStd(responses)
	return std * std
}

// noiseEstimate measures grain as the standard deviation of the centre
// region after subtracting a 5x5 box smoothing of itself. Structure
// survives the blur; noise does not.
func noiseEstimate(luma []float64, w, h int) float64 {
	cw := int(float64(w) * noiseRegionFraction)
	ch := int(float64(h) * noiseRegionFraction)
	if cw < 8 || ch < 8 {
		return 0
	}
	x0 := (w - cw) / 2
	y0 := (h - ch) / 2

	var residuals []float64
	for y := y0 + 2; y < y0+ch-2; y++ {
		for x := x0 + 2; x < x0+cw-2; x++ {
			var sum float64
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					sum += luma[(y+dy)*w+x+dx]
				}
			}
			residuals = append(residuals, luma[y*w+x]-sum/25.0)
		}
	}
	_, std := meanStd(residuals)
	return std
}

func medianOf(frames []FrameMetrics, pick func(FrameMetrics) float64) float64 {
	values := make([]float64, len(frames))
	for i, f := range frames {
		values[i] = pick(f)
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2.0
}
