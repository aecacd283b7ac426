package video

import (
	"image"
	"image/color"
	"testing"
)

// TestFrameOptions configures the synthetic frame to generate
type TestFrameOptions struct {
	Width      int     // default 160
	Height     int     // default 120
	Base       uint8   // flat base luma (greyscale fill)
	GradientX  bool    // horizontal luminance ramp for contrast/edges
	Checker    int     // checkerboard cell size in pixels (0 = none)
	NoiseLevel float64 // additive noise amplitude in luma units (0 = none)
	Tint       color.RGBA
}

// generateTestFrame creates a deterministic synthetic RGBA frame.
func generateTestFrame(t *testing.T, opts TestFrameOptions) *image.RGBA {
	t.Helper()

	if opts.Width == 0 {
		opts.Width = 160
	}
	if opts.Height == 0 {
		opts.Height = 120
	}

	// Simple LCG random number generator for deterministic noise
	rngState := uint32(98765)
	nextRandom := func() float64 {
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	for y := 0; y < opts.Height; y++ {
		for x := 0; x < opts.Width; x++ {
			v := float64(opts.Base)
			if opts.GradientX {
				v += 200.0 * float64(x) / float64(opts.Width-1)
			}
			if opts.Checker > 0 && ((x/opts.Checker)+(y/opts.Checker))%2 == 0 {
				v += 120.0
			}
			if opts.NoiseLevel > 0 {
				v += opts.NoiseLevel * nextRandom()
			}
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}

			px := uint8(v)
			c := color.RGBA{R: px, G: px, B: px, A: 255}
			if opts.Tint.A > 0 {
				c = blendTint(px, opts.Tint)
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func blendTint(luma uint8, tint color.RGBA) color.RGBA {
	scale := func(c uint8) uint8 {
		return uint8(uint32(luma) * uint32(c) / 255)
	}
	return color.RGBA{R: scale(tint.R), G: scale(tint.G), B: scale(tint.B), A: 255}
}

func colorRGBA(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// channelAndLuma measures the mean of one RGB channel (0=R, 1=G, 2=B)
// and the mean luma of a frame.
func channelAndLuma(img *image.RGBA, channel int) (chanMean, lumaMean float64) {
	b := img.Rect
	w, h := b.Dx(), b.Dy()
	var sum float64
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			sum += float64(row[x*4+channel])
		}
	}
	return sum / float64(w*h), frameLumaMean(img)
}

// frameLumaMean measures the mean luma of a frame.
func frameLumaMean(img *image.RGBA) float64 {
	luma := lumaPlane(img)
	mean, _ := meanStd(luma)
	return mean
}

// frameLumaStd measures the luma standard deviation of a frame.
func frameLumaStd(img *image.RGBA) float64 {
	luma := lumaPlane(img)
	_, std := meanStd(luma)
	return std
}
