package video

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/nfnt/resize"
)

// Frame processing constants.
const (
	// denoiseStrongRadius widens the smoothing kernel for the heaviest
	// denoise tier.
	denoiseStrongThreshold = 5.0

	// unsharpRadius approximates the Gaussian blur used by the
	// unsharp mask.
	unsharpRadius = 2

	// contrastPivot is the luma value contrast scaling pivots around.
	contrastPivot = 128.0
)

// EnhanceFrame applies the plan to a single frame and returns the
// processed copy. The input frame is never modified. Stage order is
// fixed: denoise, sharpen, brightness/contrast, saturation, and the
// geometry change last so colour work never touches the letterbox bars.
func EnhanceFrame(img *image.RGBA, plan Plan) *image.RGBA {
	out := cloneRGBA(img)

	if plan.Denoise > 0 {
		out = denoiseFrame(out, plan.Denoise)
	}

	if plan.Sharpen > 0 {
		out = unsharpMask(out, plan.Sharpen)
	}

	if plan.BrightnessDelta != 0 || plan.ContrastFactor != 1.0 || plan.SaturationFactor != 1.0 {
		adjustColor(out, plan.BrightnessDelta, plan.ContrastFactor, plan.SaturationFactor)
	}

	if plan.Resizes(img.Rect.Dx(), img.Rect.Dy()) {
		out = letterboxResize(out, plan.TargetWidth, plan.TargetHeight)
	}

	return out
}

// PassthroughFrame applies only the plan's geometry change, leaving
// pixel values untouched. It keeps the output stream at one frame per
// input frame when a frame cannot go through the enhancement chain.
func PassthroughFrame(img *image.RGBA, plan Plan) *image.RGBA {
	if plan.Resizes(img.Rect.Dx(), img.Rect.Dy()) {
		return letterboxResize(img, plan.TargetWidth, plan.TargetHeight)
	}
	return cloneRGBA(img)
}

// denoiseFrame blends the frame with a box-smoothed copy of itself.
// Strength selects both the kernel size and the blend weight, so light
// grain gets a light touch and heavy noise a strong one.
func denoiseFrame(img *image.RGBA, strength float64) *image.RGBA {
	radius := 1
	if strength > denoiseStrongThreshold {
		radius = 2
	}
	blurred := boxBlur(img, radius)

	weight := strength / denoiseHeavy
	if weight > 1.0 {
		weight = 1.0
	}

	out := img
	for i := range out.Pix {
		if i%4 == 3 {
			continue // alpha
		}
		orig := float64(out.Pix[i])
		smooth := float64(blurred.Pix[i])
		out.Pix[i] = clampByte(orig + (smooth-orig)*weight)
	}
	return out
}

// letterboxResize scales the frame to fit inside the target dimensions
// while preserving aspect, centring it on a black canvas. Lanczos keeps
// edges crisp through the resampling.
func letterboxResize(img *image.RGBA, targetW, targetH int) *image.RGBA {
	srcW := img.Rect.Dx()
	srcH := img.Rect.Dy()

	scaleW := float64(targetW) / float64(srcW)
	scaleH := float64(targetH) / float64(srcH)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	scaledW := int(float64(srcW) * scale)
	scaledH := int(float64(srcH) * scale)
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledH < 1 {
		scaledH = 1
	}

	scaled := resize.Resize(uint(scaledW), uint(scaledH), img, resize.Lanczos3)

	canvas := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(canvas, canvas.Rect, image.NewUniform(color.Black), image.Point{}, draw.Src)

	offset := image.Pt((targetW-scaledW)/2, (targetH-scaledH)/2)
	draw.Draw(canvas, image.Rectangle{Min: offset, Max: offset.Add(image.Pt(scaledW, scaledH))},
		scaled, image.Point{}, draw.Src)
	return canvas
}

// unsharpMask sharpens by subtracting a blurred copy:
// out = original*(1+amount) - blurred*amount.
func unsharpMask(img *image.RGBA, amount float64) *image.RGBA {
	blurred := boxBlur(img, unsharpRadius)
	out := img
	for i := range out.Pix {
		if i%4 == 3 {
			continue
		}
		orig := float64(out.Pix[i])
		smooth := float64(blurred.Pix[i])
		out.Pix[i] = clampByte(orig*(1.0+amount) - smooth*amount)
	}
	return out
}

// adjustColor applies brightness, contrast and saturation in one pass.
// Contrast pivots around mid grey; saturation scales each channel's
// distance from the pixel's luma.
func adjustColor(img *image.RGBA, brightness, contrast, saturation float64) {
	b := img.Rect
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			r := float64(row[x*4])
			g := float64(row[x*4+1])
			bl := float64(row[x*4+2])

			r = (r-contrastPivot)*contrast + contrastPivot + brightness
			g = (g-contrastPivot)*contrast + contrastPivot + brightness
			bl = (bl-contrastPivot)*contrast + contrastPivot + brightness

			if saturation != 1.0 {
				luma := 0.299*r + 0.587*g + 0.114*bl
				r = luma + (r-luma)*saturation
				g = luma + (g-luma)*saturation
				bl = luma + (bl-luma)*saturation
			}

			row[x*4] = clampByte(r)
			row[x*4+1] = clampByte(g)
			row[x*4+2] = clampByte(bl)
		}
	}
}

// boxBlur smooths with a (2r+1)^2 box kernel, clamping at the borders.
func boxBlur(img *image.RGBA, radius int) *image.RGBA {
	b := img.Rect
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))

	size := float64((2*radius + 1) * (2*radius + 1))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sr, sg, sb float64
			for dy := -radius; dy <= radius; dy++ {
				yy := clampInt(y+dy, 0, h-1)
				for dx := -radius; dx <= radius; dx++ {
					xx := clampInt(x+dx, 0, w-1)
					o := yy*img.Stride + xx*4
					sr += float64(img.Pix[o])
					sg += float64(img.Pix[o+1])
					sb += float64(img.Pix[o+2])
				}
			}
			o := y*out.Stride + x*4
			out.Pix[o] = clampByte(sr / size)
			out.Pix[o+1] = clampByte(sg / size)
			out.Pix[o+2] = clampByte(sb / size)
			out.Pix[o+3] = img.Pix[y*img.Stride+x*4+3]
		}
	}
	return out
}

func cloneRGBA(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	return out
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
