package video

import "math"

// Adaptive tuning constants for video planning.
const (
	// Denoise tiers keyed on the residual noise estimate.
	noiseHeavy      = 15.0
	noiseModerate   = 8.0
	noiseLight      = 4.0
	denoiseHeavy    = 10.0
	denoiseModerate = 5.0
	denoiseLight    = 3.0

	// Sharpen tiers keyed on Laplacian variance. Soft footage gets a
	// strong unsharp mask, crisp footage none at all.
	sharpnessSoft     = 100.0
	sharpnessAverage  = 300.0
	sharpnessDecent   = 500.0
	sharpenSoft       = 1.5
	sharpenAverage    = 0.8
	sharpenDecent     = 0.3

	// Brightness correction bands (mean luma 0-255).
	brightnessDark   = 80.0
	brightnessBright = 180.0
	brightnessLift   = 30.0
	brightnessDrop   = -20.0

	// Contrast correction bands (luma std-dev).
	contrastFlat      = 30.0
	contrastDull      = 50.0
	contrastBoostFlat = 1.3
	contrastBoostDull = 1.15

	// Washed-out footage also gets a saturation lift.
	saturationTrigger = 40.0
	saturationBoost   = 1.2

	// Auto resolution policy: sub-HD sources go up to full HD height,
	// never down. The headroom gate keeps footage that is too blurred
	// or too noisy to survive enlargement at its native size.
	autoMinWidth        = 1280
	autoMinHeight       = 720
	autoTargetHeight    = 1080
	upscaleMinSharpness = 50.0
	upscaleMaxNoise     = 25.0
)

// PlanEnhancement maps aggregated metrics to a processing plan. Pure and
// deterministic; all parameters are clamped to safe ranges.
func PlanEnhancement(m Metrics, res ResolutionConfig) Plan {
	plan := Plan{
		Denoise:          planDenoise(m.Frame.Noise),
		Sharpen:          planSharpen(m.Frame.Sharpness),
		BrightnessDelta:  planBrightness(m.Frame.Brightness),
		ContrastFactor:   planContrast(m.Frame.Contrast),
		SaturationFactor: 1.0,
	}

	if m.Frame.Contrast < saturationTrigger {
		plan.SaturationFactor = saturationBoost
	}

	plan.TargetWidth, plan.TargetHeight = planResolution(m, res)
	return plan
}

// planDenoise derives blur blend strength from the noise estimate.
// Monotone non-decreasing in noise.
func planDenoise(noise float64) float64 {
	switch {
	case noise > noiseHeavy:
		return denoiseHeavy
	case noise > noiseModerate:
		return denoiseModerate
	case noise > noiseLight:
		return denoiseLight
	default:
		return 0
	}
}

// planSharpen derives the unsharp mask amount from measured sharpness.
// Monotone non-increasing in sharpness.
func planSharpen(sharpness float64) float64 {
	switch {
	case sharpness < sharpnessSoft:
		return sharpenSoft
	case sharpness < sharpnessAverage:
		return sharpenAverage
	case sharpness < sharpnessDecent:
		return sharpenDecent
	default:
		return 0
	}
}

func planBrightness(brightness float64) float64 {
	switch {
	case brightness < brightnessDark:
		return brightnessLift
	case brightness > brightnessBright:
		return brightnessDrop
	default:
		return 0
	}
}

func planContrast(contrast float64) float64 {
	switch {
	case contrast < contrastFlat:
		return contrastBoostFlat
	case contrast < contrastDull:
		return contrastBoostDull
	default:
		return 1.0
	}
}

// planResolution resolves the output dimensions for the source.
// Dimensions are always even so downstream encoders accept them.
func planResolution(m Metrics, res ResolutionConfig) (int, int) {
	switch res.Mode {
	case ResolutionUnchanged:
		return 0, 0

	case ResolutionExplicit:
		if res.Width <= 0 || res.Height <= 0 {
			return 0, 0
		}
		return evenDim(res.Width), evenDim(res.Height)

	default: // ResolutionAuto
		if m.Width >= autoMinWidth && m.Height >= autoMinHeight {
			return 0, 0 // already large enough, never downscale
		}
		// Enlarging footage with no real detail, or noise so heavy the
		// denoise stage cannot clean it, only magnifies the defects
		if m.Frame.Sharpness < upscaleMinSharpness || m.Frame.Noise > upscaleMaxNoise {
			return 0, 0
		}
		factor := float64(autoTargetHeight) / float64(m.Height)
		return evenDim(int(math.Round(float64(m.Width) * factor))), autoTargetHeight
	}
}

func evenDim(d int) int {
	if d%2 != 0 {
		return d + 1
	}
	return d
}
