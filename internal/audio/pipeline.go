package audio

import (
	"context"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Processing constants for Pass 2.
const (
	// denoiseWindow and denoiseHop frame the spectral subtraction STFT
	// (Hann window, 75% overlap).
	denoiseWindow = 2048
	denoiseHop    = denoiseWindow / 4

	// denoiseProfileQuantile selects the quietest fraction of frames
	// the noise profile is averaged from.
	denoiseProfileQuantile = 0.10

	// denoiseMaxOversubtract scales the noise profile at full strength.
	// Values much above 2 hollow out speech.
	denoiseMaxOversubtract = 2.0

	// denoiseSpectralFloor keeps a fraction of each bin's magnitude so
	// subtraction never produces musical-noise silence holes.
	denoiseSpectralFloor = 0.1

	// highpassQ is the Butterworth quality factor.
	highpassQ = 0.70710678

	// limiterCeilingDB is the hard ceiling applied when the plan flags
	// peak limiting.
	limiterCeilingDB = -0.5

	// cancelCheckInterval is the window/frame stride between context
	// checks inside tight loops.
	cancelCheckInterval = 64
)

// ProgressFunc receives processing progress in the range [0, 1].
type ProgressFunc func(fraction float64)

// Enhance performs Pass 2: it applies the plan to the signal and returns
// the processed channels and output sample rate. Channel count is
// preserved and the input slices are never modified. Stage order is
// fixed: denoise, highpass, normalise, resample last.
func Enhance(ctx context.Context, chans [][]float64, rate int, plan Plan, progress ProgressFunc) ([][]float64, int, error) {
	if len(chans) == 0 {
		return nil, 0, ErrInsufficientData
	}

	out := make([][]float64, len(chans))
	stages := 4.0
	for i, ch := range chans {
		base := float64(i) / float64(len(chans))
		span := 1.0 / float64(len(chans))
		report := func(stage float64) {
			if progress != nil {
				progress(base + span*stage/stages)
			}
		}

		processed := make([]float64, len(ch))
		copy(processed, ch)

		if plan.NoiseReduction > 0 {
			var err error
			processed, err = spectralDenoise(ctx, processed, plan.NoiseReduction)
			if err != nil {
				return nil, 0, err
			}
		}
		report(1)

		if plan.HighpassHz > 0 {
			processed = highpassZeroPhase(processed, rate, plan.HighpassHz)
		}
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		report(2)

		applyGain(processed, plan.GainDB)
		if plan.PeakLimit {
			limit(processed, DbToLinear(limiterCeilingDB))
		}
		clampSamples(processed)
		report(3)

		if plan.OutputRate > 0 && plan.OutputRate != rate {
			processed = resampleLinear(processed, rate, plan.OutputRate)
		}
		if !allFinite(processed) {
			return nil, 0, ErrNotFinite
		}
		report(4)

		out[i] = processed
	}

	outRate := rate
	if plan.OutputRate > 0 {
		outRate = plan.OutputRate
	}
	if progress != nil {
		progress(1.0)
	}
	return out, outRate, nil
}

// spectralDenoise reduces broadband noise by spectral subtraction. The
// noise profile is the per-bin mean magnitude of the quietest frames;
// each frame's magnitude is reduced toward the profile and the signal is
// rebuilt by Hann-weighted overlap-add.
func spectralDenoise(ctx context.Context, samples []float64, strength float64) ([]float64, error) {
	if len(samples) < denoiseWindow {
		return samples, nil
	}

	fft := fourier.NewFFT(denoiseWindow)
	window := hannWindow(denoiseWindow)
	bins := denoiseWindow/2 + 1

	// Collect frame spectra and energies
	var frames []stftFrame
	buf := make([]float64, denoiseWindow)
	for off := 0; off+denoiseWindow <= len(samples); off += denoiseHop {
		if len(frames)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		var energy float64
		for i := range buf {
			buf[i] = samples[off+i] * window[i]
			energy += buf[i] * buf[i]
		}
		frames = append(frames, stftFrame{
			coeffs: fft.Coefficients(nil, buf),
			energy: energy,
		})
	}
	if len(frames) == 0 {
		return samples, nil
	}

	// Noise profile from the quietest decile of frames
	profile := noiseProfile(frames, bins)

	// Oversubtraction factor scales with strength
	beta := denoiseMaxOversubtract * (strength / strengthMax)

	out := make([]float64, len(samples))
	norm := make([]float64, len(samples))
	spectrum := make([]complex128, bins)
	for fi, fr := range frames {
		if fi%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for b := 0; b < bins; b++ {
			c := fr.coeffs[b]
			mag := math.Hypot(real(c), imag(c))
			phase := math.Atan2(imag(c), real(c))
			reduced := mag - beta*profile[b]
			floor := mag * denoiseSpectralFloor
			if reduced < floor {
				reduced = floor
			}
			spectrum[b] = complex(reduced*math.Cos(phase), reduced*math.Sin(phase))
		}
		frame := fft.Sequence(nil, spectrum)
		off := fi * denoiseHop
		// fft.Sequence returns the unnormalised inverse; scale by 1/N
		scale := 1.0 / float64(denoiseWindow)
		for i := 0; i < denoiseWindow && off+i < len(out); i++ {
			out[off+i] += frame[i] * scale * window[i]
			norm[off+i] += window[i] * window[i]
		}
	}

	for i := range out {
		if norm[i] > 1e-9 {
			out[i] /= norm[i]
		} else {
			out[i] = samples[i]
		}
	}
	return out, nil
}

// stftFrame holds one analysis frame's spectrum and windowed energy.
type stftFrame struct {
	coeffs []complex128
	energy float64
}

// noiseProfile averages per-bin magnitudes over the quietest frames.
func noiseProfile(frames []stftFrame, bins int) []float64 {
	n := int(float64(len(frames)) * denoiseProfileQuantile)
	if n < 1 {
		n = 1
	}
	idx := quietestFrames(frames, n)

	profile := make([]float64, bins)
	for _, fi := range idx {
		for b := 0; b < bins; b++ {
			c := frames[fi].coeffs[b]
			profile[b] += math.Hypot(real(c), imag(c))
		}
	}
	for b := range profile {
		profile[b] /= float64(len(idx))
	}
	return profile
}

// quietestFrames returns the indices of the n lowest-energy frames.
func quietestFrames(frames []stftFrame, n int) []int {
	idx := make([]int, len(frames))
	for i := range idx {
		idx[i] = i
	}
	if n > len(idx) {
		n = len(idx)
	}
	// Partial selection sort; n is small relative to the frame count
	for i := 0; i < n; i++ {
		min := i
		for j := i + 1; j < len(idx); j++ {
			if frames[idx[j]].energy < frames[idx[min]].energy {
				min = j
			}
		}
		idx[i], idx[min] = idx[min], idx[i]
	}
	return idx[:n]
}

// biquad is a direct form I second-order IIR section.
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// newHighpass builds a Butterworth highpass biquad (RBJ cookbook).
func newHighpass(rate int, cutoff float64) *biquad {
	w0 := 2.0 * math.Pi * cutoff / float64(rate)
	cosW := math.Cos(w0)
	alpha := math.Sin(w0) / (2.0 * highpassQ)

	a0 := 1.0 + alpha
	return &biquad{
		b0: (1.0 + cosW) / 2.0 / a0,
		b1: -(1.0 + cosW) / a0,
		b2: (1.0 + cosW) / 2.0 / a0,
		a1: -2.0 * cosW / a0,
		a2: (1.0 - alpha) / a0,
	}
}

// highpassZeroPhase filters forward then backward so the rumble filter
// introduces no phase shift in the voice band.
func highpassZeroPhase(samples []float64, rate int, cutoff float64) []float64 {
	forward := newHighpass(rate, cutoff)
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = forward.process(s)
	}

	backward := newHighpass(rate, cutoff)
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = backward.process(out[i])
	}
	return out
}

// applyGain scales all samples by a dB gain.
func applyGain(samples []float64, gainDB float64) {
	if gainDB == 0 {
		return
	}
	g := DbToLinear(gainDB)
	for i := range samples {
		samples[i] *= g
	}
}

// limit applies a soft-knee limiter so no sample exceeds the ceiling.
// tanh keeps the transfer curve smooth through the knee instead of
// flat-topping transients.
func limit(samples []float64, ceiling float64) {
	for i, s := range samples {
		samples[i] = ceiling * math.Tanh(s/ceiling)
	}
}

// clampSamples hard-bounds the signal to [-1, 1].
func clampSamples(samples []float64) {
	for i, s := range samples {
		if s > 1.0 {
			samples[i] = 1.0
		} else if s < -1.0 {
			samples[i] = -1.0
		}
	}
}

// resampleLinear converts the sample rate by linear interpolation.
// Always the final stage so every upstream filter runs at the input
// rate it was planned for.
func resampleLinear(samples []float64, fromRate, toRate int) []float64 {
	if fromRate == toRate || len(samples) == 0 {
		return samples
	}
	ratio := float64(fromRate) / float64(toRate)
	outLen := int(float64(len(samples)) / ratio)
	if outLen < 1 {
		outLen = 1
	}
	out := make([]float64, outLen)
	for i := range out {
		pos := float64(i) * ratio
		i0 := int(pos)
		if i0 >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(i0)
		out[i] = samples[i0]*(1.0-frac) + samples[i0+1]*frac
	}
	return out
}
