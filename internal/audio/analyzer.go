package audio

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Analysis tuning constants.
const (
	// minAnalysisDuration is the shortest signal Analyze accepts.
	// Anything under half a second has too few quiet frames to
	// estimate a noise floor from.
	minAnalysisDuration = 0.5 // seconds

	// energyFrameSize is the frame length for time-domain energy
	// measurement (roughly 46ms at 44.1kHz).
	energyFrameSize = 2048

	// noiseFloorQuantile selects the quietest fraction of frames used
	// for the noise floor estimate.
	noiseFloorQuantile = 0.10

	// signalQuantile selects the loudest fraction of frames used for
	// the signal level estimate.
	signalQuantile = 0.50

	// spectralWindow and spectralHop define the STFT framing for
	// spectral ratio measurement (Hann window, 75% overlap).
	spectralWindow = 2048
	spectralHop    = spectralWindow / 4

	// highFreqCutoff splits the spectrum for the high-frequency ratio.
	highFreqCutoff = 8000.0 // Hz

	// rumbleCutoff bounds the low-frequency band for rumble detection.
	rumbleCutoff = 120.0 // Hz

	// clippingThresholdDB marks samples as clipped when the peak sits
	// within this distance of full scale.
	clippingThresholdDB = -0.1 // dBFS

	// snrCeiling is reported when the noise floor measures as zero.
	snrCeiling = 100.0 // dB

	// Noise floor safety clamp. Prevents absurd SNR figures on
	// synthetic or digitally silent material.
	noiseFloorMinDB = -120.0
	noiseFloorMaxDB = -10.0
)

// Analyze performs Pass 1: it measures the signal and returns immutable
// quality metrics. Channels are mixed to mono for measurement; the input
// is never modified.
func Analyze(ctx context.Context, chans [][]float64, rate int) (Metrics, error) {
	if len(chans) == 0 || len(chans[0]) == 0 {
		return Metrics{}, ErrInsufficientData
	}
	n := len(chans[0])
	duration := float64(n) / float64(rate)
	if duration < minAnalysisDuration {
		return Metrics{}, ErrInsufficientData
	}

	mono := mixMono(chans)
	if !allFinite(mono) {
		return Metrics{}, ErrNotFinite
	}

	m := Metrics{
		SampleRate: rate,
		Channels:   len(chans),
		Duration:   duration,
	}

	// Time-domain statistics
	peak, rms, clipped := levelStats(mono)
	m.PeakDB = LinearToDb(peak)
	m.RMSDB = LinearToDb(rms)
	m.ClippedSamples = clipped
	m.Clipping = m.PeakDB > clippingThresholdDB

	if err := ctx.Err(); err != nil {
		return Metrics{}, err
	}

	// Noise floor from the quietest frames, signal level from the
	// loudest half. Quiet inter-word gaps carry primarily room and
	// electronic noise, so their RMS is the floor of the recording.
	noise, signal := floorAndSignal(mono)
	m.NoiseFloor = noise
	m.NoiseFloorDB = clamp(LinearToDb(noise), noiseFloorMinDB, noiseFloorMaxDB)

	if noise <= 0 {
		m.SNR = snrCeiling
	} else {
		m.SNR = clamp(20.0*math.Log10(signal/noise), 0, snrCeiling)
	}

	if err := ctx.Err(); err != nil {
		return Metrics{}, err
	}

	// Spectral statistics via STFT
	hf, rumble := spectralRatios(ctx, mono, rate)
	m.HighFreqRatio = hf
	m.RumbleRatio = rumble

	if err := ctx.Err(); err != nil {
		return Metrics{}, err
	}
	return m, nil
}

// mixMono averages all channels into a single measurement signal.
func mixMono(chans [][]float64) []float64 {
	if len(chans) == 1 {
		return chans[0]
	}
	n := len(chans[0])
	mono := make([]float64, n)
	scale := 1.0 / float64(len(chans))
	for _, ch := range chans {
		for i, s := range ch {
			if i >= n {
				break
			}
			mono[i] += s * scale
		}
	}
	return mono
}

func allFinite(samples []float64) bool {
	for _, s := range samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return false
		}
	}
	return true
}

// levelStats returns the linear peak, overall RMS and the count of
// samples at or above the clipping threshold.
func levelStats(samples []float64) (peak, rms float64, clipped int) {
	clipLevel := DbToLinear(clippingThresholdDB)
	var sum float64
	for _, s := range samples {
		a := math.Abs(s)
		if a > peak {
			peak = a
		}
		if a >= clipLevel {
			clipped++
		}
		sum += s * s
	}
	rms = math.Sqrt(sum / float64(len(samples)))
	return peak, rms, clipped
}

// floorAndSignal estimates the noise floor and signal level from framed
// RMS energies. The floor is the mean of the quietest decile, the signal
// the mean of the loudest half.
func floorAndSignal(samples []float64) (noise, signal float64) {
	var energies []float64
	for off := 0; off+energyFrameSize <= len(samples); off += energyFrameSize {
		var sum float64
		for _, s := range samples[off : off+energyFrameSize] {
			sum += s * s
		}
		energies = append(energies, math.Sqrt(sum/float64(energyFrameSize)))
	}
	if len(energies) == 0 {
		// Signal shorter than one frame; fall back to overall RMS
		_, rms, _ := levelStats(samples)
		return 0, rms
	}

	sort.Float64s(energies)

	nq := int(float64(len(energies)) * noiseFloorQuantile)
	if nq < 1 {
		nq = 1
	}
	for _, e := range energies[:nq] {
		noise += e
	}
	noise /= float64(nq)

	ns := int(float64(len(energies)) * signalQuantile)
	if ns < 1 {
		ns = 1
	}
	loud := energies[len(energies)-ns:]
	for _, e := range loud {
		signal += e
	}
	signal /= float64(len(loud))

	return noise, signal
}

// spectralRatios measures the high-frequency and rumble shares of the
// total spectral energy with a Hann-windowed STFT. Both are 0..1.
func spectralRatios(ctx context.Context, samples []float64, rate int) (hf, rumble float64) {
	if len(samples) < spectralWindow {
		return 0, 0
	}

	fft := fourier.NewFFT(spectralWindow)
	window := hannWindow(spectralWindow)
	frame := make([]float64, spectralWindow)

	binHz := float64(rate) / float64(spectralWindow)
	var highE, rumbleE, totalE float64

	frames := 0
	for off := 0; off+spectralWindow <= len(samples); off += spectralHop {
		if frames%64 == 0 && ctx.Err() != nil {
			return 0, 0
		}
		for i := range frame {
			frame[i] = samples[off+i] * window[i]
		}
		coeffs := fft.Coefficients(nil, frame)
		for bin, c := range coeffs {
			power := real(c)*real(c) + imag(c)*imag(c)
			freq := float64(bin) * binHz
			totalE += power
			if freq > highFreqCutoff {
				highE += power
			}
			if freq < rumbleCutoff {
				rumbleE += power
			}
		}
		frames++
	}

	if totalE > 0 {
		hf = highE / totalE
		rumble = rumbleE / totalE
	}
	return hf, rumble
}

// hannWindow returns an n-point Hann window.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}
