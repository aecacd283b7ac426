// Package audio implements quality analysis and adaptive enhancement for
// PCM audio signals. Pass 1 (Analyze) measures the signal, a pure planner
// maps the measurements to processing parameters, and Pass 2 (Enhance)
// applies them.
package audio

import (
	"errors"
	"math"
)

// Sentinel errors returned by analysis and processing. Callers map these
// onto their own error taxonomy.
var (
	// ErrInsufficientData indicates the signal is too short to measure.
	ErrInsufficientData = errors.New("audio: not enough signal to analyse")

	// ErrNotFinite indicates NaN or Inf samples were encountered.
	ErrNotFinite = errors.New("audio: non-finite sample values")
)

// Metrics holds the measurements produced by Pass 1 analysis.
// Values are never mutated after Analyze returns.
type Metrics struct {
	SampleRate int
	Channels   int
	Duration   float64 // seconds

	PeakDB float64 // dBFS
	RMSDB  float64 // dBFS

	NoiseFloor   float64 // linear amplitude of the quietest segments
	NoiseFloorDB float64 // dBFS
	SNR          float64 // dB - signal level over noise floor

	HighFreqRatio float64 // fraction of total energy above 8kHz, 0..1
	RumbleRatio   float64 // fraction of total energy below 120Hz, 0..1

	Clipping       bool // peak within 0.1dB of full scale
	ClippedSamples int
}

// Plan holds the processing parameters derived from Metrics.
// A zero-ish plan (no reduction, no highpass, zero gain) passes the
// signal through essentially untouched.
type Plan struct {
	NoiseReduction float64 // 0-70, spectral subtraction strength
	HighpassHz     float64 // cutoff frequency, 0 disables
	TargetRMSDB    float64 // normalisation target (dBFS)
	GainDB         float64 // gain applied toward the target
	PeakLimit      bool    // engage the limiter after gain
	OutputRate     int     // output sample rate (resample happens last)
}

// PlanOptions carries caller preferences into the planner.
type PlanOptions struct {
	TargetRMSDB float64 // 0 means the default target
	MainsHz     float64 // local mains fundamental (50 or 60), 0 to ignore
	OutputRate  int     // 0 keeps the input rate
}

// DbToLinear converts a dBFS value to linear amplitude.
func DbToLinear(db float64) float64 {
	return math.Pow(10.0, db/20.0)
}

// LinearToDb converts linear amplitude to dBFS.
// Returns -120dB for silence rather than -Inf.
func LinearToDb(amp float64) float64 {
	if amp <= 0 {
		return -120.0
	}
	db := 20.0 * math.Log10(amp)
	if db < -120.0 {
		return -120.0
	}
	return db
}

// clamp restricts v to the inclusive range [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
