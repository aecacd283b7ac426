package audio

import (
	"math"
	"testing"
)

// TestSignalOptions configures the synthetic signal to generate
type TestSignalOptions struct {
	DurationSecs float64 // Total duration in seconds
	SampleRate   int     // Sample rate (default: 44100)
	Channels     int     // Channel count (default: 1)
	ToneFreq     float64 // Sine wave frequency in Hz (0 = no tone)
	ToneLevel    float64 // Tone level in dBFS (e.g., -23.0)
	NoiseLevel   float64 // White noise level in dBFS (0 = no noise)
	RumbleFreq   float64 // Low-frequency rumble in Hz (0 = none)
	RumbleLevel  float64 // Rumble level in dBFS
	Clip         bool    // Drive the signal into clipping
	SilenceGap   struct {
		Start    float64 // Start time of silence gap in seconds
		Duration float64 // Duration of silence gap in seconds
	}
}

// generateTestSignal creates deterministic synthetic PCM channels for
// testing. The signal can combine a tone, white noise, low-frequency
// rumble and clipping.
func generateTestSignal(t *testing.T, opts TestSignalOptions) ([][]float64, int) {
	t.Helper()

	if opts.SampleRate == 0 {
		opts.SampleRate = 44100
	}
	if opts.DurationSecs == 0 {
		opts.DurationSecs = 3.0
	}
	if opts.Channels == 0 {
		opts.Channels = 1
	}

	totalSamples := int(opts.DurationSecs * float64(opts.SampleRate))

	toneAmp := 0.0
	if opts.ToneFreq > 0 && opts.ToneLevel < 0 {
		toneAmp = math.Pow(10.0, opts.ToneLevel/20.0)
	}
	noiseAmp := 0.0
	if opts.NoiseLevel < 0 {
		noiseAmp = math.Pow(10.0, opts.NoiseLevel/20.0)
	}
	rumbleAmp := 0.0
	if opts.RumbleFreq > 0 && opts.RumbleLevel < 0 {
		rumbleAmp = math.Pow(10.0, opts.RumbleLevel/20.0)
	}

	// Simple LCG random number generator for deterministic noise
	// (avoids importing math/rand and seeding complexity)
	rngState := uint32(12345)
	nextRandom := func() float64 {
		// LCG parameters from Numerical Recipes
		rngState = rngState*1664525 + 1013904223
		return (float64(rngState)/float64(0xFFFFFFFF))*2.0 - 1.0
	}

	// Silence gaps stand in for the quiet inter-word segments of real
	// speech: only the noise bed remains during the gap
	silenceStart := int(opts.SilenceGap.Start * float64(opts.SampleRate))
	silenceEnd := int((opts.SilenceGap.Start + opts.SilenceGap.Duration) * float64(opts.SampleRate))

	chans := make([][]float64, opts.Channels)
	for c := range chans {
		chans[c] = make([]float64, totalSamples)
	}

	for i := 0; i < totalSamples; i++ {
		ts := float64(i) / float64(opts.SampleRate)
		inGap := opts.SilenceGap.Duration > 0 && i >= silenceStart && i < silenceEnd

		var sample float64
		if toneAmp > 0 && !inGap {
			sample += toneAmp * math.Sin(2.0*math.Pi*opts.ToneFreq*ts)
		}
		if rumbleAmp > 0 {
			sample += rumbleAmp * math.Sin(2.0*math.Pi*opts.RumbleFreq*ts)
		}
		if noiseAmp > 0 {
			sample += noiseAmp * nextRandom()
		}
		if opts.Clip {
			sample *= 4.0
		}

		if sample > 1.0 {
			sample = 1.0
		} else if sample < -1.0 {
			sample = -1.0
		}

		for c := range chans {
			chans[c][i] = sample
		}
	}

	return chans, opts.SampleRate
}

// signalRMSDB measures the RMS level of a channel in dBFS.
func signalRMSDB(samples []float64) float64 {
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return LinearToDb(math.Sqrt(sum / float64(len(samples))))
}

// signalPeak measures the linear peak of a channel.
func signalPeak(samples []float64) float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}
