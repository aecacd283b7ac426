package audio

import (
	"context"
	"math"
	"testing"
)

func TestEnhanceNoOpPlanPreservesSignal(t *testing.T) {
	chans, rate := generateTestSignal(t, TestSignalOptions{
		DurationSecs: 2.0,
		ToneFreq:     440.0,
		ToneLevel:    -20.0,
	})

	plan := Plan{TargetRMSDB: -18.0, OutputRate: rate}
	out, outRate, err := Enhance(context.Background(), chans, rate, plan, nil)
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if outRate != rate {
		t.Fatalf("outRate = %d, want %d", outRate, rate)
	}
	if len(out) != len(chans) {
		t.Fatalf("channels = %d, want %d", len(out), len(chans))
	}

	// A plan with no reduction, no highpass and no gain must pass the
	// signal through essentially untouched
	var maxDiff float64
	for i := range chans[0] {
		if d := math.Abs(out[0][i] - chans[0][i]); d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > 1e-9 {
		t.Errorf("max sample difference = %g, want ~0 for a no-op plan", maxDiff)
	}
}

func TestEnhanceDoesNotModifyInput(t *testing.T) {
	chans, rate := generateTestSignal(t, TestSignalOptions{
		DurationSecs: 2.0,
		ToneFreq:     440.0,
		ToneLevel:    -20.0,
		NoiseLevel:   -40.0,
	})
	orig := make([]float64, len(chans[0]))
	copy(orig, chans[0])

	plan := Plan{NoiseReduction: 50.0, HighpassHz: 80.0, GainDB: 6.0, TargetRMSDB: -18.0, OutputRate: rate}
	if _, _, err := Enhance(context.Background(), chans, rate, plan, nil); err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	for i := range orig {
		if chans[0][i] != orig[i] {
			t.Fatalf("input modified at sample %d", i)
		}
	}
}

func TestEnhanceDenoiseReducesNoise(t *testing.T) {
	opts := TestSignalOptions{
		DurationSecs: 3.0,
		ToneFreq:     440.0,
		ToneLevel:    -20.0,
		NoiseLevel:   -35.0,
	}
	opts.SilenceGap.Start = 1.2
	opts.SilenceGap.Duration = 0.5
	chans, rate := generateTestSignal(t, opts)

	plan := Plan{NoiseReduction: 60.0, TargetRMSDB: -18.0, OutputRate: rate}
	out, _, err := Enhance(context.Background(), chans, rate, plan, nil)
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	// Measure the noise bed inside the silence gap before and after
	gapStart := int(1.3 * float64(rate))
	gapEnd := int(1.6 * float64(rate))
	before := signalRMSDB(chans[0][gapStart:gapEnd])
	after := signalRMSDB(out[0][gapStart:gapEnd])

	if after >= before-3.0 {
		t.Errorf("gap noise %.1fdB -> %.1fdB, want at least 3dB reduction", before, after)
	}
}

func TestEnhanceHighpassRemovesRumble(t *testing.T) {
	chans, rate := generateTestSignal(t, TestSignalOptions{
		DurationSecs: 2.0,
		ToneFreq:     1000.0,
		ToneLevel:    -30.0,
		RumbleFreq:   30.0,
		RumbleLevel:  -20.0,
	})

	plan := Plan{HighpassHz: 80.0, TargetRMSDB: -18.0, OutputRate: rate}
	out, _, err := Enhance(context.Background(), chans, rate, plan, nil)
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	// Rumble dominates the input RMS; after the highpass the level
	// should drop toward the tone alone
	before := signalRMSDB(chans[0])
	after := signalRMSDB(out[0])
	if after >= before-6.0 {
		t.Errorf("RMS %.1fdB -> %.1fdB, want at least 6dB of rumble removed", before, after)
	}
}

func TestEnhanceGainAndLimiter(t *testing.T) {
	chans, rate := generateTestSignal(t, TestSignalOptions{
		DurationSecs: 1.0,
		ToneFreq:     440.0,
		ToneLevel:    -6.0,
	})

	plan := Plan{GainDB: 12.0, PeakLimit: true, TargetRMSDB: -18.0, OutputRate: rate}
	out, _, err := Enhance(context.Background(), chans, rate, plan, nil)
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	ceiling := DbToLinear(limiterCeilingDB)
	if peak := signalPeak(out[0]); peak > ceiling+1e-6 {
		t.Errorf("peak = %.4f, want <= limiter ceiling %.4f", peak, ceiling)
	}
}

func TestEnhanceOutputAlwaysBounded(t *testing.T) {
	chans, rate := generateTestSignal(t, TestSignalOptions{
		DurationSecs: 1.0,
		ToneFreq:     440.0,
		ToneLevel:    -3.0,
	})

	plan := Plan{GainDB: 24.0, TargetRMSDB: -18.0, OutputRate: rate}
	out, _, err := Enhance(context.Background(), chans, rate, plan, nil)
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	if peak := signalPeak(out[0]); peak > 1.0 {
		t.Errorf("peak = %.4f, want <= 1.0 even without the limiter", peak)
	}
}

func TestEnhanceResampleLast(t *testing.T) {
	chans, rate := generateTestSignal(t, TestSignalOptions{
		DurationSecs: 2.0,
		ToneFreq:     440.0,
		ToneLevel:    -20.0,
	})

	plan := Plan{TargetRMSDB: -18.0, OutputRate: 22050}
	out, outRate, err := Enhance(context.Background(), chans, rate, plan, nil)
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if outRate != 22050 {
		t.Fatalf("outRate = %d, want 22050", outRate)
	}

	wantLen := len(chans[0]) / 2
	if got := len(out[0]); got < wantLen-2 || got > wantLen+2 {
		t.Errorf("output length = %d, want about %d", got, wantLen)
	}
}

func TestEnhancePreservesChannelCount(t *testing.T) {
	chans, rate := generateTestSignal(t, TestSignalOptions{
		DurationSecs: 1.0,
		Channels:     2,
		ToneFreq:     440.0,
		ToneLevel:    -20.0,
	})

	plan := Plan{NoiseReduction: 30.0, TargetRMSDB: -18.0, OutputRate: rate}
	out, _, err := Enhance(context.Background(), chans, rate, plan, nil)
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("channels = %d, want 2", len(out))
	}
	if len(out[0]) != len(out[1]) {
		t.Errorf("channel lengths differ: %d vs %d", len(out[0]), len(out[1]))
	}
}

func TestEnhanceCancelled(t *testing.T) {
	chans, rate := generateTestSignal(t, TestSignalOptions{
		DurationSecs: 3.0,
		ToneFreq:     440.0,
		ToneLevel:    -20.0,
		NoiseLevel:   -40.0,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan := Plan{NoiseReduction: 50.0, TargetRMSDB: -18.0, OutputRate: rate}
	if _, _, err := Enhance(ctx, chans, rate, plan, nil); err == nil {
		t.Error("Enhance succeeded with a cancelled context")
	}
}

func TestEnhanceProgressMonotone(t *testing.T) {
	chans, rate := generateTestSignal(t, TestSignalOptions{
		DurationSecs: 2.0,
		Channels:     2,
		ToneFreq:     440.0,
		ToneLevel:    -20.0,
		NoiseLevel:   -40.0,
	})

	var fractions []float64
	plan := Plan{NoiseReduction: 40.0, HighpassHz: 60.0, GainDB: 2.0, TargetRMSDB: -18.0, OutputRate: rate}
	_, _, err := Enhance(context.Background(), chans, rate, plan, func(f float64) {
		fractions = append(fractions, f)
	})
	if err != nil {
		t.Fatalf("Enhance failed: %v", err)
	}

	if len(fractions) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] < fractions[i-1] {
			t.Fatalf("progress went backward: %.3f after %.3f", fractions[i], fractions[i-1])
		}
	}
	if last := fractions[len(fractions)-1]; last != 1.0 {
		t.Errorf("final progress = %.3f, want 1.0", last)
	}
}

func TestResampleLinear(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		inLen    int
		wantLen  int
	}{
		{"downsample 2x", 44100, 22050, 44100, 22050},
		{"upsample 2x", 22050, 44100, 22050, 44100},
		{"same rate", 44100, 44100, 1000, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := make([]float64, tt.inLen)
			for i := range in {
				in[i] = math.Sin(2.0 * math.Pi * 440.0 * float64(i) / float64(tt.from))
			}
			out := resampleLinear(in, tt.from, tt.to)
			if got := len(out); got < tt.wantLen-2 || got > tt.wantLen+2 {
				t.Errorf("length = %d, want about %d", got, tt.wantLen)
			}
		})
	}
}
