package video

import (
	"testing"
)

func TestEnhanceFrameNoOpPlan(t *testing.T) {
	img := generateTestFrame(t, TestFrameOptions{Base: 100, Checker: 8})
	plan := Plan{ContrastFactor: 1.0, SaturationFactor: 1.0}

	out := EnhanceFrame(img, plan)

	if out.Rect != img.Rect {
		t.Fatalf("dimensions changed: %v -> %v", img.Rect, out.Rect)
	}
	for i := range img.Pix {
		if out.Pix[i] != img.Pix[i] {
			t.Fatalf("pixel data changed at byte %d for a no-op plan", i)
		}
	}
}

func TestEnhanceFrameDoesNotModifyInput(t *testing.T) {
	img := generateTestFrame(t, TestFrameOptions{Base: 100, Checker: 8, NoiseLevel: 30.0})
	orig := make([]uint8, len(img.Pix))
	copy(orig, img.Pix)

	plan := Plan{Denoise: 8.0, Sharpen: 1.0, BrightnessDelta: 20.0, ContrastFactor: 1.3, SaturationFactor: 1.2}
	EnhanceFrame(img, plan)

	for i := range orig {
		if img.Pix[i] != orig[i] {
			t.Fatalf("input frame modified at byte %d", i)
		}
	}
}

func TestEnhanceFrameDenoiseReducesNoise(t *testing.T) {
	img := generateTestFrame(t, TestFrameOptions{Base: 128, NoiseLevel: 40.0})
	before := MeasureFrame(img).Noise

	out := EnhanceFrame(img, Plan{Denoise: 10.0, ContrastFactor: 1.0, SaturationFactor: 1.0})
	after := MeasureFrame(out).Noise

	if after >= before*0.7 {
		t.Errorf("Noise %.2f -> %.2f, want a clear reduction", before, after)
	}
}

func TestEnhanceFrameSharpenIncreasesSharpness(t *testing.T) {
	// A smoothed checkerboard is soft; sharpening must bring edges back
	soft := EnhanceFrame(
		generateTestFrame(t, TestFrameOptions{Base: 60, Checker: 8}),
		Plan{Denoise: 10.0, ContrastFactor: 1.0, SaturationFactor: 1.0},
	)
	before := MeasureFrame(soft).Sharpness

	out := EnhanceFrame(soft, Plan{Sharpen: 1.5, ContrastFactor: 1.0, SaturationFactor: 1.0})
	after := MeasureFrame(out).Sharpness

	if after <= before {
		t.Errorf("Sharpness %.1f -> %.1f, want an increase", before, after)
	}
}

func TestEnhanceFrameBrightness(t *testing.T) {
	img := generateTestFrame(t, TestFrameOptions{Base: 60})

	out := EnhanceFrame(img, Plan{BrightnessDelta: 30.0, ContrastFactor: 1.0, SaturationFactor: 1.0})

	before := frameLumaMean(img)
	after := frameLumaMean(out)
	if after < before+25.0 || after > before+35.0 {
		t.Errorf("mean luma %.1f -> %.1f, want a lift of about 30", before, after)
	}
}

func TestEnhanceFrameContrast(t *testing.T) {
	img := generateTestFrame(t, TestFrameOptions{Base: 80, GradientX: true})

	out := EnhanceFrame(img, Plan{ContrastFactor: 1.3, SaturationFactor: 1.0})

	before := frameLumaStd(img)
	after := frameLumaStd(out)
	if after <= before {
		t.Errorf("luma std %.1f -> %.1f, want an increase", before, after)
	}
}

func TestEnhanceFrameLetterbox(t *testing.T) {
	// 4:3 source into a 16:9 target must pillarbox, not stretch
	img := generateTestFrame(t, TestFrameOptions{Width: 320, Height: 240, Base: 200})

	out := EnhanceFrame(img, Plan{TargetWidth: 640, TargetHeight: 360, ContrastFactor: 1.0, SaturationFactor: 1.0})

	if out.Rect.Dx() != 640 || out.Rect.Dy() != 360 {
		t.Fatalf("output = %dx%d, want 640x360", out.Rect.Dx(), out.Rect.Dy())
	}

	// Content scales to 480x360 centred; the left band stays black
	r, g, b, _ := out.At(10, 180).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("pillarbox band not black at (10,180): %d %d %d", r>>8, g>>8, b>>8)
	}

	// Centre carries the bright source content
	cr, _, _, _ := out.At(320, 180).RGBA()
	if cr>>8 < 150 {
		t.Errorf("centre luma = %d, want bright source content", cr>>8)
	}
}

func TestEnhanceFrameLetterboxBarsStayBlack(t *testing.T) {
	// Colour work runs before the geometry stage, so a brightness lift
	// must never repaint the pillarbox bars
	img := generateTestFrame(t, TestFrameOptions{Width: 320, Height: 240, Base: 128})

	out := EnhanceFrame(img, Plan{
		BrightnessDelta:  30.0,
		ContrastFactor:   1.0,
		SaturationFactor: 1.2,
		TargetWidth:      640,
		TargetHeight:     360,
	})

	if out.Rect.Dx() != 640 || out.Rect.Dy() != 360 {
		t.Fatalf("output = %dx%d, want 640x360", out.Rect.Dx(), out.Rect.Dy())
	}

	for _, pt := range []struct{ x, y int }{{5, 180}, {74, 10}, {634, 350}} {
		r, g, b, _ := out.At(pt.x, pt.y).RGBA()
		if r != 0 || g != 0 || b != 0 {
			t.Errorf("bar pixel at (%d,%d) = %d %d %d, want black", pt.x, pt.y, r>>8, g>>8, b>>8)
		}
	}

	// The lift still lands on the content itself
	cr, _, _, _ := out.At(320, 180).RGBA()
	if cr>>8 < 150 {
		t.Errorf("centre luma = %d, want lifted source content", cr>>8)
	}
}

func TestPassthroughFrame(t *testing.T) {
	img := generateTestFrame(t, TestFrameOptions{Width: 320, Height: 240, Base: 200})

	out := PassthroughFrame(img, Plan{BrightnessDelta: 30.0, TargetWidth: 640, TargetHeight: 360})
	if out.Rect.Dx() != 640 || out.Rect.Dy() != 360 {
		t.Fatalf("output = %dx%d, want 640x360", out.Rect.Dx(), out.Rect.Dy())
	}
	// Geometry only: pixel values pass through unmodified
	cr, _, _, _ := out.At(320, 180).RGBA()
	if got := cr >> 8; got < 190 || got > 210 {
		t.Errorf("centre value = %d, want the source value untouched", got)
	}

	same := PassthroughFrame(img, Plan{})
	if same.Rect != img.Rect {
		t.Fatalf("dimensions changed without a resize: %v", same.Rect)
	}
	for i := range img.Pix {
		if same.Pix[i] != img.Pix[i] {
			t.Fatalf("pixel data changed at byte %d", i)
		}
	}
}

func TestEnhanceFrameUpscaleKeepsAspect(t *testing.T) {
	img := generateTestFrame(t, TestFrameOptions{Width: 320, Height: 240, Base: 128, Checker: 8})

	out := EnhanceFrame(img, Plan{TargetWidth: 640, TargetHeight: 480, ContrastFactor: 1.0, SaturationFactor: 1.0})

	if out.Rect.Dx() != 640 || out.Rect.Dy() != 480 {
		t.Fatalf("output = %dx%d, want 640x480", out.Rect.Dx(), out.Rect.Dy())
	}

	// Same aspect ratio leaves no bars; the corner carries content
	mean := frameLumaMean(out)
	if mean < 100.0 {
		t.Errorf("mean luma = %.1f, want content across the full canvas", mean)
	}
}

func TestEnhanceFrameSaturation(t *testing.T) {
	img := generateTestFrame(t, TestFrameOptions{
		Base: 140,
		Tint: colorRGBA(220, 120, 120),
	})

	out := EnhanceFrame(img, Plan{ContrastFactor: 1.0, SaturationFactor: 1.2})

	// Saturation widens the spread between the red channel and luma
	inR, inL := channelAndLuma(img, 0)
	outR, outL := channelAndLuma(out, 0)
	if (outR - outL) <= (inR - inL) {
		t.Errorf("red-luma spread %.1f -> %.1f, want an increase", inR-inL, outR-outL)
	}
}
