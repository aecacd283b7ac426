// Package logging handles generation of enhancement reports for processed media files

package logging

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/clearwave/clearwave/internal/audio"
	"github.com/clearwave/clearwave/internal/video"
)

// ============================================================================
// Measurement Interpretation Functions
// ============================================================================
// These functions interpret raw measurements and return human-readable
// descriptions of signal characteristics. Thresholds follow the same tiers
// the planners use, so the report explains the decisions it sits next to.

// interpretSNR describes the gap between signal level and noise floor.
// Speech recorded in a quiet room typically measures 30dB or better;
// below 15dB the noise is clearly audible between words.
func interpretSNR(db float64) string {
	switch {
	case db >= 30:
		return "clean, noise inaudible"
	case db >= 25:
		return "good, slight noise between words"
	case db >= 15:
		return "fair, audible background noise"
	case db >= 8:
		return "poor, noise competes with speech"
	default:
		return "very poor, noise-dominated"
	}
}

// interpretNoiseFloorDB describes the absolute background level.
func interpretNoiseFloorDB(db float64) string {
	switch {
	case isDigitalSilence(db):
		return "digital silence"
	case db < -70:
		return "very quiet room"
	case db < -55:
		return "quiet room, typical home recording"
	case db < -45:
		return "noticeable room noise"
	default:
		return "loud background, fans or traffic"
	}
}

// interpretHighFreqRatio describes the energy balance above 8kHz.
// Broadband hiss pushes this ratio up; heavily filtered or muffled
// material pulls it near zero.
func interpretHighFreqRatio(ratio float64) string {
	switch {
	case ratio < 0.05:
		return "dark, little high-frequency content"
	case ratio < 0.3:
		return "natural balance for speech"
	case ratio < 0.6:
		return "bright, possible hiss"
	default:
		return "hiss-dominated high end"
	}
}

// interpretRumbleRatio describes low-frequency energy below 120Hz.
func interpretRumbleRatio(ratio float64) string {
	switch {
	case ratio < 0.08:
		return "negligible rumble"
	case ratio < 0.3:
		return "noticeable hum or rumble"
	default:
		return "strong low-frequency interference"
	}
}

// interpretBrightness describes mean luma on the 0-255 scale.
func interpretBrightness(mean float64) string {
	switch {
	case mean < 80:
		return "underexposed, dark"
	case mean < 180:
		return "well exposed"
	default:
		return "overexposed, washed out"
	}
}

// interpretContrast describes luma standard deviation.
func interpretContrast(std float64) string {
	switch {
	case std < 30:
		return "flat, low contrast"
	case std < 50:
		return "slightly flat"
	default:
		return "good tonal range"
	}
}

// interpretSharpness describes Laplacian variance.
// Focused detail produces strong second derivatives; soft or
// out-of-focus material suppresses them.
func interpretSharpness(variance float64) string {
	switch {
	case variance < 100:
		return "soft, blurry or out of focus"
	case variance < 300:
		return "slightly soft"
	case variance < 500:
		return "acceptable detail"
	default:
		return "crisp, well focused"
	}
}

// interpretVideoNoise describes the smoothing-residual estimate.
func interpretVideoNoise(level float64) string {
	switch {
	case level < 4:
		return "clean"
	case level < 8:
		return "mild grain"
	case level < 15:
		return "visible noise"
	default:
		return "heavy noise, low light or high ISO"
	}
}

// =============================================================================
// Report Section Formatting Helpers
// =============================================================================

// writeSection writes a section header with title and dashed underline.
// The underline length matches the title length.
func writeSection(f *os.File, title string) {
	fmt.Fprintln(f, title)
	fmt.Fprintln(f, strings.Repeat("-", len(title)))
}

func writeReportHeader(f *os.File, kind, inputPath, outputPath string, processTime time.Duration) {
	writeSection(f, "Clearwave Enhancement Report")
	fmt.Fprintf(f, "Kind:      %s\n", kind)
	fmt.Fprintf(f, "Input:     %s\n", inputPath)
	fmt.Fprintf(f, "Output:    %s\n", outputPath)
	fmt.Fprintf(f, "Generated: %s\n", time.Now().Format(time.RFC1123))
	fmt.Fprintf(f, "Duration:  %s\n", processTime.Round(time.Millisecond))
	fmt.Fprintln(f, "")
}

// formatDuration renders a media duration as m:ss.
func formatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return MissingValue
	}
	d := time.Duration(seconds * float64(time.Second))
	mins := int(d.Minutes())
	secs := d.Seconds() - float64(mins)*60
	return fmt.Sprintf("%d:%05.2f", mins, secs)
}

// =============================================================================
// Audio Report
// =============================================================================

// AudioReport contains everything needed to generate an audio enhancement report.
type AudioReport struct {
	InputPath   string
	OutputPath  string
	Metrics     audio.Metrics
	Plan        audio.Plan
	OutputRMSDB float64
	MainsHz     float64
	ProcessTime time.Duration
}

// WriteAudioReport creates a plain-text enhancement report at path.
//
// Report structure:
// 1. Header - file info and timestamp
// 2. Source - format details
// 3. Analysis - measurements with interpretations
// 4. Enhancement Applied - plan parameters with rationale
// 5. Levels - Input/Output comparison table
func WriteAudioReport(path string, r AudioReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	writeReportHeader(f, "audio", r.InputPath, r.OutputPath, r.ProcessTime)

	writeSection(f, "Source")
	fmt.Fprintf(f, "Sample rate:  %d Hz\n", r.Metrics.SampleRate)
	fmt.Fprintf(f, "Channels:     %d\n", r.Metrics.Channels)
	fmt.Fprintf(f, "Length:       %s\n", formatDuration(r.Metrics.Duration))
	fmt.Fprintln(f, "")

	writeAudioAnalysis(f, r.Metrics)
	writeAudioPlanApplied(f, r.Metrics, r.Plan, r.MainsHz)
	writeAudioLevelsTable(f, r.Metrics, r.Plan, r.OutputRMSDB)

	writeTips(f, GenerateAudioTips(r.Metrics))

	return nil
}

func writeAudioAnalysis(f *os.File, m audio.Metrics) {
	writeSection(f, "Analysis")

	table := NewMetricTable()
	table.Headers = []string{"Value"}
	table.AddRow("Peak Level", []string{formatMetricDB(m.PeakDB, 1)}, "dBFS", "")
	table.AddRow("RMS Level", []string{formatMetricDB(m.RMSDB, 1)}, "dBFS", "")
	table.AddRow("Noise Floor", []string{formatMetricDB(m.NoiseFloorDB, 1)}, "dBFS", interpretNoiseFloorDB(m.NoiseFloorDB))
	table.AddRow("SNR", []string{formatMetric(m.SNR, 1)}, "dB", interpretSNR(m.SNR))
	table.AddRow("HF Ratio", []string{formatMetric(m.HighFreqRatio, 3)}, "", interpretHighFreqRatio(m.HighFreqRatio))
	table.AddRow("LF Ratio", []string{formatMetric(m.RumbleRatio, 3)}, "", interpretRumbleRatio(m.RumbleRatio))
	fmt.Fprint(f, table.String())

	if m.Clipping {
		fmt.Fprintf(f, "\nClipping detected: %d samples at or above full scale\n", m.ClippedSamples)
	}
	fmt.Fprintln(f, "")
}

func writeAudioPlanApplied(f *os.File, m audio.Metrics, p audio.Plan, mainsHz float64) {
	writeSection(f, "Enhancement Applied")

	fmt.Fprintf(f, "Noise reduction:  %.0f / 70\n", p.NoiseReduction)
	fmt.Fprintf(f, "  Rationale: SNR of %.1f dB (%s)\n", m.SNR, interpretSNR(m.SNR))

	if p.HighpassHz > 0 {
		fmt.Fprintf(f, "Highpass filter:  %.0f Hz\n", p.HighpassHz)
		if mainsHz > 0 && m.RumbleRatio > 0.08 {
			fmt.Fprintf(f, "  Rationale: low-frequency ratio %.3f with %.0f Hz mains power\n", m.RumbleRatio, mainsHz)
		} else {
			fmt.Fprintf(f, "  Rationale: noise floor at %.1f dBFS\n", m.NoiseFloorDB)
		}
	} else {
		fmt.Fprintln(f, "Highpass filter:  off")
	}

	fmt.Fprintf(f, "Gain:             %s dB toward %.1f dBFS RMS\n", formatMetricSigned(p.GainDB, 1), p.TargetRMSDB)
	if p.PeakLimit {
		fmt.Fprintln(f, "Peak limiter:     engaged")
		if m.Clipping {
			fmt.Fprintln(f, "  Rationale: input clipping detected")
		} else {
			fmt.Fprintln(f, "  Rationale: post-gain peak would exceed headroom")
		}
	} else {
		fmt.Fprintln(f, "Peak limiter:     off")
	}

	if p.OutputRate != 0 && p.OutputRate != m.SampleRate {
		fmt.Fprintf(f, "Resample:         %d Hz -> %d Hz\n", m.SampleRate, p.OutputRate)
	}
	fmt.Fprintln(f, "")
}

func writeAudioLevelsTable(f *os.File, m audio.Metrics, p audio.Plan, outputRMSDB float64) {
	writeSection(f, "Levels")

	table := NewMetricTable()
	table.AddRow("RMS Level", []string{formatMetricDB(m.RMSDB, 1), formatMetricDB(outputRMSDB, 1)}, "dBFS", "")
	table.AddRow("Gain Change", []string{"", formatMetricSigned(outputRMSDB-m.RMSDB, 1)}, "dB", "")
	fmt.Fprint(f, table.String())
	fmt.Fprintln(f, "")
}

// =============================================================================
// Video Report
// =============================================================================

// VideoReport contains everything needed to generate a video enhancement report.
type VideoReport struct {
	InputPath       string
	OutputPath      string
	Metrics         video.Metrics
	Plan            video.Plan
	FramesProcessed int
	FramesSkipped   int
	ProcessTime     time.Duration
}

// WriteVideoReport creates a plain-text enhancement report at path.
// Mirrors the audio report layout: source details, analysis with
// interpretations, then the plan with per-parameter rationale.
func WriteVideoReport(path string, r VideoReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	writeReportHeader(f, "video", r.InputPath, r.OutputPath, r.ProcessTime)

	writeSection(f, "Source")
	fmt.Fprintf(f, "Resolution:   %dx%d\n", r.Metrics.Width, r.Metrics.Height)
	fmt.Fprintf(f, "Frame rate:   %.3g fps\n", r.Metrics.FrameRate)
	fmt.Fprintf(f, "Length:       %s\n", formatDuration(r.Metrics.Duration))
	fmt.Fprintf(f, "Sampled:      %d frames for analysis\n", r.Metrics.SampledFrames)
	fmt.Fprintln(f, "")

	writeVideoAnalysis(f, r.Metrics)
	writeVideoPlanApplied(f, r.Metrics, r.Plan)

	writeSection(f, "Processing")
	fmt.Fprintf(f, "Frames enhanced: %d\n", r.FramesProcessed)
	if r.FramesSkipped > 0 {
		fmt.Fprintf(f, "Frames skipped: %d (enhancement failed, passed through unenhanced)\n", r.FramesSkipped)
	}
	fmt.Fprintln(f, "")

	writeTips(f, GenerateVideoTips(r.Metrics))

	return nil
}

func writeVideoAnalysis(f *os.File, m video.Metrics) {
	writeSection(f, "Analysis")

	fm := m.Frame
	table := NewMetricTable()
	table.Headers = []string{"Median"}
	table.AddRow("Brightness", []string{formatMetric(fm.Brightness, 1)}, "", interpretBrightness(fm.Brightness))
	table.AddRow("Contrast", []string{formatMetric(fm.Contrast, 1)}, "", interpretContrast(fm.Contrast))
	table.AddRow("Sharpness", []string{formatMetric(fm.Sharpness, 1)}, "", interpretSharpness(fm.Sharpness))
	table.AddRow("Noise", []string{formatMetric(fm.Noise, 2)}, "", interpretVideoNoise(fm.Noise))
	fmt.Fprint(f, table.String())
	fmt.Fprintln(f, "")
}

func writeVideoPlanApplied(f *os.File, m video.Metrics, p video.Plan) {
	writeSection(f, "Enhancement Applied")

	if p.Denoise > 0 {
		fmt.Fprintf(f, "Denoise:        %.0f / 10\n", p.Denoise)
		fmt.Fprintf(f, "  Rationale: noise level %.2f (%s)\n", m.Frame.Noise, interpretVideoNoise(m.Frame.Noise))
	} else {
		fmt.Fprintln(f, "Denoise:        off")
	}

	if p.Sharpen > 0 {
		fmt.Fprintf(f, "Sharpen:        %.2f\n", p.Sharpen)
		fmt.Fprintf(f, "  Rationale: sharpness %.1f (%s)\n", m.Frame.Sharpness, interpretSharpness(m.Frame.Sharpness))
	} else {
		fmt.Fprintln(f, "Sharpen:        off")
	}

	if p.BrightnessDelta != 0 {
		fmt.Fprintf(f, "Brightness:     %s\n", formatMetricSigned(p.BrightnessDelta, 0))
		fmt.Fprintf(f, "  Rationale: mean luma %.1f (%s)\n", m.Frame.Brightness, interpretBrightness(m.Frame.Brightness))
	}
	if p.ContrastFactor != 1.0 {
		fmt.Fprintf(f, "Contrast:       x%.2f\n", p.ContrastFactor)
		fmt.Fprintf(f, "  Rationale: luma spread %.1f (%s)\n", m.Frame.Contrast, interpretContrast(m.Frame.Contrast))
	}
	if p.SaturationFactor != 1.0 {
		fmt.Fprintf(f, "Saturation:     x%.2f\n", p.SaturationFactor)
	}

	if p.Resizes(m.Width, m.Height) {
		fmt.Fprintf(f, "Resize:         %dx%d -> %dx%d\n", m.Width, m.Height, p.TargetWidth, p.TargetHeight)
	}
	fmt.Fprintln(f, "")
}

// writeTips appends capture advice derived from the analysis, if any fired.
func writeTips(f *os.File, tips []CaptureTip) {
	if len(tips) == 0 {
		return
	}
	writeSection(f, "Capture Tips")
	for _, tip := range tips {
		fmt.Fprintf(f, "- %s\n", wrapText(tip.Message, 76, "  "))
	}
	fmt.Fprintln(f, "")
}
