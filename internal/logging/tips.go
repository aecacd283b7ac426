package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clearwave/clearwave/internal/audio"
	"github.com/clearwave/clearwave/internal/video"
)

// CaptureTip represents a single piece of actionable capture advice
// derived from the analysis measurements.
type CaptureTip struct {
	Priority int    // Higher = more important (1-10)
	Message  string // Human-readable advice (1-2 sentences)
	RuleID   string // Identifier for testing/logging (e.g., "level_too_quiet")
}

// MaxCaptureTips is the maximum number of tips to return.
const MaxCaptureTips = 5

// GenerateAudioTips analyses audio measurements and returns prioritised
// recording improvement suggestions.
func GenerateAudioTips(m audio.Metrics) []CaptureTip {
	var tips []CaptureTip
	firedRules := make(map[string]bool)

	rules := []func(audio.Metrics) *CaptureTip{
		tipLevelClipping,
		tipLevelTooQuiet,
		tipBackgroundNoise,
		tipMainsHum,
		tipHiss,
		tipPoorSNR,
	}

	for _, rule := range rules {
		if tip := rule(m); tip != nil {
			tips = append(tips, *tip)
			firedRules[tip.RuleID] = true
		}
	}

	return finishTips(tips, firedRules)
}

// GenerateVideoTips analyses video measurements and returns prioritised
// capture improvement suggestions.
func GenerateVideoTips(m video.Metrics) []CaptureTip {
	var tips []CaptureTip
	firedRules := make(map[string]bool)

	rules := []func(video.Metrics) *CaptureTip{
		tipExposure,
		tipSoftFocus,
		tipVideoNoise,
		tipLowContrast,
		tipLowResolution,
	}

	for _, rule := range rules {
		if tip := rule(m); tip != nil {
			tips = append(tips, *tip)
			firedRules[tip.RuleID] = true
		}
	}

	return finishTips(tips, firedRules)
}

// finishTips applies mutual exclusions, sorts by priority and caps the count.
func finishTips(tips []CaptureTip, fired map[string]bool) []CaptureTip {
	tips = applyExclusions(tips, fired)

	sort.SliceStable(tips, func(i, j int) bool {
		return tips[i].Priority > tips[j].Priority
	})

	if len(tips) > MaxCaptureTips {
		tips = tips[:MaxCaptureTips]
	}

	return tips
}

// applyExclusions removes tips that are redundant when a more specific tip
// has already fired. For example, "poor_snr" is suppressed when
// "background_noise_high" fires because the latter already names the fix.
func applyExclusions(tips []CaptureTip, fired map[string]bool) []CaptureTip {
	var result []CaptureTip
	for _, tip := range tips {
		switch tip.RuleID {
		case "level_too_quiet", "level_quiet":
			if fired["level_clipping"] || fired["level_near_clipping"] {
				continue
			}
		case "poor_snr":
			if fired["background_noise_high"] {
				continue
			}
		case "low_contrast":
			if fired["underexposed"] || fired["overexposed"] {
				continue
			}
		}
		result = append(result, tip)
	}
	return result
}

// wrapText wraps text at word boundaries to fit within maxWidth columns.
// Continuation lines are prefixed with indent.
func wrapText(text string, maxWidth int, indent string) string {
	words := strings.Fields(text)
	var lines []string
	currentLine := ""

	for _, word := range words {
		if currentLine == "" {
			currentLine = word
		} else if len(currentLine)+1+len(word) <= maxWidth {
			currentLine += " " + word
		} else {
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+indent)
}

// =============================================================================
// Audio Rules
// =============================================================================

// tipLevelClipping fires when the input clips or sits within 1dB of full scale.
func tipLevelClipping(m audio.Metrics) *CaptureTip {
	if m.Clipping {
		return &CaptureTip{
			Priority: 10,
			RuleID:   "level_clipping",
			Message:  "Your recording is clipping - turn your input gain down by 6-10 dB to prevent distortion.",
		}
	}
	if m.PeakDB > -1.0 {
		return &CaptureTip{
			Priority: 9,
			RuleID:   "level_near_clipping",
			Message:  "Your recording is very close to clipping - turn your input gain down by 3-6 dB to give yourself some headroom.",
		}
	}
	return nil
}

// tipLevelTooQuiet fires when the recording level is low.
// Very quiet below -30 dBFS RMS; moderately quiet between -30 and -24.
// Gain target matches the default normalisation target of -18 dBFS.
func tipLevelTooQuiet(m audio.Metrics) *CaptureTip {
	if m.RMSDB < -30.0 {
		gainNeeded := -18.0 - m.RMSDB
		return &CaptureTip{
			Priority: 10,
			RuleID:   "level_too_quiet",
			Message:  fmt.Sprintf("Your input gain is too low - try increasing it by about %.0f dB.", gainNeeded),
		}
	}
	if m.RMSDB < -24.0 {
		gainNeeded := -18.0 - m.RMSDB
		return &CaptureTip{
			Priority: 8,
			RuleID:   "level_quiet",
			Message:  fmt.Sprintf("Your recording is a bit quiet - increasing your input gain by about %.0f dB would improve quality.", gainNeeded),
		}
	}
	return nil
}

// tipBackgroundNoise fires when the noise floor is elevated.
// Thresholds align with the highpass tiers: -45 dBFS is clearly
// audible, -55 dBFS is noticeable in quiet passages.
func tipBackgroundNoise(m audio.Metrics) *CaptureTip {
	if m.NoiseFloorDB > -45.0 {
		return &CaptureTip{
			Priority: 9,
			RuleID:   "background_noise_high",
			Message:  fmt.Sprintf("Background noise is high (%.0f dBFS) - try turning off fans, air conditioning, or other appliances before recording.", m.NoiseFloorDB),
		}
	}
	if m.NoiseFloorDB > -55.0 {
		return &CaptureTip{
			Priority: 6,
			RuleID:   "background_noise_moderate",
			Message:  fmt.Sprintf("Background noise is slightly elevated (%.0f dBFS) - if possible, turn off any fans or appliances nearby.", m.NoiseFloorDB),
		}
	}
	return nil
}

// tipMainsHum fires when low-frequency energy dominates the spectrum,
// the signature of mains hum or desk rumble.
func tipMainsHum(m audio.Metrics) *CaptureTip {
	if m.RumbleRatio < 0.3 {
		return nil
	}
	return &CaptureTip{
		Priority: 7,
		RuleID:   "mains_hum",
		Message:  "There's a constant low-frequency hum in your recording - check for nearby power supplies, monitors, or chargers and move them further from your microphone.",
	}
}

// tipHiss fires when high-frequency energy is far above what speech produces.
func tipHiss(m audio.Metrics) *CaptureTip {
	if m.HighFreqRatio < 0.6 {
		return nil
	}
	return &CaptureTip{
		Priority: 6,
		RuleID:   "hiss",
		Message:  "Your recording has strong high-frequency hiss - check for preamp gain set too high, or a noisy USB interface.",
	}
}

// tipPoorSNR fires when the gap between speech and noise is critically small.
func tipPoorSNR(m audio.Metrics) *CaptureTip {
	if m.SNR >= 10.0 {
		return nil
	}
	return &CaptureTip{
		Priority: 7,
		RuleID:   "poor_snr",
		Message:  "The gap between your voice and the background noise is very small. Move closer to your microphone and reduce background noise if possible.",
	}
}

// =============================================================================
// Video Rules
// =============================================================================

// tipExposure fires when the median frame is clearly under- or overexposed.
func tipExposure(m video.Metrics) *CaptureTip {
	if m.Frame.Brightness < 80 {
		return &CaptureTip{
			Priority: 9,
			RuleID:   "underexposed",
			Message:  "Your video is underexposed - add more light to the scene or open up the camera's exposure before recording.",
		}
	}
	if m.Frame.Brightness > 180 {
		return &CaptureTip{
			Priority: 9,
			RuleID:   "overexposed",
			Message:  "Your video is overexposed - reduce the exposure or move lights further from the subject to recover highlight detail.",
		}
	}
	return nil
}

// tipSoftFocus fires when the sharpness measure indicates missed focus.
func tipSoftFocus(m video.Metrics) *CaptureTip {
	if m.Frame.Sharpness >= 100 {
		return nil
	}
	return &CaptureTip{
		Priority: 8,
		RuleID:   "soft_focus",
		Message:  "Your video looks out of focus. Check the camera's focus on the subject before recording - sharpening in post cannot recover lost detail.",
	}
}

// tipVideoNoise fires when the noise estimate indicates sensor noise,
// typically from low light forcing high ISO.
func tipVideoNoise(m video.Metrics) *CaptureTip {
	if m.Frame.Noise > 15 {
		return &CaptureTip{
			Priority: 7,
			RuleID:   "video_noise_high",
			Message:  "Your video is very noisy, usually a sign of low light. Add more light to the scene so the camera can use a lower ISO.",
		}
	}
	if m.Frame.Noise > 8 {
		return &CaptureTip{
			Priority: 5,
			RuleID:   "video_noise_moderate",
			Message:  "Your video shows visible grain - a little more light on the subject would let the camera use a cleaner ISO setting.",
		}
	}
	return nil
}

// tipLowContrast fires when the image is flat.
func tipLowContrast(m video.Metrics) *CaptureTip {
	if m.Frame.Contrast >= 30 {
		return nil
	}
	return &CaptureTip{
		Priority: 5,
		RuleID:   "low_contrast",
		Message:  "Your video looks flat - if your camera records a log or 'flat' profile, switch to a standard profile, or add some directional light for depth.",
	}
}

// tipLowResolution fires for sub-HD source material.
func tipLowResolution(m video.Metrics) *CaptureTip {
	if m.Width >= 1280 {
		return nil
	}
	return &CaptureTip{
		Priority: 4,
		RuleID:   "low_resolution",
		Message:  fmt.Sprintf("Your source is %dx%d - recording at 720p or higher would avoid the quality loss of upscaling.", m.Width, m.Height),
	}
}
