package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/clearwave/clearwave/internal/enhance"
)

// renderProcessingView renders the main processing view
func renderProcessingView(m Model) string {
	var b strings.Builder

	// Header
	b.WriteString(renderHeader(m))
	b.WriteString("\n\n")

	// Asset queue
	b.WriteString(renderAssetQueue(m))
	b.WriteString("\n\n")

	// Overall progress
	b.WriteString(renderOverallProgress(m))

	return b.String()
}

// renderHeader renders the application header
func renderHeader(m Model) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#0087AF")).
		Render("Clearwave 🌊 - Adaptive Media Enhancement")

	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Italic(true).
		Render(fmt.Sprintf("Enhancing %d file(s)", m.TotalAssets))

	return title + "\n" + subtitle
}

// renderAssetQueue renders the list of assets with their status
func renderAssetQueue(m Model) string {
	var b strings.Builder

	for i := range m.Assets {
		b.WriteString(renderAssetEntry(m.Assets[i]))
		b.WriteString("\n")
	}

	return b.String()
}

// renderAssetEntry renders a single asset entry in the queue
func renderAssetEntry(a AssetProgress) string {
	fileName := filepath.Base(a.InputPath)

	switch a.Status {
	case StatusComplete:
		// ✓ completed asset with summary
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
		return fmt.Sprintf(" %s %s → %s\n   %s",
			icon, fileName, filepath.Base(a.OutputPath), completionLine(a))

	case StatusAnalyzing, StatusProcessing:
		// ⚙ active asset with detailed progress
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500")).Render("⚙")
		return fmt.Sprintf(" %s %s\n%s", icon, fileName, renderAssetDetails(a))

	case StatusError:
		// ✗ failed asset
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
		return fmt.Sprintf(" %s %s\n   Error: %v", icon, fileName, a.Error)

	default:
		// ○ queued asset
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render("○")
		return fmt.Sprintf(" %s %s\n   Queued...", icon, fileName)
	}
}

// renderAssetDetails renders detailed progress for an active asset
func renderAssetDetails(a AssetProgress) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#0087AF")).
		Padding(0, 1).
		Width(60)

	var content strings.Builder

	// Pass indicator
	passName := a.PassName
	if passName == "" {
		if a.CurrentPass == 2 {
			passName = "Processing"
		} else {
			passName = "Analyzing"
		}
	}
	pass := a.CurrentPass
	if pass == 0 {
		pass = 1
	}
	content.WriteString(fmt.Sprintf("Pass %d/2: %s\n", pass, passName))

	// Progress bar
	content.WriteString(renderProgressBar(a.Progress, 40))
	content.WriteString("\n\n")

	// Time estimates
	elapsed := a.ElapsedTime.Seconds()
	var remaining float64
	if a.Progress > 0 {
		remaining = (elapsed / a.Progress) - elapsed
	}
	content.WriteString(fmt.Sprintf("⏱  Elapsed: %.1fs | Remaining: ~%.1fs", elapsed, remaining))

	// Analysis summary once Pass 1 is done
	if line := analysisLine(a); line != "" {
		content.WriteString("\n")
		content.WriteString(line)
	}

	return box.Render(content.String())
}

// analysisLine summarises the Pass 1 measurements for the active asset
func analysisLine(a AssetProgress) string {
	if a.AudioMetrics != nil {
		plan := ""
		if a.AudioPlan != nil {
			plan = fmt.Sprintf(" | NR %.0f/70", a.AudioPlan.NoiseReduction)
		}
		return fmt.Sprintf("📊 SNR: %.1f dB | Floor: %.1f dBFS%s",
			a.AudioMetrics.SNR, a.AudioMetrics.NoiseFloorDB, plan)
	}
	if a.VideoMetrics != nil {
		plan := ""
		if a.VideoPlan != nil && a.VideoPlan.Resizes(a.VideoMetrics.Width, a.VideoMetrics.Height) {
			plan = fmt.Sprintf(" → %dx%d", a.VideoPlan.TargetWidth, a.VideoPlan.TargetHeight)
		}
		return fmt.Sprintf("📊 %dx%d @ %.3g fps%s",
			a.VideoMetrics.Width, a.VideoMetrics.Height, a.VideoMetrics.FrameRate, plan)
	}
	return ""
}

// renderProgressBar renders a progress bar
func renderProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)
	percentage := int(progress * 100)

	return fmt.Sprintf("%s %d%%", bar, percentage)
}

// renderOverallProgress renders the overall progress footer
func renderOverallProgress(m Model) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#888888")).
		Padding(0, 1).
		Width(60)

	active := 0
	for i := range m.Assets {
		if m.Assets[i].Status == StatusAnalyzing || m.Assets[i].Status == StatusProcessing {
			active++
		}
	}

	done := m.CompletedAssets + m.FailedAssets
	content := fmt.Sprintf("Overall: %d/%d complete, %d active", done, m.TotalAssets, active)
	if m.FailedAssets > 0 {
		content += fmt.Sprintf(", %d failed", m.FailedAssets)
	}

	return box.Render(content)
}

// renderCompletionSummary renders the final completion summary
func renderCompletionSummary(m Model) string {
	var b strings.Builder

	// Completion header
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00AA00")).
		Render("✨ Enhancement Complete!")
	b.WriteString(header)
	b.WriteString("\n\n")

	// Summary for each asset
	for i := range m.Assets {
		a := m.Assets[i]
		switch a.Status {
		case StatusComplete:
			icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00")).Render("✓")
			b.WriteString(fmt.Sprintf(" %s %s → %s\n   %s\n",
				icon, filepath.Base(a.InputPath), filepath.Base(a.OutputPath), completionLine(a)))
		case StatusError:
			icon := lipgloss.NewStyle().Foreground(lipgloss.Color("#A40000")).Render("✗")
			b.WriteString(fmt.Sprintf(" %s %s\n   Error: %v\n", icon, filepath.Base(a.InputPath), a.Error))
		}
	}

	// Overall summary
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", 60))
	b.WriteString("\n")
	if m.FailedAssets == 0 {
		b.WriteString(fmt.Sprintf("All %d file(s) enhanced ✓\n", m.CompletedAssets))
	} else {
		b.WriteString(fmt.Sprintf("%d enhanced, %d failed\n", m.CompletedAssets, m.FailedAssets))
	}

	return b.String()
}

// completionLine summarises the result of a finished asset
func completionLine(a AssetProgress) string {
	r := a.Result
	if r == nil {
		return "done"
	}
	if r.AudioMetrics != nil {
		return fmt.Sprintf("RMS: %.1f → %.1f dBFS | SNR: %.1f dB | NR %.0f/70",
			r.AudioMetrics.RMSDB, r.OutputRMSDB, r.AudioMetrics.SNR, planNoiseReduction(r))
	}
	if r.VideoMetrics != nil {
		out := fmt.Sprintf("%dx%d", r.VideoMetrics.Width, r.VideoMetrics.Height)
		if r.VideoPlan != nil && r.VideoPlan.Resizes(r.VideoMetrics.Width, r.VideoMetrics.Height) {
			out = fmt.Sprintf("%dx%d → %dx%d", r.VideoMetrics.Width, r.VideoMetrics.Height,
				r.VideoPlan.TargetWidth, r.VideoPlan.TargetHeight)
		}
		return fmt.Sprintf("%s | %d frames", out, r.FramesProcessed)
	}
	return "done"
}

func planNoiseReduction(r *enhance.Result) float64 {
	if r.AudioPlan == nil {
		return 0
	}
	return r.AudioPlan.NoiseReduction
}
