package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/clearwave/clearwave/internal/audio"
	"github.com/clearwave/clearwave/internal/enhance"
	"github.com/clearwave/clearwave/internal/video"
)

// AssetStartMsg indicates an asset has started processing
type AssetStartMsg struct {
	Index      int
	Path       string
	OutputPath string
}

// ProgressMsg represents a progress update for one asset
type ProgressMsg struct {
	Index    int
	Pass     int // 1 = analysis, 2 = processing
	PassName string
	Progress float64 // 0.0 to 1.0
}

// AssetAnalyzedMsg carries the analysis results once Pass 1 finishes
type AssetAnalyzedMsg struct {
	Index     int
	Audio     *audio.Metrics
	AudioPlan *audio.Plan
	Video     *video.Metrics
	VideoPlan *video.Plan
}

// AssetDoneMsg indicates an asset has finished (successfully or not)
type AssetDoneMsg struct {
	Index  int
	Result *enhance.Result
}

// BatchDoneMsg indicates all assets have been processed
type BatchDoneMsg struct{}

// FromEvent translates an enhancement event into a Bubbletea message.
// Returns nil for events the UI does not render.
func FromEvent(ev enhance.Event) tea.Msg {
	switch ev.Kind {
	case enhance.EventAssetStart:
		return AssetStartMsg{Index: ev.AssetIndex, Path: ev.Path, OutputPath: ev.OutputPath}
	case enhance.EventProgress:
		return ProgressMsg{Index: ev.AssetIndex, Pass: ev.Pass, PassName: ev.PassName, Progress: ev.Fraction}
	case enhance.EventAnalyzed:
		return AssetAnalyzedMsg{
			Index:     ev.AssetIndex,
			Audio:     ev.AudioMetrics,
			AudioPlan: ev.AudioPlan,
			Video:     ev.VideoMetrics,
			VideoPlan: ev.VideoPlan,
		}
	case enhance.EventAssetDone:
		return AssetDoneMsg{Index: ev.AssetIndex, Result: ev.Result}
	case enhance.EventBatchDone:
		return BatchDoneMsg{}
	}
	return nil
}
