package enhance

import (
	"github.com/clearwave/clearwave/internal/audio"
	"github.com/clearwave/clearwave/internal/video"
)

// EventKind discriminates progress events.
type EventKind int

const (
	// EventAssetStart fires when an asset begins Pass 1.
	EventAssetStart EventKind = iota

	// EventProgress fires periodically during both passes.
	EventProgress

	// EventAnalyzed fires once Pass 1 metrics and the plan are known.
	EventAnalyzed

	// EventAssetDone fires when an asset finishes, successfully or not.
	EventAssetDone

	// EventBatchDone fires after the last asset of a batch.
	EventBatchDone
)

// Event is one element of the progress stream. Consumers receive a
// snapshot; none of the pointed-to values are mutated afterwards.
type Event struct {
	Kind       EventKind
	AssetIndex int
	Path       string
	OutputPath string

	// Pass 1 = analyzing, 2 = processing
	Pass     int
	PassName string
	Fraction float64 // 0.0 to 1.0 within the current pass

	AudioMetrics *audio.Metrics
	AudioPlan    *audio.Plan
	VideoMetrics *video.Metrics
	VideoPlan    *video.Plan

	Result *Result
	Err    error
}

// EventFunc receives progress events. A nil EventFunc is valid and
// silently drops everything.
type EventFunc func(Event)

func (f EventFunc) emit(ev Event) {
	if f != nil {
		f(ev)
	}
}

// Result summarises a finished asset.
type Result struct {
	Path       string
	OutputPath string

	AudioMetrics *audio.Metrics
	AudioPlan    *audio.Plan
	OutputRMSDB  float64

	VideoMetrics    *video.Metrics
	VideoPlan       *video.Plan
	FramesProcessed int
	FramesSkipped   int

	Err error
}
