// Package ui provides the Bubbletea terminal user interface for clearwave
package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/clearwave/clearwave/internal/audio"
	"github.com/clearwave/clearwave/internal/enhance"
	"github.com/clearwave/clearwave/internal/video"
)

// AssetStatus represents the processing state of a single asset
type AssetStatus int

const (
	StatusQueued AssetStatus = iota
	StatusAnalyzing
	StatusProcessing
	StatusComplete
	StatusError
)

// AssetProgress tracks progress for a single asset.
// Assets process concurrently, so several entries can be active at once.
type AssetProgress struct {
	InputPath  string
	OutputPath string
	Kind       enhance.AssetKind
	Status     AssetStatus

	// Phase tracking
	CurrentPass int // 1 = analysis, 2 = processing
	PassName    string

	// Progress tracking (fraction of the current pass)
	Progress    float64 // 0.0 to 1.0
	StartTime   time.Time
	ElapsedTime time.Duration

	// Analysis results (from Pass 1)
	AudioMetrics *audio.Metrics
	AudioPlan    *audio.Plan
	VideoMetrics *video.Metrics
	VideoPlan    *video.Plan

	// Completion results
	Result *enhance.Result
	Error  error
}

// Model is the Bubbletea model for the enhancement UI
type Model struct {
	// Asset queue
	Assets          []AssetProgress
	TotalAssets     int
	CompletedAssets int
	FailedAssets    int

	// Global state
	StartTime time.Time
	Done      bool

	// Terminal dimensions
	Width  int
	Height int
}

// NewModel creates a new UI model with the given input paths
func NewModel(inputPaths []string) Model {
	assets := make([]AssetProgress, len(inputPaths))
	for i, path := range inputPaths {
		assets[i] = AssetProgress{
			InputPath: path,
			Kind:      enhance.DetectKind(path),
			Status:    StatusQueued,
		}
	}

	return Model{
		Assets:      assets,
		TotalAssets: len(inputPaths),
		StartTime:   time.Now(),
	}
}

// Init initializes the model. Progress arrives through Program.Send
// from the batch runner, so there is nothing to start here.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case AssetStartMsg:
		if m.valid(msg.Index) {
			a := &m.Assets[msg.Index]
			a.Status = StatusAnalyzing
			a.OutputPath = msg.OutputPath
			a.StartTime = time.Now()
		}
		return m, nil

	case ProgressMsg:
		if m.valid(msg.Index) {
			m.Assets[msg.Index] = updateAssetProgress(m.Assets[msg.Index], msg)
		}
		return m, nil

	case AssetAnalyzedMsg:
		if m.valid(msg.Index) {
			a := &m.Assets[msg.Index]
			a.AudioMetrics = msg.Audio
			a.AudioPlan = msg.AudioPlan
			a.VideoMetrics = msg.Video
			a.VideoPlan = msg.VideoPlan
		}
		return m, nil

	case AssetDoneMsg:
		if m.valid(msg.Index) {
			a := &m.Assets[msg.Index]
			a.Result = msg.Result
			if msg.Result != nil {
				a.Error = msg.Result.Err
				if a.OutputPath == "" {
					a.OutputPath = msg.Result.OutputPath
				}
			}
			if a.Error != nil {
				a.Status = StatusError
				m.FailedAssets++
			} else {
				a.Status = StatusComplete
				m.CompletedAssets++
			}
		}
		return m, nil

	case BatchDoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	if m.Width == 0 {
		return fmt.Sprintf("Initializing...\nAssets: %d\n", len(m.Assets))
	}

	if m.Done {
		return renderCompletionSummary(m)
	}

	return renderProcessingView(m)
}

func (m Model) valid(index int) bool {
	return index >= 0 && index < len(m.Assets)
}

// updateAssetProgress updates an AssetProgress based on a ProgressMsg
func updateAssetProgress(a AssetProgress, msg ProgressMsg) AssetProgress {
	// Reset the clock when transitioning to a new pass
	if msg.Pass != a.CurrentPass {
		a.StartTime = time.Now()
	}

	a.Progress = msg.Progress
	a.CurrentPass = msg.Pass
	a.PassName = msg.PassName
	a.ElapsedTime = time.Since(a.StartTime)

	if msg.Pass == 1 {
		a.Status = StatusAnalyzing
	} else if msg.Pass == 2 {
		a.Status = StatusProcessing
	}

	return a
}
