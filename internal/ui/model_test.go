package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/clearwave/clearwave/internal/enhance"
)

func TestModelInitSchedulesNothing(t *testing.T) {
	// Progress arrives via Program.Send; the model must not park
	// listener goroutines of its own
	m := NewModel([]string{"a.wav", "b.mp4"})
	if cmd := m.Init(); cmd != nil {
		t.Errorf("Init returned a command, want nil")
	}
}

func TestModelUpdateProgressFlow(t *testing.T) {
	m := NewModel([]string{"a.wav"})

	next, cmd := m.Update(AssetStartMsg{Index: 0, Path: "a.wav", OutputPath: "a-enhanced.wav"})
	if cmd != nil {
		t.Error("AssetStartMsg returned a command, want nil")
	}
	model := next.(Model)
	if model.Assets[0].Status != StatusAnalyzing {
		t.Errorf("status = %v, want StatusAnalyzing", model.Assets[0].Status)
	}

	next, cmd = model.Update(ProgressMsg{Index: 0, Pass: 2, PassName: "Processing", Progress: 0.5})
	if cmd != nil {
		t.Error("ProgressMsg returned a command, want nil")
	}
	model = next.(Model)
	if model.Assets[0].Status != StatusProcessing || model.Assets[0].Progress != 0.5 {
		t.Errorf("asset = %+v, want processing at 0.5", model.Assets[0])
	}

	next, cmd = model.Update(AssetDoneMsg{Index: 0, Result: &enhance.Result{Path: "a.wav", OutputPath: "a-enhanced.wav"}})
	if cmd != nil {
		t.Error("AssetDoneMsg returned a command, want nil")
	}
	model = next.(Model)
	if model.Assets[0].Status != StatusComplete || model.CompletedAssets != 1 {
		t.Errorf("asset = %+v, want completed", model.Assets[0])
	}

	next, cmd = model.Update(BatchDoneMsg{})
	model = next.(Model)
	if !model.Done {
		t.Error("Done = false after BatchDoneMsg")
	}
	if cmd == nil {
		t.Fatal("BatchDoneMsg returned no command, want tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("BatchDoneMsg command is not tea.Quit")
	}
}
