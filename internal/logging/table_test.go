package logging

import (
	"math"
	"strings"
	"testing"
)

func TestFormatMetric(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"zero", 0.0, 2, "0.00"},
		{"positive", 3.14159, 2, "3.14"},
		{"negative", -16.5, 1, "-16.5"},
		{"large", 12345.6789, 2, "12345.68"},
		{"small_normal", 0.001, 3, "0.001"},
		{"very_small_scientific", 0.00001, 2, "1.00e-05"},
		{"very_small_negative", -0.00001, 2, "-1.00e-05"},
		{"nan", math.NaN(), 2, MissingValue},
		{"positive_inf", math.Inf(1), 2, MissingValue},
		{"negative_inf", math.Inf(-1), 2, MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMetric(tt.value, tt.decimals)
			if got != tt.want {
				t.Errorf("formatMetric(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFormatMetricSigned(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"positive", 2.5, 1, "+2.5"},
		{"negative", -1.2, 1, "-1.2"},
		{"zero", 0.0, 1, "+0.0"},
		{"nan", math.NaN(), 1, MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMetricSigned(tt.value, tt.decimals)
			if got != tt.want {
				t.Errorf("formatMetricSigned(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}

func TestFormatMetricWithUnit(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		unit     string
		want     string
	}{
		{"with_unit", -16.0, 1, "dBFS", "-16.0 dBFS"},
		{"no_unit", 1234.5, 1, "", "1234.5"},
		{"nan_with_unit", math.NaN(), 1, "Hz", MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMetricWithUnit(tt.value, tt.decimals, tt.unit)
			if got != tt.want {
				t.Errorf("formatMetricWithUnit(%v, %d, %q) = %q, want %q", tt.value, tt.decimals, tt.unit, got, tt.want)
			}
		})
	}
}

func TestMetricTableString(t *testing.T) {
	t.Run("basic_two_column", func(t *testing.T) {
		table := NewMetricTable()
		table.AddRow("RMS Level", []string{"-28.0", "-18.0"}, "dBFS", "")
		table.AddRow("Noise Floor", []string{"-52.3", "-64.8"}, "dBFS", "")

		output := table.String()

		if !strings.Contains(output, "Input") {
			t.Error("Output should contain 'Input' header")
		}
		if !strings.Contains(output, "Output") {
			t.Error("Output should contain 'Output' header")
		}
		if !strings.Contains(output, "RMS Level") {
			t.Error("Output should contain row label")
		}
		if !strings.Contains(output, "-18.0") {
			t.Error("Output should contain value")
		}
		if !strings.Contains(output, "dBFS") {
			t.Error("Output should contain unit")
		}
	})

	t.Run("with_interpretation", func(t *testing.T) {
		table := NewMetricTable()
		table.AddRow("SNR", []string{"32.0", "45.0"}, "dB", "clean, noise inaudible")

		output := table.String()

		if !strings.Contains(output, "Interpretation") {
			t.Error("Output should contain 'Interpretation' header when rows have interpretations")
		}
		if !strings.Contains(output, "clean, noise inaudible") {
			t.Error("Output should contain interpretation text")
		}
	})

	t.Run("missing_values", func(t *testing.T) {
		table := NewMetricTable()
		table.AddRow("Test Metric", []string{"-10.0"}, "dB", "") // Only 1 value for 2 columns

		output := table.String()

		if !strings.Contains(output, " -  ") {
			t.Error("Missing values should display as dash")
		}
	})

	t.Run("empty_table", func(t *testing.T) {
		table := NewMetricTable()
		output := table.String()

		if output != "" {
			t.Errorf("Empty table should return empty string, got %q", output)
		}
	})

	t.Run("add_metric_row", func(t *testing.T) {
		table := NewMetricTable()
		table.AddMetricRow("Test", -23.5, -16.0, 1, "dBFS", "")

		output := table.String()

		if !strings.Contains(output, "-23.5") {
			t.Error("AddMetricRow should format input value")
		}
		if !strings.Contains(output, "-16.0") {
			t.Error("AddMetricRow should format output value")
		}
	})

	t.Run("add_metric_row_with_nan", func(t *testing.T) {
		table := NewMetricTable()
		table.AddMetricRow("Test", math.NaN(), -16.0, 1, "dBFS", "")

		output := table.String()

		lines := strings.Split(output, "\n")
		if len(lines) < 2 {
			t.Fatal("Expected at least 2 lines (header + data)")
		}
		dataLine := lines[1]
		if !strings.Contains(dataLine, " -  ") && !strings.Contains(dataLine, " - ") {
			t.Errorf("NaN value should display as dash in: %q", dataLine)
		}
	})
}

func TestMetricTableAlignment(t *testing.T) {
	table := NewMetricTable()
	table.AddRow("Short", []string{"1", "2"}, "", "")
	table.AddRow("Much Longer Label", []string{"100", "200"}, "", "")

	output := table.String()
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	if len(lines) < 3 {
		t.Fatalf("Expected 3 lines (header + 2 data), got %d", len(lines))
	}

	// Value columns are right-aligned, so every data line must be at
	// least as wide as the longest label plus both value columns
	for i := 1; i < len(lines); i++ {
		if len(lines[i]) < 20 {
			t.Errorf("Line %d seems too short: %q", i, lines[i])
		}
	}
}

func TestIsDigitalSilence(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  bool
	}{
		{"negative_infinity", math.Inf(-1), true},
		{"below_threshold", -150.0, true},
		{"at_threshold", -120.0, true},
		{"just_above_threshold", -119.9, false},
		{"normal_value", -60.0, false},
		{"positive_infinity", math.Inf(1), false}, // +Inf is not digital silence
		{"nan", math.NaN(), false},                // NaN is handled separately
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isDigitalSilence(tt.value)
			if got != tt.want {
				t.Errorf("isDigitalSilence(%v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatMetricDB(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		decimals int
		want     string
	}{
		{"normal_value", -50.0, 1, "-50.0"},
		{"digital_silence_inf", math.Inf(-1), 1, "< -120"},
		{"digital_silence_threshold", -120.0, 1, "< -120"},
		{"digital_silence_below", -150.0, 1, "< -120"},
		{"just_above_threshold", -119.9, 1, "-119.9"},
		{"nan", math.NaN(), 1, MissingValue},
		{"positive_inf", math.Inf(1), 1, MissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMetricDB(tt.value, tt.decimals)
			if got != tt.want {
				t.Errorf("formatMetricDB(%v, %d) = %q, want %q", tt.value, tt.decimals, got, tt.want)
			}
		})
	}
}
