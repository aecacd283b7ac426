// Package enhance orchestrates the two-pass enhancement of audio and
// video assets: analyze, plan, process, write. It owns the error
// taxonomy, the batch runner and the progress event stream.
package enhance

import "fmt"

// InputError indicates the input asset could not be read or is invalid
// before any analysis happened.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// InsufficientDataError indicates the asset is readable but too short
// or too sparse to analyse meaningfully.
type InsufficientDataError struct {
	Path string
	Err  error
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data in %s: %v", e.Path, e.Err)
}

func (e *InsufficientDataError) Unwrap() error { return e.Err }

// AnalysisError indicates Pass 1 failed on a readable asset.
type AnalysisError struct {
	Path string
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysing %s: %v", e.Path, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// ProcessingError indicates Pass 2 failed after a successful analysis.
type ProcessingError struct {
	Path string
	Err  error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("processing %s: %v", e.Path, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// OutputError indicates the processed result could not be written.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error { return e.Err }
