package enhance

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// outputSuffix is appended to input names when no explicit output path
// is given: voice.wav becomes voice-enhanced.wav.
const outputSuffix = "-enhanced"

// OutputPath derives the output path for an input. An explicit path
// wins; otherwise the suffixed name lands next to the input, or inside
// outputDir when one is set.
func OutputPath(inputPath, explicit, outputDir string) string {
	if explicit != "" {
		return explicit
	}
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)
	name := base + outputSuffix + ext
	if outputDir != "" {
		return filepath.Join(outputDir, name)
	}
	return filepath.Join(filepath.Dir(inputPath), name)
}

// validateOutput rejects outputs that would clobber the input.
func validateOutput(inputPath, outputPath string) error {
	in, err := filepath.Abs(inputPath)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(outputPath)
	if err != nil {
		return err
	}
	if in == out {
		return fmt.Errorf("output path equals input path: %s", outputPath)
	}
	return nil
}

// tempOutputPath places a work file next to the final output so the
// rename at the end stays on one filesystem. The real extension is kept
// so format detection still works.
func tempOutputPath(outputPath string) string {
	dir := filepath.Dir(outputPath)
	ext := filepath.Ext(outputPath)
	base := strings.TrimSuffix(filepath.Base(outputPath), ext)
	return filepath.Join(dir, fmt.Sprintf(".%s.%d.partial%s", base, os.Getpid(), ext))
}

// commitOutput fsyncs the finished work file and renames it into place.
// A failure leaves no partial output behind.
func commitOutput(tempPath, outputPath string) error {
	if err := syncFile(tempPath); err != nil {
		os.Remove(tempPath)
		return err
	}
	if err := os.Rename(tempPath, outputPath); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

func syncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
