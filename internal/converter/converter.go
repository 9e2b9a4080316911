package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sweeper/internal/types"
)

// ReadFile loads a CSV or XLSX file from disk.
func ReadFile(filePath string) (*types.FileInfo, error) {
	if _, err := DetectFormat(filePath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	info, err := ProcessFile(filepath.Base(filePath), data)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// OutputPath places the converted file in outputDir, or next to the input
// when outputDir is empty. A name that would overwrite the input gets a
// "_converted" suffix.
func OutputPath(inputFile, outputDir string, target types.Format) string {
	if outputDir == "" {
		outputDir = filepath.Dir(inputFile)
	}

	name := SuggestedFileName(inputFile, target)
	outputFile := filepath.Join(outputDir, name)

	if samePath(outputFile, inputFile) {
		base := strings.TrimSuffix(name, target.Ext())
		outputFile = filepath.Join(outputDir, base+"_converted"+target.Ext())
	}
	return outputFile
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// WriteOutput saves a conversion result to disk and records where it went.
func WriteOutput(result *types.ConversionResult, inputFile, outputDir string) error {
	outputFile := OutputPath(inputFile, outputDir, result.Format)

	if dir := filepath.Dir(outputFile); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(outputFile, result.Data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", outputFile, err)
	}

	result.InputFile = inputFile
	result.OutputFile = outputFile
	return nil
}

// SaveTable converts t and writes it beside inputFile (or into outputDir),
// reporting progress on progressChan when it is not nil.
func SaveTable(t *types.Table, inputFile, outputDir string, target types.Format, progressChan chan<- float64) (*types.ConversionResult, error) {
	report := func(p float64) {
		if progressChan != nil {
			select {
			case progressChan <- p:
			default:
			}
		}
	}

	result, err := Convert(t, target, inputFile)
	if err != nil {
		return nil, err
	}
	report(0.5)

	if err := WriteOutput(result, inputFile, outputDir); err != nil {
		return nil, err
	}
	report(1)

	return result, nil
}

// firstNonEmptyRow returns the index of the first row holding any
// non-blank cell, or -1.
func firstNonEmptyRow(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return i
			}
		}
	}
	return -1
}
