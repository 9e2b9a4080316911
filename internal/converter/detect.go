package converter

import (
	"path/filepath"
	"strings"

	"github.com/nconklindev/sweeper/internal/types"
)

// DetectFormat maps a file name to its container format by extension alone.
func DetectFormat(filename string) (types.Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".csv":
		return types.FormatCSV, nil
	case ".xlsx":
		return types.FormatExcel, nil
	default:
		return 0, &UnsupportedFormatError{Ext: ext}
	}
}

func SupportedFormats() []types.Format {
	return []types.Format{types.FormatCSV, types.FormatExcel}
}

// SupportedExtensions lists the extensions DetectFormat accepts.
func SupportedExtensions() []string {
	formats := SupportedFormats()
	exts := make([]string, len(formats))
	for i, f := range formats {
		exts[i] = f.Ext()
	}
	return exts
}
