package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/awb-extractor/constants"
)

// AllowedExt checks ext against exts, or the default label extensions when exts is nil.
func AllowedExt(ext string, exts map[string]struct{}) bool {
	ext = constants.NormalizeExt(ext)
	if exts == nil {
		exts = constants.AllowedExtensions
	}
	_, ok := exts[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && strings.HasPrefix(base, ".")
}
