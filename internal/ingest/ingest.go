// Package ingest discovers label text dumps on disk, either by walking a
// directory once or by watching it for new files.
package ingest

import (
	"time"

	"github.com/joseph-ayodele/awb-extractor/internal/pipeline"
)

// File is the per-file load outcome.
type File struct {
	Path         string
	HashHex      string
	Size         int64
	ModTime      time.Time
	Text         string
	Deduplicated bool // same content as an earlier file in this load
	Err          string
}

// Document converts a loaded file into pipeline input.
func (f File) Document() pipeline.Document {
	return pipeline.Document{Source: f.Path, Text: f.Text}
}

// DirStats summarizes a directory load.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Loaded       uint32
	Deduplicated uint32
	Failed       uint32
}

type LoadOptions struct {
	// Exts overrides the allowed extensions (lowercase, without '.').
	Exts       map[string]struct{}
	SkipHidden bool
	// MaxBytes rejects larger files; zero means DefaultMaxBytes.
	MaxBytes int64
}

// DefaultMaxBytes bounds a single label dump.
const DefaultMaxBytes int64 = 1 << 20
