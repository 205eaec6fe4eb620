package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// LoadPath reads and hashes a single label file.
func LoadPath(path string, maxBytes int64) (File, error) {
	out := File{Path: path}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	f, err := os.Open(path)
	if err != nil {
		return out, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return out, err
	}
	if info.Size() > maxBytes {
		return out, fmt.Errorf("file is %d bytes, limit is %d", info.Size(), maxBytes)
	}

	b, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return out, err
	}
	if !utf8.Valid(b) {
		return out, errors.New("file is not valid UTF-8 text")
	}
	sum := sha256.Sum256(b)

	out.HashHex = hex.EncodeToString(sum[:])
	out.Size = int64(len(b))
	out.ModTime = info.ModTime()
	out.Text = string(b)
	return out, nil
}

// LoadDirectory walks root, skips hidden entries if requested, and loads every
// file with an allowed extension. Files whose content hash repeats are marked
// Deduplicated. A failing file is recorded and the walk continues.
func LoadDirectory(ctx context.Context, root string, opts LoadOptions) ([]File, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var (
		results []File
		stats   DirStats
		seen    = map[string]string{}
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, File{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if opts.SkipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path), opts.Exts) {
			return nil
		}
		stats.Matched++

		f, err := LoadPath(path, opts.MaxBytes)
		if err != nil {
			results = append(results, File{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		if _, dup := seen[f.HashHex]; dup {
			f.Deduplicated = true
			f.Text = ""
			stats.Deduplicated++
		} else {
			seen[f.HashHex] = path
			stats.Loaded++
		}
		results = append(results, f)
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}
