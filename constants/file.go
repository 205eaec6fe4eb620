package constants

import "strings"

// AllowedExtensions holds the default extensions of label text dumps picked up by ingest.
var AllowedExtensions = map[string]struct{}{
	"txt":  {},
	"text": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
