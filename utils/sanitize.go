package utils

import (
	"path/filepath"
	"strings"
)

// SanitizeHeaderFilename removes characters that can break headers.
func SanitizeHeaderFilename(name string) string {
	clean := strings.TrimSpace(name)
	if clean == "" {
		return "download"
	}
	clean = strings.ReplaceAll(clean, "\r", "")
	clean = strings.ReplaceAll(clean, "\n", "")
	clean = strings.ReplaceAll(clean, "\"", "")
	return clean
}

// SanitizeFilename strips path separators and other dangerous characters
// from a user-supplied file name and caps its length.
func SanitizeFilename(name string) string {
	clean := strings.TrimSpace(name)
	for _, ch := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"} {
		clean = strings.ReplaceAll(clean, ch, "_")
	}
	if clean == "" {
		return "file"
	}
	if len(clean) > 255 {
		ext := filepath.Ext(clean)
		if len(ext) > 255 {
			ext = ""
		}
		clean = clean[:255-len(ext)] + ext
	}
	return clean
}
