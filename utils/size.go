package utils

import (
	"fmt"
	"strconv"
)

// FormatID renders a numeric id for callback data.
func FormatID(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// ParseID parses a numeric id out of callback data.
func ParseID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// FileSizeStr renders a byte count in human-readable form.
func FileSizeStr(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	case size < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	default:
		return fmt.Sprintf("%.1f GB", float64(size)/(1024*1024*1024))
	}
}
