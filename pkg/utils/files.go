package utils

import (
	"path/filepath"
	"strings"
)

// Stem returns path with its final extension removed, e.g. "src/a.c" -> "src/a".
func Stem(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext)
}

// WithExt replaces path's final extension with ext (which should include the leading dot).
func WithExt(path string, ext string) string {
	return Stem(path) + ext
}
