package util

import (
	"errors"
	"strings"
	"unicode"
)

const maxFileNameLen = 128

// SanitizeFileName removes path separators and control characters, rejects
// traversal patterns and caps the length while keeping the extension.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	if s == "" {
		return "", errors.New("invalid file name")
	}
	if runes := []rune(s); len(runes) > maxFileNameLen {
		ext := []rune(FileExt(s))
		if len(ext) >= maxFileNameLen {
			ext = nil
		}
		s = string(runes[:maxFileNameLen-len(ext)]) + string(ext)
	}
	return s, nil
}

// FileExt returns the lower-cased extension of name including the dot, or "".
func FileExt(name string) string {
	i := strings.LastIndexAny(name, "./\\")
	if i < 0 || name[i] != '.' || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i:])
}
