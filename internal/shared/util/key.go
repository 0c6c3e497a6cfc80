package util

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectKey builds a storage key of the form namespace/YYYY/MM/DD/<uuid>_<name>.
func ObjectKey(namespace, fileName string, now time.Time) (string, error) {
	name, err := SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(CleanNamespace(namespace), now.UTC().Format("2006/01/02"), fmt.Sprintf("%s_%s", uuid.NewString(), name)), nil
}

// CleanNamespace keeps [a-z0-9-_] path segments and defaults to "misc".
func CleanNamespace(namespace string) string {
	var segments []string
	for _, seg := range strings.Split(strings.ToLower(namespace), "/") {
		seg = strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
				return r
			}
			return -1
		}, seg)
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	if len(segments) == 0 {
		return "misc"
	}
	return strings.Join(segments, "/")
}
