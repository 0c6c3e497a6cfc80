package util

import (
	"mime"
	"net/http"
)

var designTypes = map[string]string{
	".svg":  "image/svg+xml",
	".dxf":  "image/vnd.dxf",
	".json": "application/json",
}

// ContentType picks a MIME type from the file extension, falling back to
// sniffing the leading bytes.
func ContentType(fileName string, head []byte) string {
	ext := FileExt(fileName)
	if t, ok := designTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); ext != "" && t != "" {
		return t
	}
	return http.DetectContentType(head)
}
