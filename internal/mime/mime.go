// Package mime maps file names to the content types a Unity WebGL build needs.
package mime

import (
	"path"
	"strings"
)

// Default is returned for extensions missing from the table.
const Default = "application/octet-stream"

const (
	HTML       = "text/html"
	JavaScript = "application/javascript"
	JSON       = "application/json"
)

var types = map[string]string{
	"html":  HTML,
	"js":    JavaScript,
	"css":   "text/css",
	"json":  JSON,
	"wasm":  "application/wasm",
	"png":   "image/png",
	"jpg":   "image/jpeg",
	"jpeg":  "image/jpeg",
	"gif":   "image/gif",
	"svg":   "image/svg+xml",
	"ico":   "image/x-icon",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
	"woff":  "font/woff",
	"woff2": "font/woff2",
}

// textExtensions are read as text when a build is uploaded.
var textExtensions = map[string]bool{
	"html": true,
	"js":   true,
	"css":  true,
	"json": true,
	"txt":  true,
	"xml":  true,
	"svg":  true,
	"csv":  true,
	"md":   true,
}

// compressed maps Unity's pre-compressed suffixes to a Content-Encoding.
var compressed = map[string]string{
	"br": "br",
	"gz": "gzip",
}

func ext(name string) string {
	base := path.Base(name)
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return strings.ToLower(base)
	}
	return strings.ToLower(base[i+1:])
}

// Resolve returns the content type for name. It never fails.
func Resolve(name string) string {
	if t, ok := types[ext(name)]; ok {
		return t
	}
	return Default
}

// IsText reports whether a response of the given content type carries text.
func IsText(contentType string) bool {
	return strings.HasPrefix(contentType, "text/") ||
		contentType == JavaScript ||
		contentType == JSON
}

// IsTextName reports whether a file should be stored as text on upload.
func IsTextName(name string) bool {
	return textExtensions[ext(name)]
}

// Encoding strips a pre-compression suffix from name. It returns the inner
// name and the Content-Encoding value, or name and "" when the file is not
// pre-compressed.
func Encoding(name string) (inner, encoding string) {
	enc, ok := compressed[ext(name)]
	if !ok || !strings.Contains(path.Base(name), ".") {
		return name, ""
	}
	return name[:strings.LastIndexByte(name, '.')], enc
}
