package static

import "strings"

// contentTypes maps lower-case file extensions to media types. The
// table is fixed at build time rather than read from the host mime
// database so the same file serves the same Content-Type on every
// platform.
var contentTypes = map[string]string{
	"html": "text/html; charset=utf-8",
	"htm":  "text/html; charset=utf-8",
	"css":  "text/css; charset=utf-8",
	"js":   "text/javascript; charset=utf-8",
	"mjs":  "text/javascript; charset=utf-8",
	"txt":  "text/plain; charset=utf-8",
	"md":   "text/markdown; charset=utf-8",
	"csv":  "text/csv; charset=utf-8",
	"xml":  "text/xml; charset=utf-8",
	"json": "application/json",
	"pdf":  "application/pdf",
	"wasm": "application/wasm",
	"zip":  "application/zip",
	"gz":   "application/gzip",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"ico":  "image/x-icon",
	"avif": "image/avif",
	"mp3":  "audio/mpeg",
	"ogg":  "audio/ogg",
	"wav":  "audio/wav",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
}

const defaultContentType = "application/octet-stream"

// TypeByExtension resolves the Content-Type for a file path from its
// extension, falling back to application/octet-stream for unknown or
// missing extensions.
func TypeByExtension(name string) string {
	dot := strings.LastIndexByte(name, '.')
	if dot < 0 || dot == len(name)-1 {
		return defaultContentType
	}
	ext := strings.ToLower(name[dot+1:])
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return defaultContentType
}

// compressible reports whether a media type is worth gzip encoding.
// Text and structured formats compress well; images, media and
// archives are already compressed.
func compressible(contentType string) bool {
	if strings.HasPrefix(contentType, "text/") {
		return true
	}
	switch {
	case strings.HasPrefix(contentType, "application/json"),
		strings.HasPrefix(contentType, "application/wasm"),
		strings.Contains(contentType, "javascript"),
		strings.Contains(contentType, "xml"),
		strings.Contains(contentType, "svg"):
		return true
	}
	return false
}
