package static

import "testing"

func TestTypeByExtension(t *testing.T) {
	cases := map[string]string{
		"/index.html":       "text/html; charset=utf-8",
		"/style.css":        "text/css; charset=utf-8",
		"/app.js":           "text/javascript; charset=utf-8",
		"/data.json":        "application/json",
		"/logo.PNG":         "image/png",
		"/archive.tar.gz":   "application/gzip",
		"/noextension":      "application/octet-stream",
		"/weird.xyz":        "application/octet-stream",
		"/trailing.":        "application/octet-stream",
		"/dir.v2/file.webp": "image/webp",
	}
	for name, want := range cases {
		if got := TypeByExtension(name); got != want {
			t.Errorf("TypeByExtension(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestCompressible(t *testing.T) {
	yes := []string{
		"text/html; charset=utf-8",
		"text/plain; charset=utf-8",
		"application/json",
		"text/javascript; charset=utf-8",
		"image/svg+xml",
		"text/xml; charset=utf-8",
	}
	no := []string{
		"image/png",
		"video/mp4",
		"application/gzip",
		"application/zip",
		"application/octet-stream",
	}
	for _, ct := range yes {
		if !compressible(ct) {
			t.Errorf("%q should be compressible", ct)
		}
	}
	for _, ct := range no {
		if compressible(ct) {
			t.Errorf("%q should not be compressible", ct)
		}
	}
}
