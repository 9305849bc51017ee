// Package static maps request targets onto a web root and serves the
// resolved files over the http11 engine. Path safety — refusing any
// target that escapes the root — is this package's contract, not the
// filesystem's.
package static

import (
	"errors"
	"net/url"
	"strings"
)

var (
	// ErrBadPath indicates a target that cannot be decoded into a
	// filesystem path (bad percent-encoding, embedded NUL, backslash).
	// Maps to 400.
	ErrBadPath = errors.New("static: malformed request path")

	// ErrTraversal indicates a target that resolves above the web
	// root. Maps to 403 no matter how the traversal was encoded.
	ErrTraversal = errors.New("static: path escapes web root")
)

// CleanPath percent-decodes a request target and normalizes it to a
// rooted slash path with every "." and ".." segment collapsed. A ".."
// that would climb above the root returns ErrTraversal.
//
// Pure string algorithm, no filesystem access, so it can be fuzzed in
// isolation. The traversal decision is made here on the decoded bytes,
// which is what defeats encoded ("%2e%2e%2f") and mixed-case ("%2E")
// variants: by the time segments are inspected, they are plain text.
func CleanPath(target string) (string, error) {
	decoded, err := url.PathUnescape(target)
	if err != nil {
		return "", ErrBadPath
	}
	if strings.IndexByte(decoded, 0) != -1 || strings.IndexByte(decoded, '\\') != -1 {
		return "", ErrBadPath
	}

	segments := strings.Split(decoded, "/")
	stack := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			// Empty segments (leading slash, "//") and "." vanish.
		case "..":
			if len(stack) == 0 {
				return "", ErrTraversal
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, seg)
		}
	}

	return "/" + strings.Join(stack, "/"), nil
}
