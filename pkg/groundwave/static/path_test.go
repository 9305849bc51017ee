package static

import (
	"strings"
	"testing"
)

func TestCleanPath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/", "/"},
		{"/index.html", "/index.html"},
		{"/a/b/c.txt", "/a/b/c.txt"},
		{"//double//slash", "/double/slash"},
		{"/./a/./b", "/a/b"},
		{"/a/b/../c", "/a/c"},
		{"/a/..", "/"},
		{"/a/b/..", "/a"},
		{"/trailing/", "/trailing"},
		{"/%61%62%63", "/abc"},
		{"/with%20space", "/with space"},
		{"/a/%2E/b", "/a/b"},
	}
	for _, tc := range cases {
		got, err := CleanPath(tc.in)
		if err != nil {
			t.Errorf("CleanPath(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("CleanPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanPathTraversal(t *testing.T) {
	cases := []string{
		"/..",
		"/../etc/passwd",
		"/a/../../etc/passwd",
		"/a/b/../../../secret",
		"/%2e%2e/etc/passwd",
		"/%2E%2E/etc/passwd",
		"/a/%2e%2e/%2e%2e/secret",
		"/..%2fetc%2fpasswd",
	}
	for _, in := range cases {
		if _, err := CleanPath(in); err != ErrTraversal {
			t.Errorf("CleanPath(%q) = %v, want ErrTraversal", in, err)
		}
	}
}

func TestCleanPathBad(t *testing.T) {
	cases := []string{
		"/bad%zz",
		"/bad%2",
		"/null%00byte",
		"/back\\slash",
		"/enc%5cbackslash",
	}
	for _, in := range cases {
		if _, err := CleanPath(in); err != ErrBadPath {
			t.Errorf("CleanPath(%q) = %v, want ErrBadPath", in, err)
		}
	}
}

func TestCleanPathDotDotInName(t *testing.T) {
	// ".." as a substring of a real name is not a traversal.
	got, err := CleanPath("/notes..txt")
	if err != nil || got != "/notes..txt" {
		t.Errorf("CleanPath = %q, %v", got, err)
	}
	got, err = CleanPath("/a..b/c")
	if err != nil || got != "/a..b/c" {
		t.Errorf("CleanPath = %q, %v", got, err)
	}
}

// FuzzCleanPath asserts the safety invariant over arbitrary input:
// every accepted path is rooted, contains no dot segments, and no
// separator smuggling survives decoding.
func FuzzCleanPath(f *testing.F) {
	f.Add("/index.html")
	f.Add("/../etc/passwd")
	f.Add("/%2e%2e%2f%2e%2e/secret")
	f.Add("//a//b/./c/../d")
	f.Add("/%00")
	f.Add(strings.Repeat("/..", 50))

	f.Fuzz(func(t *testing.T, target string) {
		got, err := CleanPath(target)
		if err != nil {
			return
		}
		if !strings.HasPrefix(got, "/") {
			t.Fatalf("accepted path not rooted: %q -> %q", target, got)
		}
		for _, seg := range strings.Split(got[1:], "/") {
			if seg == ".." || seg == "." {
				t.Fatalf("dot segment survived: %q -> %q", target, got)
			}
		}
		if strings.ContainsAny(got, "\\\x00") {
			t.Fatalf("separator smuggling: %q -> %q", target, got)
		}
	})
}
