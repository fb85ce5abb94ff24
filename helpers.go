package blogposts

import (
	"net/url"
	"path"
	"strings"
	"unicode/utf8"
)

// BuildURL joins a base URL with path segments. Segments are escaped when
// the URL is rendered.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	return u.String()
}

// Summarize returns s cut to at most n runes on a word boundary, with an
// ellipsis appended when anything was cut.
func Summarize(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
