package http

import (
	"net/url"
	"strings"
)

// JoinURL appends path to base, escaping each path segment of path.
func JoinURL(base string, segments ...string) string {
	b := strings.TrimRight(base, "/")
	for _, s := range segments {
		b += "/" + url.PathEscape(strings.Trim(s, "/"))
	}
	return b
}
