package mvc

import (
	"regexp"
	"strings"
)

var slashRuns = regexp.MustCompile(`/+`)

// NormalizePath gives p a leading slash, collapses every run of slashes
// into one and drops a trailing slash (except for the root path).
// It is idempotent.
//
//	NormalizePath("demo//query/") == "/demo/query"
func NormalizePath(p string) string {
	p = slashRuns.ReplaceAllString("/"+p, "/")
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// JoinPath builds a route from a controller base path and a method path.
//
//	JoinPath("demo", "query") == "/demo/query"
func JoinPath(base, sub string) string {
	return NormalizePath("/" + base + "/" + sub)
}

// RequestPath normalizes an incoming URL path the same way routes are
// normalized, after removing the application's context path prefix.
func RequestPath(urlPath, contextPath string) string {
	p := NormalizePath(urlPath)
	prefix := NormalizePath(contextPath)
	if prefix == "/" {
		return p
	}
	if p == prefix {
		return "/"
	}
	if strings.HasPrefix(p, prefix+"/") {
		return NormalizePath(strings.TrimPrefix(p, prefix))
	}
	return p
}
