// Package schema associates documents with JSON schemas and validates
// them.
package schema

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

var linePrefixes = []string{
	"# yaml-language-server: $schema=",
	"#!",
}

// Location returns the schema location named on the first line of a
// document, or "" if there is none.
func Location(firstLine string) string {
	for _, p := range linePrefixes {
		if strings.HasPrefix(firstLine, p) {
			return strings.TrimSpace(firstLine[len(p):])
		}
	}
	return ""
}

// Resolve turns a schema location into the reference used for
// validation. URLs are returned as they are. A location naming an
// existing file becomes a file URL. Anything else is appended to
// prefix, if prefix is set.
func Resolve(loc, prefix string) string {
	if hasScheme(loc) {
		return loc
	}
	if _, err := os.Stat(loc); err == nil {
		if abs, err := filepath.Abs(loc); err == nil {
			return fileURL(abs)
		}
	}
	if prefix != "" {
		return prefix + loc
	}
	return loc
}

func hasScheme(loc string) bool {
	u, err := url.Parse(loc)
	return err == nil && len(u.Scheme) > 1
}

func fileURL(abs string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}
