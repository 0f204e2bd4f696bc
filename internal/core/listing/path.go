package listing

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var repeatedSlashes = regexp.MustCompile(`/+`)

// ParentPath computes the "navigate up" target of location: the last path
// segment is stripped, repeated slashes collapse, and the result is resolved
// as a URL reference against basePath.
func ParentPath(location, basePath string) (string, error) {
	segments := strings.Split(location, "/")
	parent := strings.Join(segments[:len(segments)-1], "/")
	parent = repeatedSlashes.ReplaceAllString(parent, "/")

	if basePath == "" {
		basePath = "/"
	}
	base, err := url.Parse(basePath)
	if err != nil {
		return "", fmt.Errorf("parse base path %q: %w", basePath, err)
	}
	// names are raw text; '#', '?' and '%' are not URL syntax here
	ref := &url.URL{Path: parent}
	resolved := base.ResolveReference(ref).Path
	if resolved == "" {
		resolved = "/"
	}
	return resolved, nil
}

// ChildPath returns the location of a child named name inside location.
func ChildPath(location, name string) string {
	return path.Join("/", location, name)
}

// CleanLocation normalizes a location to a rooted, slash-separated path.
func CleanLocation(location string) string {
	return path.Join("/", location)
}

// IsRootLocation reports whether location is the configured root.
func IsRootLocation(location, root string) bool {
	return CleanLocation(location) == CleanLocation(root)
}
