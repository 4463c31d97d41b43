package hdf5

import (
	"fmt"
	"strings"
)

// ParseAttrPath splits "object@attribute" into its object path and
// attribute name. "/@version" names an attribute of the root group.
func ParseAttrPath(p string) (objectPath, attrName string, err error) {
	at := strings.LastIndex(p, "@")
	if at < 0 {
		return "", "", fmt.Errorf("%w: %q has no '@' separator", ErrInvalidPath, p)
	}
	attrName = p[at+1:]
	if attrName == "" {
		return "", "", fmt.Errorf("%w: %q has an empty attribute name", ErrInvalidPath, p)
	}
	return CleanPath(p[:at]), attrName, nil
}

// JoinAttrPath is the inverse of ParseAttrPath.
func JoinAttrPath(objectPath, attrName string) string {
	p := CleanPath(objectPath)
	if p == "/" {
		return "/@" + attrName
	}
	return p + "@" + attrName
}

// SplitPath returns the non-empty components of p.
//
//   - "/" -> []
//   - "/image/a.jpg" -> ["image", "a.jpg"]
func SplitPath(p string) []string {
	var parts []string
	for _, s := range strings.Split(p, "/") {
		if s != "" && s != "." {
			parts = append(parts, s)
		}
	}
	return parts
}

// CleanPath returns p as an absolute path without a trailing slash.
func CleanPath(p string) string {
	return "/" + strings.Join(SplitPath(p), "/")
}

// childPath joins a group path and a member name.
func childPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

// checkName rejects names that cannot be stored as a single link.
func checkName(name string) error {
	if name == "" || name == "." || strings.Contains(name, "/") {
		return fmt.Errorf("%w: link name %q", ErrInvalidPath, name)
	}
	return nil
}
