package model

import "strings"

// Location is the current navigation position as ordered path segments,
// for example ["tabs", "map"]. It is supplied by the navigation layer.
type Location []string

// ParseLocation splits a slash separated path into a Location.
// Empty segments are dropped, so "/tabs//map/" becomes ["tabs", "map"].
func ParseLocation(path string) Location {
	var loc Location
	for _, seg := range strings.Split(path, "/") {
		if seg = strings.TrimSpace(seg); seg != "" {
			loc = append(loc, seg)
		}
	}
	return loc
}

// First returns the first segment, or "" for the root location
func (l Location) First() string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}

// String renders the location as an absolute path
func (l Location) String() string {
	return "/" + strings.Join(l, "/")
}
