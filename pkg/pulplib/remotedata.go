package pulplib

import (
	"fmt"
	"strings"
)

// RemoteData is the raw nested-mapping representation used by the remote
// service. Field paths address it with dot-separated keys, e.g. "notes.arch".
type RemoteData = map[string]any

// absentValue marks a field path that was not present in remote data at all,
// as opposed to present with a null value. Partial-update correctness depends
// on this distinction.
type absentValue struct{}

func (absentValue) String() string { return "<absent>" }

// Absent is the sentinel returned by lookups of missing paths.
var Absent = absentValue{}

// lookup resolves a dotted path into data, returning Absent when any segment
// of the path is missing or a non-mapping value is found mid-path.
func lookup(data RemoteData, path string) any {
	segments := strings.Split(path, ".")
	current := any(data)
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return Absent
		}
		current, ok = m[seg]
		if !ok {
			return Absent
		}
	}
	return current
}

// put assigns value at a dotted path into data, creating intermediate maps.
// Assigning through an existing non-map leaf, or over an already-assigned
// leaf, is an error: later fields may not overwrite earlier-assigned values.
func put(data RemoteData, path string, value any) error {
	segments := strings.Split(path, ".")
	current := data
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg]
		if !ok {
			child := map[string]any{}
			current[seg] = child
			current = child
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("path %q crosses non-mapping value at %q", path, seg)
		}
		current = m
	}
	leaf := segments[len(segments)-1]
	if _, exists := current[leaf]; exists {
		return fmt.Errorf("path %q is already assigned", path)
	}
	current[leaf] = value
	return nil
}
