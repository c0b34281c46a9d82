package pulplib

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

// Converters shared by the entity codecs. Remote values arrive as the loosely
// typed product of JSON decoding, so every ToLocal starts by checking shape.

func asString(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T", raw)
	}
	return s, nil
}

// stringBool maps the remote convention of storing booleans as "True"/"False"
// strings inside notes.
func stringBool(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T", raw)
	}
	return s == "True", nil
}

func boolString(value any) (any, error) {
	if value.(bool) {
		return "True", nil
	}
	return "False", nil
}

// stringInt maps note fields storing integers as decimal strings.
func stringInt(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T", raw)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func intString(value any) (any, error) {
	return strconv.Itoa(value.(int)), nil
}

// stringSlice coerces a decoded JSON array into []string.
func stringSlice(raw any) (any, error) {
	elems, ok := raw.([]any)
	if !ok {
		if s, ok := raw.([]string); ok {
			return slices.Clone(s), nil
		}
		return nil, fmt.Errorf("expected list, got %T", raw)
	}
	out := make([]string, len(elems))
	for i, e := range elems {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("expected string element, got %T", e)
		}
		out[i] = s
	}
	return out, nil
}

func asBool(raw any) (any, error) {
	b, ok := raw.(bool)
	if !ok {
		return nil, fmt.Errorf("expected bool, got %T", raw)
	}
	return b, nil
}

// asConfigMap checks that a raw value is a nested mapping.
func asConfigMap(raw any) (any, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected mapping, got %T", raw)
	}
	return m, nil
}

// anyInt64 coerces JSON numbers (float64 after decoding) and native ints.
func anyInt64(raw any) (any, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	}
	return nil, fmt.Errorf("expected number, got %T", raw)
}

// csvList splits a comma-joined string into trimmed elements. Lossy: joining
// back does not restore surrounding whitespace.
func csvList(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T", raw)
	}
	parts := strings.Split(s, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out, nil
}

func listCSV(value any) (any, error) {
	return strings.Join(value.([]string), ","), nil
}

func timeRFC3339(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T", raw)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return t.UTC(), nil
}

func rfc3339Time(value any) (any, error) {
	return value.(time.Time).UTC().Format(time.RFC3339), nil
}

// jsonVersionList decodes the product_versions note, which stores a JSON
// array of loosely typed values. Every element is coerced to a string and the
// result is sorted by sortVersions. Lossy: element order and non-string
// element types are normalized away.
func jsonVersionList(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected string, got %T", raw)
	}
	var elems []any
	if err := json.Unmarshal([]byte(s), &elems); err != nil {
		return nil, err
	}
	versions := make([]string, len(elems))
	for i, e := range elems {
		switch v := e.(type) {
		case string:
			versions[i] = v
		case float64:
			versions[i] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			versions[i] = fmt.Sprint(v)
		}
	}
	return sortVersions(versions), nil
}

func versionListJSON(value any) (any, error) {
	b, err := json.Marshal(value.([]string))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// sortVersions sorts dotted version strings component-wise numerically, so
// "8.10" sorts after "8.8". If any component of any version fails to parse as
// an integer, the entire list falls back to a plain lexicographic sort.
func sortVersions(versions []string) []string {
	out := slices.Clone(versions)

	keys := make(map[string][]int, len(out))
	numeric := true
	for _, v := range out {
		parts := strings.Split(v, ".")
		key := make([]int, len(parts))
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil {
				numeric = false
				break
			}
			key[i] = n
		}
		if !numeric {
			break
		}
		keys[v] = key
	}

	if !numeric {
		slices.Sort(out)
		return out
	}

	slices.SortStableFunc(out, func(a, b string) int {
		return slices.Compare(keys[a], keys[b])
	})
	return out
}
