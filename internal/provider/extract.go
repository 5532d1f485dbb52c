package provider

import (
	"math"
	"strconv"
	"strings"
)

// ExtractValue normalizes a numeric value from the shapes upstream payloads
// use for it.
//
// ESPN mixes quoted numbers ("24"), bare numbers (24) and, in a few record
// endpoints, objects like {"value": 24}. This handles all of them.
//
// Returns the scalar float64 value, and ok=false if not extractable.
func ExtractValue(val interface{}) (float64, bool) {
	if val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return ExtractValue(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return ExtractValue(f)
		}
		return 0, false
	case map[string]interface{}:
		for _, key := range []string{"value", "total", "displayValue"} {
			if inner, exists := v[key]; exists && inner != nil {
				return ExtractValue(inner)
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// --------------------------------------------------------------------------
// Path access over decoded JSON
// --------------------------------------------------------------------------

// Path walks a decoded JSON document by object keys and array indexes
// ("competitions", "0", "competitors"). It reports false as soon as a step is
// missing, has the wrong type, or is out of range.
func Path(doc interface{}, path ...string) (interface{}, bool) {
	cur := doc
	for _, step := range path {
		switch node := cur.(type) {
		case map[string]interface{}:
			next, ok := node[step]
			if !ok {
				return nil, false
			}
			cur = next
		case []interface{}:
			idx, err := strconv.Atoi(step)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// String returns the value at path as a string, or "" if absent.
// Numbers and booleans are formatted; objects and arrays yield "".
func String(doc interface{}, path ...string) string {
	v, ok := Path(doc, path...)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == math.Trunc(s) && math.Abs(s) < 1e15 {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// FirstString returns the first non-empty string among several paths.
func FirstString(doc interface{}, paths ...[]string) string {
	for _, p := range paths {
		if s := String(doc, p...); s != "" {
			return s
		}
	}
	return ""
}

// OptString returns a pointer to the string at path, or nil when the value is
// absent or empty.
func OptString(doc interface{}, path ...string) *string {
	s := String(doc, path...)
	if s == "" {
		return nil
	}
	return &s
}

// Float returns the numeric value at path, or 0 if absent or malformed.
func Float(doc interface{}, path ...string) float64 {
	v, ok := Path(doc, path...)
	if !ok {
		return 0
	}
	f, _ := ExtractValue(v)
	return f
}

// OptFloat returns a pointer to the numeric value at path, or nil.
func OptFloat(doc interface{}, path ...string) *float64 {
	v, ok := Path(doc, path...)
	if !ok {
		return nil
	}
	f, ok := ExtractValue(v)
	if !ok {
		return nil
	}
	return &f
}

// Int returns the value at path truncated to an int, or 0 if absent or
// malformed.
func Int(doc interface{}, path ...string) int {
	f := Float(doc, path...)
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}

// OptInt returns a pointer to the integer at path, or nil when absent or
// malformed.
func OptInt(doc interface{}, path ...string) *int {
	f := OptFloat(doc, path...)
	if f == nil || *f > math.MaxInt32 || *f < math.MinInt32 {
		return nil
	}
	n := int(*f)
	return &n
}

// Count is Int clamped at zero, for scores, periods and experience.
func Count(doc interface{}, path ...string) int {
	n := Int(doc, path...)
	if n < 0 {
		return 0
	}
	return n
}

// Bool returns the boolean at path. Strings "true"/"false" are accepted.
func Bool(doc interface{}, path ...string) bool {
	v, ok := Path(doc, path...)
	if !ok {
		return false
	}
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	default:
		return false
	}
}

// Map returns the object at path, or nil.
func Map(doc interface{}, path ...string) map[string]interface{} {
	v, ok := Path(doc, path...)
	if !ok {
		return nil
	}
	m, _ := v.(map[string]interface{})
	return m
}

// List returns the array at path, or nil.
func List(doc interface{}, path ...string) []interface{} {
	v, ok := Path(doc, path...)
	if !ok {
		return nil
	}
	l, _ := v.([]interface{})
	return l
}

// Maps returns the object elements of the array at path, skipping anything
// that is not an object.
func Maps(doc interface{}, path ...string) []map[string]interface{} {
	items := List(doc, path...)
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// Strings returns the string elements of the array at path.
func Strings(doc interface{}, path ...string) []string {
	items := List(doc, path...)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
