package connector

import (
	"io"
	"strings"
)

// asObjectList normalizes a JSON-LD value that may be a single object or an
// array of objects into a slice; anything else yields nil
func asObjectList(v any) []map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return []map[string]any{t}
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, e := range t {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}

// firstString returns the first of the given keys holding a string value.
// A {"@id": ...} wrapper counts as its @id string.
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			return v
		case map[string]any:
			if id, ok := v["@id"].(string); ok {
				return id
			}
		}
	}
	return ""
}

func firstInt64(m map[string]any, keys ...string) int64 {
	for _, k := range keys {
		if f, ok := m[k].(float64); ok {
			return int64(f)
		}
	}
	return 0
}

// excerpt bounds a response body for error diagnostics
func excerpt(b []byte) string {
	const max = 2048
	if len(b) > max {
		b = b[:max]
	}
	return strings.TrimSpace(string(b))
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 1<<20))
	return rc.Close()
}
