package dtos

import (
	"strconv"
	"strings"
)

// FeedMission is one loosely typed <mission> entry of a partner feed.
// Leaf elements are strings, nested elements are FeedMission values and
// repeated elements are []any.
type FeedMission map[string]any

// ClientID returns the partner-assigned mission id
func (m FeedMission) ClientID() string {
	return m.String("clientId")
}

// String returns the trimmed text of a leaf element, or "" when absent or not a leaf
func (m FeedMission) String(key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		// Repeated leaf: first occurrence
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// Int parses a leaf element as an integer
func (m FeedMission) Int(key string) (int, bool) {
	s := m.String(key)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if ferr != nil {
			return 0, false
		}
		return int(f), true
	}
	return n, true
}

// Float parses a leaf element as a float, accepting a decimal comma
func (m FeedMission) Float(key string) (float64, bool) {
	s := strings.Replace(m.String(key), ",", ".", 1)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Bool interprets yes/true/1/oui as true
func (m FeedMission) Bool(key string) bool {
	switch strings.ToLower(m.String(key)) {
	case "yes", "true", "1", "oui":
		return true
	}
	return false
}

// Map returns a nested element
func (m FeedMission) Map(key string) FeedMission {
	switch v := m[key].(type) {
	case FeedMission:
		return v
	case map[string]any:
		return FeedMission(v)
	case []any:
		if len(v) > 0 {
			if nested, ok := v[0].(FeedMission); ok {
				return nested
			}
		}
	}
	return nil
}

// List returns a nested element as a list, promoting a single element
func (m FeedMission) List(key string) []FeedMission {
	var out []FeedMission
	switch v := m[key].(type) {
	case FeedMission:
		out = append(out, v)
	case map[string]any:
		out = append(out, FeedMission(v))
	case []any:
		for _, item := range v {
			switch nested := item.(type) {
			case FeedMission:
				out = append(out, nested)
			case map[string]any:
				out = append(out, FeedMission(nested))
			}
		}
	}
	return out
}

// Strings returns a list of leaf values. Both <tags><value>a</value></tags>
// and repeated <tags>a</tags> shapes are accepted.
func (m FeedMission) Strings(key string) []string {
	var out []string
	appendLeaf := func(v any) {
		if s, ok := v.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	switch v := m[key].(type) {
	case string:
		appendLeaf(v)
	case []any:
		for _, item := range v {
			appendLeaf(item)
		}
	case FeedMission:
		for _, child := range v {
			switch c := child.(type) {
			case []any:
				for _, item := range c {
					appendLeaf(item)
				}
			default:
				appendLeaf(c)
			}
		}
	}
	return out
}
