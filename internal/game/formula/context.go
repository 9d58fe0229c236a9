package formula

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Context is the normalized data an actor exposes to resolution: its stats
// and a flat, case-insensitive index of numeric fields.
type Context struct {
	stats  []Stat
	fields map[string]float64
}

// NewContext indexes stats and an arbitrarily nested field map. Nested maps
// are walked depth-first in sorted key order; every numeric leaf (or numeric
// string) is indexed under both its own name and its dotted path, and the
// first occurrence of a name wins.
func NewContext(stats []Stat, fields map[string]any) *Context {
	c := &Context{
		stats:  append([]Stat(nil), stats...),
		fields: make(map[string]float64),
	}
	c.index("", fields)
	return c
}

func (c *Context) index(prefix string, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		switch v := fields[k].(type) {
		case map[string]any:
			c.index(path, v)
		case map[any]any:
			c.index(path, stringKeys(v))
		default:
			n, ok := toNumber(v)
			if !ok {
				continue
			}
			c.put(path, n)
			c.put(k, n)
		}
	}
}

func (c *Context) put(name string, v float64) {
	name = strings.ToLower(name)
	if _, ok := c.fields[name]; !ok {
		c.fields[name] = v
	}
}

// Stat finds a stat by key, then by label, case-insensitively.
func (c *Context) Stat(keyOrLabel string) (Stat, bool) {
	if c == nil || keyOrLabel == "" {
		return Stat{}, false
	}
	for _, s := range c.stats {
		if strings.EqualFold(s.Key, keyOrLabel) {
			return s, true
		}
	}
	for _, s := range c.stats {
		if strings.EqualFold(s.Label, keyOrLabel) {
			return s, true
		}
	}
	return Stat{}, false
}

// Field looks up a numeric field by name or dotted path. Stats are
// consulted when no field matches.
func (c *Context) Field(name string) (float64, bool) {
	if c == nil || name == "" {
		return 0, false
	}
	if v, ok := c.fields[strings.ToLower(name)]; ok {
		return v, true
	}
	if s, ok := c.Stat(name); ok {
		return float64(s.EffectiveValue()), true
	}
	return 0, false
}

func stringKeys(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if s, ok := k.(string); ok {
			out[s] = v
		}
	}
	return out
}

// toNumber accepts finite numbers and numeric strings.
func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
