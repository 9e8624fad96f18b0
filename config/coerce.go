package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// values reads loosely typed YAML scalars. Every accessor returns def when
// the key is missing or its value cannot be converted.
type values map[string]any

func (v values) string(key, def string) string {
	raw, ok := v[key]
	if !ok || raw == nil {
		return def
	}
	if s := strings.TrimSpace(fmt.Sprint(raw)); s != "" {
		return s
	}
	return def
}

func (v values) int(key string, def int) int {
	switch n := v[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return def
}

func (v values) float(key string, def float64) float64 {
	switch n := v[key].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	}
	return def
}

func (v values) bool(key string, def bool) bool {
	switch b := v[key].(type) {
	case bool:
		return b
	case int:
		return b != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "y", "on":
			return true
		case "false", "0", "no", "n", "off":
			return false
		}
	}
	return def
}

// duration accepts Go duration strings or a number of seconds.
func (v values) duration(key string, def time.Duration) time.Duration {
	switch d := v[key].(type) {
	case int:
		return time.Duration(d) * time.Second
	case float64:
		return time.Duration(d * float64(time.Second))
	case string:
		s := strings.TrimSpace(d)
		if parsed, err := time.ParseDuration(s); err == nil {
			return parsed
		}
		if secs, err := strconv.ParseFloat(s, 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return def
}

// strings accepts a YAML list or a comma separated string.
func (v values) strings(key string, def []string) []string {
	var out []string
	switch s := v[key].(type) {
	case []any:
		for _, item := range s {
			if item == nil {
				continue
			}
			if t := strings.TrimSpace(fmt.Sprint(item)); t != "" {
				out = append(out, t)
			}
		}
	case string:
		for _, part := range strings.Split(s, ",") {
			if t := strings.TrimSpace(part); t != "" {
				out = append(out, t)
			}
		}
	default:
		return def
	}
	if len(out) == 0 {
		return def
	}
	return out
}
