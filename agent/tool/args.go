package tool

import (
	"fmt"
	"strings"
	"time"
)

// Envelope is the uniform tool result: status "ok" with data, or status
// "error" with a message the specialist can react to conversationally.
type Envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func okEnvelope(data any) Envelope {
	return Envelope{Status: "ok", Data: data}
}

func errEnvelope(format string, args ...any) Envelope {
	return Envelope{Status: "error", Message: fmt.Sprintf(format, args...)}
}

func stringArg(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func floatArg(args map[string]any, key string) (float64, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func intArg(args map[string]any, key string) (int, bool) {
	f, ok := floatArg(args, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// parseWhen accepts the timestamp shapes models produce: RFC3339, a local
// date-time, or a bare local date.
func parseWhen(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", raw, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid data %q", raw)
}
