package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// Snapshot is the full value stored at a remote path at one point in time.
type Snapshot struct {
	Path string
	Raw  []byte
}

// Exists reports whether the snapshot carries a value. Empty payloads and JSON null are absent.
func (s Snapshot) Exists() bool {
	trimmed := bytes.TrimSpace(s.Raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// FromValue encodes v as the snapshot for path.
func FromValue(path string, v any) (Snapshot, error) {
	raw, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode snapshot %s: %w", path, err)
	}
	return Snapshot{Path: path, Raw: raw}, nil
}

// Decode unmarshals the snapshot into out. Absent snapshots leave out untouched.
func (s Snapshot) Decode(out any) error {
	if !s.Exists() {
		return nil
	}
	if err := sonic.Unmarshal(s.Raw, out); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", s.Path, err)
	}
	return nil
}

// Record is one canonical keyed record. Field names are the canonical ones after alias resolution.
type Record map[string]any

func (r Record) ID() string {
	return r.String(FieldID)
}

// String renders scalar fields as text; numbers use their shortest decimal form.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return formatFloat(t)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// Number returns a finite numeric field. Numeric strings are accepted.
func (r Record) Number(key string) (float64, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, false
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		trimmed := strings.TrimSpace(t)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
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

// Int returns the field as an integer when it holds a finite whole number.
func (r Record) Int(key string) (int, bool) {
	f, ok := r.Number(key)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// Bool accepts JSON booleans and the strings "true"/"false".
func (r Record) Bool(key string) (bool, bool) {
	switch t := r[key].(type) {
	case bool:
		return t, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
