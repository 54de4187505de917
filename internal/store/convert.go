package store

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// The pgx stdlib driver hands back different Go types depending on the
// Postgres column type (numeric arrives as string, jsonb as []byte). These
// helpers normalize Row values for the typed adapters.

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		return ""
	}
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	case []byte:
		f, _ := strconv.ParseFloat(string(t), 64)
		return f
	default:
		return 0
	}
}

func asInt(v any) int {
	switch t := v.(type) {
	case int64:
		return int(t)
	case int32:
		return int(t)
	case int:
		return t
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(t)
		return n
	case []byte:
		n, _ := strconv.Atoi(string(t))
		return n
	default:
		return 0
	}
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, _ := time.Parse(time.RFC3339, t)
		return parsed
	default:
		return time.Time{}
	}
}

func asUUID(v any) uuid.UUID {
	switch t := v.(type) {
	case [16]byte:
		return uuid.UUID(t)
	case uuid.UUID:
		return t
	case string:
		id, _ := uuid.Parse(t)
		return id
	case []byte:
		if len(t) == 16 {
			id, _ := uuid.FromBytes(t)
			return id
		}
		id, _ := uuid.Parse(string(t))
		return id
	default:
		return uuid.Nil
	}
}

// asStringList decodes a jsonb array column.
func asStringList(v any) []string {
	var raw []byte
	switch t := v.(type) {
	case []byte:
		raw = t
	case string:
		raw = []byte(t)
	default:
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

// asMetadata decodes a jsonb object column.
func asMetadata(v any) map[string]any {
	var raw []byte
	switch t := v.(type) {
	case []byte:
		raw = t
	case string:
		raw = []byte(t)
	case nil:
		return nil
	default:
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func jsonValue(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(raw)
}
