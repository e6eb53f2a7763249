package syncer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"facility-logbook-backend/internal/bridge"
)

// The bridge's pull responses are header-name-driven on the remote side, so
// field names drift between sheets ("airFilter", "Air Filter", "AirFilter").
// Lookup is exact first, then case-insensitive with spaces stripped.

func normalizeKey(k string) string {
	return strings.ToLower(strings.ReplaceAll(k, " ", ""))
}

func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func fieldString(row bridge.Row, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok {
			if s := coerceString(v); s != "" {
				return s
			}
		}
	}
	for _, k := range keys {
		want := normalizeKey(k)
		for rk, v := range row {
			if normalizeKey(rk) == want {
				if s := coerceString(v); s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func fieldFloat(row bridge.Row, keys ...string) (float64, bool) {
	s := fieldString(row, keys...)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"1/2/2006, 3:04:05 PM",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// rowTimestamp prefers the machine-readable isoTimestamp column and falls
// back to the localized dateStr. Rows with neither are rejected.
func rowTimestamp(row bridge.Row) (time.Time, bool) {
	if iso := fieldString(row, "isoTimestamp", "timestamp"); iso != "" {
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, iso); err == nil {
				return ts, true
			}
		}
	}
	if ds := fieldString(row, "dateStr", "date"); ds != "" {
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, ds); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
