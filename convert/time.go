package convert

import (
	"time"

	"github.com/reoring/jsonapi"
)

// TimeRFC3339 returns a converter between RFC3339 strings and time.Time
// (and *time.Time). Encoded times are normalized to UTC.
func TimeRFC3339() jsonapi.TypeConverter {
	return jsonapi.ConverterFor(parseRFC3339, formatRFC3339Canonical)
}

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
