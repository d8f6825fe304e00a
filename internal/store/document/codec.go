package document

import (
	"time"

	"agendly/backend/internal/docstore"
)

// epochFallback substitutes for a stored date that is not the wire timestamp
// type. A read must never fail on a single malformed record it did not cause.
var epochFallback = time.Unix(0, 0).UTC()

// requiredString decodes a field that the writer always sets. Missing or
// mistyped values fall back to the empty string so legacy or partial
// documents still map.
func requiredString(data map[string]any, field string) string {
	s, _ := data[field].(string)
	return s
}

// optionalString decodes an optional field to a pointer; missing, mistyped
// and empty values all map to nil.
func optionalString(data map[string]any, field string) *string {
	s, _ := data[field].(string)
	if s == "" {
		return nil
	}
	return &s
}

func dateField(data map[string]any, field string) time.Time {
	ts, ok := data[field].(docstore.Timestamp)
	if !ok {
		return epochFallback
	}
	return ts.Time()
}
