package docstore

import "time"

// Timestamp is the store's wire representation of a point in time, distinct
// from a native time.Time so that readers can detect malformed stored values
// with a type check. Precision is microseconds, matching the narrowest
// precision among the drivers.
type Timestamp struct {
	t time.Time
}

// TimestampFromTime converts a native time value to the wire type. The result
// is normalized to UTC and truncated to microsecond precision.
func TimestampFromTime(t time.Time) Timestamp {
	return Timestamp{t: t.UTC().Truncate(time.Microsecond)}
}

// Time converts back to a native time value in UTC.
func (ts Timestamp) Time() time.Time { return ts.t }

func (ts Timestamp) Equal(other Timestamp) bool { return ts.t.Equal(other.t) }

func (ts Timestamp) Before(other Timestamp) bool { return ts.t.Before(other.t) }
