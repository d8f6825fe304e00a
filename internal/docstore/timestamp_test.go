package docstore

import (
	"testing"
	"time"
)

func TestTimestampFromTime_NormalizesToUTCMicroseconds(t *testing.T) {
	in := time.Date(2026, 3, 14, 10, 30, 0, 123456789, time.FixedZone("CET", 3600))
	ts := TimestampFromTime(in)

	got := ts.Time()
	if got.Location() != time.UTC {
		t.Fatalf("location = %v, want UTC", got.Location())
	}
	if got.Nanosecond() != 123456000 {
		t.Fatalf("nanoseconds = %d, want %d", got.Nanosecond(), 123456000)
	}
	if !got.Equal(in.Truncate(time.Microsecond)) {
		t.Fatalf("instant = %v, want %v", got, in.Truncate(time.Microsecond))
	}
}

func TestTimestampOrdering(t *testing.T) {
	early := TimestampFromTime(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	late := TimestampFromTime(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))

	if !early.Before(late) {
		t.Fatalf("early.Before(late) = false, want true")
	}
	if late.Before(early) {
		t.Fatalf("late.Before(early) = true, want false")
	}
	if !early.Equal(TimestampFromTime(early.Time())) {
		t.Fatalf("round-tripped timestamp not equal")
	}
}

func TestDeleteSentinel(t *testing.T) {
	if !IsDelete(Delete) {
		t.Fatalf("IsDelete(Delete) = false, want true")
	}
	if IsDelete(nil) || IsDelete("") || IsDelete(struct{}{}) {
		t.Fatalf("IsDelete matched a non-sentinel value")
	}
}
