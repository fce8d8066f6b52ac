package state

import (
	"time"
)

// Timestamp is a unix time in seconds. Block time has second resolution, so
// all stored times and delay arithmetic use seconds.
type Timestamp uint64

// NewTimestamp converts a time.Time.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t.Unix())
}

// Time converts back to a time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}

// Add returns the timestamp moved by a number of seconds.
func (t Timestamp) Add(seconds int64) Timestamp {
	return Timestamp(int64(t) + seconds)
}

// SecondsSince returns the seconds elapsed from the parameter to t. Negative
// when the parameter is later than t.
func (t Timestamp) SecondsSince(o Timestamp) int64 {
	return int64(t) - int64(o)
}

func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339)
}
