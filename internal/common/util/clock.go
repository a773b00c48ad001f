package util

import "time"

// Clock supplies the instant a generation run is stamped with.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in the local zone, which is what run directories are named after.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant. Tests use it to get stable run directories.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// RunStamp captures the run timestamp of the current instant of clock.
func RunStamp(clock Clock) string {
	return RunTimestamp(clock.Now())
}
