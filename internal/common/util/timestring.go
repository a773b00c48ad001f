package util

import "time"

// timeStringLayout is yyMMdd_HHmmss followed by milliseconds, e.g. 161129_000557.123.
const timeStringLayout = "060102_150405.000"

// fractionLength is the length of the ".mmm" suffix of a time string.
const fractionLength = 4

// TimeString formats t as a fixed-width time string including milliseconds.
func TimeString(t time.Time) string {
	return t.Format(timeStringLayout)
}

// RunTimestamp returns the time string of t with the sub-second part dropped. It names
// the directory of a generation run, so it has to be captured once per run.
func RunTimestamp(t time.Time) string {
	s := TimeString(t)
	return s[:len(s)-fractionLength]
}
