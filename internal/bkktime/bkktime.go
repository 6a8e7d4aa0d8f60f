// Package bkktime converts provider kick-off times to Bangkok wall-clock time.
package bkktime

import (
	"fmt"
	"time"
)

// Layout is the fixed timestamp format used by the provider and by the
// match date filters. It is zero-padded and fixed-width, so lexicographic
// order of formatted strings matches chronological order.
const Layout = "2006-01-02 15:04:05"

// Bangkok is UTC+7 with no daylight saving.
var Bangkok = time.FixedZone("ICT", 7*60*60)

// FormatError reports a timestamp that does not match Layout.
type FormatError struct {
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("timestamp %q does not match %q: %v", e.Value, Layout, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// FromUTC interprets s as a UTC timestamp and returns it in Bangkok time,
// formatted with the same layout.
func FromUTC(s string) (string, error) {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return "", &FormatError{Value: s, Err: err}
	}
	return t.In(Bangkok).Format(Layout), nil
}

// DateLayout is the date part of Layout. Being a prefix of Layout, a date
// compares below every timestamp of that day.
const DateLayout = "2006-01-02"

// Valid reports whether s matches Layout.
func Valid(s string) bool {
	_, err := time.Parse(Layout, s)
	return err == nil
}

// ValidBound reports whether s can bound a range over Layout timestamps:
// a full timestamp or a bare date.
func ValidBound(s string) bool {
	if Valid(s) {
		return true
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
