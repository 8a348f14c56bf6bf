package timeutil

import (
	"fmt"
	"time"
)

// Now returns the current time in UTC
// Always use this instead of time.Now() to ensure timezone consistency
func Now() time.Time {
	return time.Now().UTC()
}

// FormatDateTime renders t as "YYYY-MM-DD HH:MM:SS" in loc.
// The gateway rejects any RequestTime that does not match this layout byte-for-byte.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		t.Year(), int(t.Month()), t.Day(),
		t.Hour(), t.Minute(), t.Second(),
	)
}

// FormatDate renders t as "YYYY-MM-DD". The zero time renders as "0000-00-00",
// which the gateway reads as "as soon as possible".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "0000-00-00"
	}
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// TwoDigits renders the last two digits of n, zero padded ("7" -> "07", "2027" -> "27")
func TwoDigits(n int) string {
	if n < 0 {
		n = -n
	}
	return fmt.Sprintf("%02d", n%100)
}
