// Package timeutil provides minute-granular wall-clock time arithmetic for
// weekly availability windows. Times are "HH:MM" 24-hour strings; a single-digit
// hour is accepted on input and normalized to the zero-padded canonical form.
package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrBadFormat  = errors.New("invalid time format")
	ErrBadOrder   = errors.New("start time must be before end time")
	ErrOutOfRange = errors.New("time exceeds end of day")
)

const MinutesPerDay = 24 * 60

var timePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])$`)

// ParseMinutes converts an "HH:MM" string into minutes since midnight.
func ParseMinutes(s string) (int, error) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("%w: %q (expected HH:MM, 24-hour)", ErrBadFormat, s)
	}
	hour, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return hour*60 + min, nil
}

// FormatMinutes renders minutes since midnight as zero-padded "HH:MM".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Canonical normalizes a time string to the zero-padded form ("9:30" -> "09:30").
func Canonical(s string) (string, error) {
	m, err := ParseMinutes(s)
	if err != nil {
		return "", err
	}
	return FormatMinutes(m), nil
}

// ValidateOrder fails when start is not strictly before end. Zero-length
// windows are rejected.
func ValidateOrder(start, end string) error {
	s, err := ParseMinutes(start)
	if err != nil {
		return err
	}
	e, err := ParseMinutes(end)
	if err != nil {
		return err
	}
	if s >= e {
		return fmt.Errorf("%w: %s >= %s", ErrBadOrder, start, end)
	}
	return nil
}

// Overlaps reports whether two ranges share any non-empty intersection.
// Ranges are half-open for this check: touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// Contains reports whether the inner range lies entirely within the outer
// range, touching endpoints included. A staff slot must Contain the requested
// window to serve it, not merely overlap it.
func Contains(outerStart, outerEnd, innerStart, innerEnd int) bool {
	return outerStart <= innerStart && innerEnd <= outerEnd
}

// AddMinutes advances an "HH:MM" time by mins. The result must stay strictly
// before 24:00; there is no day rollover.
func AddMinutes(s string, mins int) (string, error) {
	start, err := ParseMinutes(s)
	if err != nil {
		return "", err
	}
	end := start + mins
	if end >= MinutesPerDay {
		return "", fmt.Errorf("%w: %s + %dm", ErrOutOfRange, s, mins)
	}
	return FormatMinutes(end), nil
}
