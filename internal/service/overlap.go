package service

import (
	"fmt"
	"strings"
)

// ParseClock converts an "HH:MM" (or "H:MM") wall-clock string into minutes
// since midnight.  Hours must be 0-23 and minutes 0-59; anything else yields
// an error wrapping ErrInvalidTimeFormat.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	h := atoiDigits(hh)
	m := atoiDigits(mm)
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidTimeFormat, s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share an
// instant.  Intervals that only touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// OverlapsClock is Overlaps over "HH:MM" strings.
func OverlapsClock(aStart, aEnd, bStart, bEnd string) (bool, error) {
	var mins [4]int
	for i, s := range [4]string{aStart, aEnd, bStart, bEnd} {
		m, err := ParseClock(s)
		if err != nil {
			return false, err
		}
		mins[i] = m
	}
	return Overlaps(mins[0], mins[1], mins[2], mins[3]), nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func atoiDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
