package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the largest value Clock returns ("24:00").
const MinutesPerDay = 24 * 60

// DateLayout is the wire and storage layout of booking dates.
const DateLayout = "2006-01-02"

var (
	clockRe = regexp.MustCompile(`^(\d{1,2})(?:[:.hH]?)(\d{2})$`)
	slotRe  = regexp.MustCompile(`(?i)^(.+?)\s*(?:-|–|\bto\b)\s*(.+)$`)
)

// Clock parses a time of day such as "9:00", "09:00", "0900" or "24:00"
// into minutes since midnight.
func Clock(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("unable to parse time of day: %q", raw)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if minute > 59 || hour > 24 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("time of day out of range: %q", raw)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Date parses a YYYY-MM-DD date as midnight in loc.
func Date(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q: %w", raw, err)
	}
	return d, nil
}

// Slot splits a range such as "16:00-17:00" or "9:00 to 10:30" into its
// start and end in minutes since midnight.
func Slot(raw string) (start, end int, err error) {
	m := slotRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, 0, fmt.Errorf("unable to parse slot: %q", raw)
	}
	if start, err = Clock(m[1]); err != nil {
		return 0, 0, err
	}
	if end, err = Clock(m[2]); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
