package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/artin59/3311-Project-sub001/internal/model"
	"github.com/artin59/3311-Project-sub001/internal/parse"
)

// TimeOfDay is a wall-clock time as minutes since midnight.
type TimeOfDay int

// EndOfDay is 24:00, the latest valid end of a booking.
const EndOfDay TimeOfDay = parse.MinutesPerDay

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	m, err := parse.Clock(s)
	if err != nil {
		return 0, err
	}
	return TimeOfDay(m), nil
}

func (t TimeOfDay) String() string {
	return parse.FormatClock(int(t))
}

// TimeRange is the half-open interval [Start, End) on a single date.
type TimeRange struct {
	Start TimeOfDay
	End   TimeOfDay
}

// NewTimeRange validates that the range is non-empty and fits in one day.
func NewTimeRange(start, end TimeOfDay) (TimeRange, error) {
	if start < 0 || end > EndOfDay {
		return TimeRange{}, fmt.Errorf("range %s-%s does not fit in one day", start, end)
	}
	if end <= start {
		return TimeRange{}, fmt.Errorf("range %s-%s ends before it starts", start, end)
	}
	return TimeRange{Start: start, End: end}, nil
}

// ParseTimeRange parses two "HH:MM" strings into a validated range.
func ParseTimeRange(start, end string) (TimeRange, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return TimeRange{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return TimeRange{}, err
	}
	return NewTimeRange(s, e)
}

// ParseSlot parses a single range string such as "16:00-17:00".
func ParseSlot(raw string) (TimeRange, error) {
	s, e, err := parse.Slot(raw)
	if err != nil {
		return TimeRange{}, err
	}
	return NewTimeRange(TimeOfDay(s), TimeOfDay(e))
}

// Overlaps reports whether two half-open ranges share any instant.
// A range ending at 17:00 does not overlap one starting at 17:00.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start < o.End && o.Start < r.End
}

// Minutes is the length of the range.
func (r TimeRange) Minutes() int {
	return int(r.End - r.Start)
}

// Hours is the billable length: whole hours rounded up, never less than one.
func (r TimeRange) Hours() int {
	h := (r.Minutes() + 59) / 60
	if h < 1 {
		return 1
	}
	return h
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Overlaps is the free-function form of TimeRange.Overlaps.
func Overlaps(a, b TimeRange) bool {
	return a.Overlaps(b)
}

// recordRange reads the slot of a stored booking. A missing end time
// means one hour after the start.
func recordRange(b model.Booking) (TimeRange, error) {
	start, err := ParseTimeOfDay(b.StartTime)
	if err != nil {
		return TimeRange{}, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	if strings.TrimSpace(b.EndTime) == "" {
		return TimeRange{Start: start, End: start + 60}, nil
	}
	end, err := ParseTimeOfDay(b.EndTime)
	if err != nil {
		return TimeRange{}, fmt.Errorf("booking %s: %w", b.ID, err)
	}
	if end <= start {
		return TimeRange{}, fmt.Errorf("booking %s ends at %s before it starts at %s", b.ID, end, start)
	}
	return TimeRange{Start: start, End: end}, nil
}

// instant places a time of day on a date in loc.
func instant(date string, t TimeOfDay, loc *time.Location) (time.Time, error) {
	d, err := parse.Date(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, int(t), 0, 0, d.Location()), nil
}
