package contract

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidDate is returned for unparseable date inputs and inverted ranges.
var ErrInvalidDate = errors.New("invalid date")

// Accepted calendar layouts, tried in order. Dates without an explicit zone
// are interpreted as UTC.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// DateRange is an inclusive timestamp range with From <= To.
type DateRange struct {
	From uint64
	To   uint64
}

// ParseDateRange parses two date inputs into a DateRange, rejecting an
// inverted range.
func ParseDateRange(from, to string) (DateRange, error) {
	fromTS, err := ParseTime(from)
	if err != nil {
		return DateRange{}, err
	}
	toTS, err := ParseTime(to)
	if err != nil {
		return DateRange{}, err
	}
	if fromTS > toTS {
		return DateRange{}, fmt.Errorf("%w: from %q is after to %q", ErrInvalidDate, from, to)
	}
	return DateRange{From: fromTS, To: toTS}, nil
}

// ParseTime parses a single date input: either a raw Unix epoch second value
// ("1672531200") or a calendar date/time in one of the accepted layouts.
func ParseTime(s string) (uint64, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidDate)
	}
	if ts, err := strconv.ParseUint(s, 10, 64); err == nil {
		return ts, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return uint64(t.Unix()), nil
		}
	}
	return 0, fmt.Errorf("%w: %q is neither an epoch timestamp nor a calendar date", ErrInvalidDate, s)
}
