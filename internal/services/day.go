package services

import (
	"fmt"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

// Day is a calendar date without a time zone.
type Day struct {
	year  int
	month time.Month
	day   int
}

func NewDay(year int, month time.Month, day int) Day {
	return DayOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DayOf returns the calendar date of value in its own location.
func DayOf(value time.Time) Day {
	year, month, day := value.Date()
	return Day{year: year, month: month, day: day}
}

// DayIn returns the calendar date of the instant value as observed in location.
func DayIn(value time.Time, location *time.Location) Day {
	if location == nil {
		location = time.UTC
	}
	return DayOf(value.In(location))
}

func ParseDay(raw string) (Day, error) {
	parsed, err := time.Parse(DayLayout, strings.TrimSpace(raw))
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", raw, err)
	}
	return DayOf(parsed), nil
}

func (day Day) IsZero() bool {
	return day == Day{}
}

func (day Day) Year() int { return day.year }

func (day Day) Month() time.Month { return day.month }

func (day Day) DayOfMonth() int { return day.day }

func (day Day) Weekday() time.Weekday {
	return day.Time().Weekday()
}

// Time returns midnight UTC, the representation used by date-only columns.
func (day Day) Time() time.Time {
	return time.Date(day.year, day.month, day.day, 0, 0, 0, 0, time.UTC)
}

// In returns local midnight of the day in location.
func (day Day) In(location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	return time.Date(day.year, day.month, day.day, 0, 0, 0, 0, location)
}

// Range returns the storage bounds [day, day+1) for range queries.
func (day Day) Range() (time.Time, time.Time) {
	start := day.Time()
	return start, start.AddDate(0, 0, 1)
}

func (day Day) AddDays(days int) Day {
	return DayOf(day.Time().AddDate(0, 0, days))
}

func (day Day) Compare(other Day) int {
	switch {
	case day.year != other.year:
		return compareInts(day.year, other.year)
	case day.month != other.month:
		return compareInts(int(day.month), int(other.month))
	default:
		return compareInts(day.day, other.day)
	}
}

func (day Day) Before(other Day) bool { return day.Compare(other) < 0 }

func (day Day) After(other Day) bool { return day.Compare(other) > 0 }

func (day Day) Equal(other Day) bool { return day == other }

func (day Day) String() string {
	if day.IsZero() {
		return ""
	}
	return day.Time().Format(DayLayout)
}

func (day Day) MarshalText() ([]byte, error) {
	return []byte(day.String()), nil
}

func (day *Day) UnmarshalText(raw []byte) error {
	if len(strings.TrimSpace(string(raw))) == 0 {
		*day = Day{}
		return nil
	}
	parsed, err := ParseDay(string(raw))
	if err != nil {
		return err
	}
	*day = parsed
	return nil
}

// DayPointer converts an optional stored date into its calendar day.
func DayPointer(value *time.Time) (Day, bool) {
	if value == nil || value.IsZero() {
		return Day{}, false
	}
	return DayOf(*value), true
}

func compareInts(left int, right int) int {
	switch {
	case left < right:
		return -1
	case left > right:
		return 1
	default:
		return 0
	}
}
