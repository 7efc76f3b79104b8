package employee

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with no time-of-day semantics. The zero value is
// an unset date and serializes as an empty string.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes out-of-range components the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate accepts YYYY-MM-DD or RFC3339. An empty value yields the zero Date.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, nil
	}
	if parsed, err := time.Parse(dateLayout, value); err == nil {
		return DateOf(parsed), nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return DateOf(parsed), nil
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	if d.IsZero() {
		return time.Time{}
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(dateLayout)
}

func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
