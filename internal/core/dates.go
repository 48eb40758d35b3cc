package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	YearMonthLayout = "2006-01"

	MinYear = 1
	MaxYear = 9999
)

// Date is a calendar day. The wrapped time is always midnight UTC.
type Date struct {
	time.Time
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate accepts ISO dates (2006-01-02) and the day-first form (02/01/2006).
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, "02/01/2006", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	// Stored dates are written as four-digit years.
	if y := d.Year(); y < MinYear || y > MaxYear {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidDate, y)
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// YearMonth returns the calendar month the date falls in.
func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Time.Year(), Month: d.Time.Month()}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// AddMonths moves the date n calendar months, clamping the day to the
// length of the target month (Jan 31 + 1 month = Feb 28 or 29).
func (d Date) AddMonths(n int) Date {
	target := d.YearMonth().Add(n)
	return target.Day(d.Day())
}

// AddDays moves the date n days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

// MonthsBetween returns the number of completed calendar months from `from`
// to `to`. A month only counts once the day of month has been reached, so
// Jan 15 -> Feb 14 is 0 and Jan 15 -> Feb 15 is 1. The result is negative
// when `to` precedes `from`.
func MonthsBetween(from, to Date) int {
	months := (to.Year()-from.Year())*12 + (to.Month() - from.Month())
	switch {
	case months > 0 && to.Day() < from.Day() && to.Day() < DaysIn(to.YearMonth()):
		months--
	case months < 0 && to.Day() > from.Day():
		months++
	}
	return months
}

// DaysIn returns the number of days of the month.
func DaysIn(ym YearMonth) int {
	return time.Date(ym.Year, ym.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NewYearMonth builds a normalised YearMonth (month 13 rolls into January of the next year).
func NewYearMonth(year int, month time.Month) YearMonth {
	return YearMonth{Year: year, Month: month}.Add(0)
}

// ParseYearMonth parses "2006-01".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse(YearMonthLayout, strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: month %q", ErrInvalidMonth, s)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// Add moves n months, rolling the year over as needed.
func (ym YearMonth) Add(n int) YearMonth {
	idx := ym.Year*12 + int(ym.Month) - 1 + n
	year := idx / 12
	month := idx % 12
	if month < 0 {
		month += 12
		year--
	}
	return YearMonth{Year: year, Month: time.Month(month + 1)}
}

// Day returns the given day of the month, clamped to the month's last day.
func (ym YearMonth) Day(day int) Date {
	if last := DaysIn(ym); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(ym.Year, int(ym.Month), day)
}

// First returns the first day of the month.
func (ym YearMonth) First() Date {
	return ym.Day(1)
}

// Contains reports whether d falls in the month.
func (ym YearMonth) Contains(d Date) bool {
	return !d.IsZero() && d.YearMonth() == ym
}

func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

func (ym YearMonth) Validate() error {
	if ym.Month < time.January || ym.Month > time.December {
		return ErrInvalidMonth
	}
	if ym.Year < 1 {
		return fmt.Errorf("%w: year %d", ErrInvalidDate, ym.Year)
	}
	return nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func (ym YearMonth) MarshalJSON() ([]byte, error) {
	if ym.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(ym.String())
}

func (ym *YearMonth) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}
	if s == "" {
		*ym = YearMonth{}
		return nil
	}
	parsed, err := ParseYearMonth(s)
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}
