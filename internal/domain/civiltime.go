package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Meridiem is the AM/PM half of a 12-hour wall-clock reading.
type Meridiem string

const (
	AM Meridiem = "AM"
	PM Meridiem = "PM"
)

// CivilOffset is the fixed distance of the operator's wall clock from UTC.
type CivilOffset time.Duration

// DefaultCivilOffset is +05:30, the offset the console has always worked in.
const DefaultCivilOffset = CivilOffset(5*time.Hour + 30*time.Minute)

// ParseCivilOffset accepts "+05:30", "-04:00", "+0530", "Z" or "UTC".
func ParseCivilOffset(s string) (CivilOffset, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" || s == "Z" || s == "UTC" {
		return 0, nil
	}

	sign := time.Duration(1)
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	default:
		return 0, fmt.Errorf("parse civil offset %q: missing sign", s)
	}

	hh, mm, ok := strings.Cut(s, ":")
	if !ok && len(s) == 4 {
		hh, mm = s[:2], s[2:]
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 14 {
		return 0, fmt.Errorf("parse civil offset %q: invalid hours", s)
	}
	m := 0
	if mm != "" {
		m, err = strconv.Atoi(mm)
		if err != nil || m < 0 || m > 59 {
			return 0, fmt.Errorf("parse civil offset %q: invalid minutes", s)
		}
	}

	return CivilOffset(sign * (time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)), nil
}

func (o CivilOffset) String() string {
	d := time.Duration(o)
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	return fmt.Sprintf("%s%02d:%02d", sign, int(d.Hours()), int(d.Minutes())%60)
}

// CivilTime is a wall-clock reading in the operator's civil offset.
// DayOffset counts civil days from the route's start day.
type CivilTime struct {
	Hour      int      `json:"hour"`
	Minute    int      `json:"minute"`
	Meridiem  Meridiem `json:"meridiem"`
	DayOffset int      `json:"day_offset"`
}

// Validate applies the console's form constraints.
func (c CivilTime) Validate() error {
	if c.Hour < 1 || c.Hour > 12 {
		return fmt.Errorf("hour must be between 1 and 12, got %d", c.Hour)
	}
	if c.Minute < 0 || c.Minute > 59 {
		return fmt.Errorf("minute must be between 0 and 59, got %d", c.Minute)
	}
	if c.Meridiem != AM && c.Meridiem != PM {
		return fmt.Errorf("meridiem must be AM or PM, got %q", c.Meridiem)
	}
	if c.DayOffset < 0 {
		return fmt.Errorf("day offset must not be negative, got %d", c.DayOffset)
	}
	return nil
}

func (c CivilTime) hour24() int {
	h := c.Hour % 12
	if c.Meridiem == PM {
		h += 12
	}
	return h
}

func (c CivilTime) String() string {
	s := fmt.Sprintf("%02d:%02d %s", c.Hour, c.Minute, c.Meridiem)
	if c.DayOffset > 0 {
		s += fmt.Sprintf(" (+%dd)", c.DayOffset)
	}
	return s
}

// ToInstant converts a civil reading into the absolute instant it denotes.
// The reading is composed on epoch day DayOffset and shifted back by the offset.
func ToInstant(c CivilTime, offset CivilOffset) time.Time {
	civil := time.Date(1970, time.January, 1+c.DayOffset, c.hour24(), c.Minute, 0, 0, time.UTC)
	return civil.Add(-time.Duration(offset))
}

// FromInstant is the inverse of ToInstant.
func FromInstant(t time.Time, offset CivilOffset) CivilTime {
	civil := t.UTC().Add(time.Duration(offset))

	h := civil.Hour()
	m := AM
	if h >= 12 {
		m = PM
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}

	return CivilTime{
		Hour:      h12,
		Minute:    civil.Minute(),
		Meridiem:  m,
		DayOffset: int(floorDiv(civil.Unix(), secondsPerDay)),
	}
}

// civilDay returns the epoch-day index of t on the civil calendar.
func civilDay(t time.Time, offset CivilOffset) int64 {
	return floorDiv(t.UTC().Add(time.Duration(offset)).Unix(), secondsPerDay)
}

// dayOffsetFrom counts civil days between the start's day and t's day.
func dayOffsetFrom(start, t time.Time, offset CivilOffset) int {
	return int(civilDay(t, offset) - civilDay(start, offset))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

var civilLayouts = []string{"3:04 PM", "3:04PM", "15:04", "15:04:05"}

// ParseCivilTime reads an operator-typed wall-clock string such as "07:15 PM" or "19:15".
// "19:15:00" is accepted; a non-zero seconds field is an error.
func ParseCivilTime(s string, dayOffset int) (CivilTime, error) {
	s = strings.ToUpper(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return CivilTime{}, errors.New("empty time")
	}

	for _, layout := range civilLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		// CivilTime has minute resolution.
		if t.Second() != 0 {
			return CivilTime{}, fmt.Errorf("time %q has a seconds component, only hours and minutes are accepted", s)
		}
		c := FromInstant(t.AddDate(1970-t.Year(), 0, 0), 0)
		c.DayOffset = dayOffset
		if err := c.Validate(); err != nil {
			return CivilTime{}, err
		}
		return c, nil
	}

	return CivilTime{}, fmt.Errorf("unrecognised time %q", s)
}

var startingTimeLayouts = []string{
	"15:04:05.999999999Z07:00",
	"15:04:05Z07:00",
	"15:04:05",
	"15:04",
	time.RFC3339Nano,
}

// ParseStartingTime reads the backend's bare time-of-day starting_time
// and returns the route's start instant on civil day 0.
func ParseStartingTime(s string, offset CivilOffset) (time.Time, error) {
	raw := strings.TrimSpace(s)
	for _, layout := range startingTimeLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		u := t.UTC()
		tod := time.Date(1970, time.January, 1, u.Hour(), u.Minute(), u.Second(), u.Nanosecond(), time.UTC)
		return normalizeStart(tod, offset), nil
	}

	return time.Time{}, &TimeFormatError{Field: "starting", Value: s}
}

// FormatStartingTime renders the start instant as the backend's UTC time of day.
func FormatStartingTime(t time.Time) string {
	return t.UTC().Format("15:04:05") + "Z"
}

// StartInstant converts a route's civil start reading, always on day 0.
func StartInstant(c CivilTime, offset CivilOffset) time.Time {
	c.DayOffset = 0
	return ToInstant(c, offset)
}

func normalizeStart(t time.Time, offset CivilOffset) time.Time {
	return t.Add(-time.Duration(civilDay(t, offset)) * 24 * time.Hour)
}
