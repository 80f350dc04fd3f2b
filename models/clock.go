package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ParseDate reads a YYYY-MM-DD calendar date.
func ParseDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return datatypes.Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return datatypes.Date(t), nil
}

// ParseClock reads a HH:mm (or HH:mm:ss) time of day.
func ParseClock(s string) (datatypes.Time, error) {
	for _, layout := range []string{ClockLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("invalid time %q (want HH:mm)", s)
}

func DateKey(d datatypes.Date) string { return time.Time(d).Format(DateLayout) }

func Weekday(d datatypes.Date) time.Weekday { return time.Time(d).Weekday() }

// Day is the length of a calendar day expressed as a time of day.
const Day = datatypes.Time(24 * time.Hour)

func AddMinutes(t datatypes.Time, minutes int) datatypes.Time {
	return t + datatypes.Time(time.Duration(minutes)*time.Minute)
}

func ClockString(t datatypes.Time) string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}
