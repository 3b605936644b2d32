package model

import (
	"errors"
	"fmt"
	"time"
)

const DayKeyLayout = "2006-01-02"

var ErrInvalidDateKey = errors.New("model: invalid date key")

// DayKey formats t as YYYY-MM-DD using t's own location. Callers pass local
// time; converting to UTC first would shift the calendar day near midnight.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DayKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	return t, nil
}

func IsDayKey(key string) bool {
	_, err := time.Parse(DayKeyLayout, key)
	return err == nil
}

// AddDays shifts key by n calendar days. The arithmetic runs at noon UTC so
// DST transitions never skip or repeat a day.
func AddDays(key string, n int) (string, error) {
	t, err := ParseDayKey(key, time.UTC)
	if err != nil {
		return "", err
	}
	return DayKey(t.Add(12*time.Hour).AddDate(0, 0, n)), nil
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b string) (int, error) {
	ta, err := ParseDayKey(a, time.UTC)
	if err != nil {
		return 0, err
	}
	tb, err := ParseDayKey(b, time.UTC)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
