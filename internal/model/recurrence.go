package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Repeat string

const (
	RepeatNone    Repeat = "none"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
	RepeatYearly  Repeat = "yearly"
)

var ErrInvalidRepeat = errors.New("model: invalid repeat rule")

func (r Repeat) IsValid() bool {
	switch r {
	case "", RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	default:
		return false
	}
}

// Normalize maps the empty value to RepeatNone.
func (r Repeat) Normalize() Repeat {
	if r == "" {
		return RepeatNone
	}
	return r
}

// IsShortCycle reports the rules that split on completion.
func (r Repeat) IsShortCycle() bool {
	return r == RepeatDaily || r == RepeatWeekly
}

// IsCycle reports the rules advanced by the recurrence pass.
func (r Repeat) IsCycle() bool {
	return r == RepeatMonthly || r == RepeatYearly
}

func ParseRepeat(s string) (Repeat, error) {
	r := Repeat(strings.ToLower(strings.TrimSpace(s))).Normalize()
	if !r.IsValid() {
		return RepeatNone, fmt.Errorf("%w: %q", ErrInvalidRepeat, s)
	}
	return r, nil
}

// AddCycles returns the start of the k-th cycle after key. Month and year
// steps keep key's day-of-month and clamp it to the length of the target
// month, so Jan 31 +1 month is Feb 28 (or 29) and +2 months is Mar 31.
func AddCycles(key string, unit Repeat, k int) (string, error) {
	t, err := ParseDayKey(key, time.UTC)
	if err != nil {
		return "", err
	}
	y, m, d := t.Date()
	switch unit.Normalize() {
	case RepeatDaily:
		return AddDays(key, k)
	case RepeatWeekly:
		return AddDays(key, 7*k)
	case RepeatMonthly:
		total := y*12 + int(m-1) + k
		ny, nm := floorDiv(total, 12), time.Month(floorMod(total, 12)+1)
		return clampedKey(ny, nm, d), nil
	case RepeatYearly:
		return clampedKey(y+k, m, d), nil
	default:
		return "", fmt.Errorf("%w: %q has no cycle", ErrInvalidRepeat, unit)
	}
}

func NextCycleKey(key string, unit Repeat) (string, error) {
	return AddCycles(key, unit, 1)
}

// CyclesElapsed returns the largest k >= 0 such that AddCycles(anchor, unit, k)
// is on or before today.
func CyclesElapsed(anchor, today string, unit Repeat) (int, error) {
	a, err := ParseDayKey(anchor, time.UTC)
	if err != nil {
		return 0, err
	}
	t, err := ParseDayKey(today, time.UTC)
	if err != nil {
		return 0, err
	}
	if today <= anchor {
		return 0, nil
	}
	ay, am, _ := a.Date()
	ty, tm, _ := t.Date()

	var k int
	switch unit.Normalize() {
	case RepeatDaily:
		return DaysBetween(anchor, today)
	case RepeatWeekly:
		days, err := DaysBetween(anchor, today)
		if err != nil {
			return 0, err
		}
		return days / 7, nil
	case RepeatMonthly:
		k = (ty-ay)*12 + int(tm-am)
	case RepeatYearly:
		k = ty - ay
	default:
		return 0, fmt.Errorf("%w: %q has no cycle", ErrInvalidRepeat, unit)
	}
	start, err := AddCycles(anchor, unit, k)
	if err != nil {
		return 0, err
	}
	if start > today {
		k--
	}
	return max(k, 0), nil
}

func clampedKey(y int, m time.Month, d int) string {
	d = min(d, daysIn(y, m))
	return DayKey(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
