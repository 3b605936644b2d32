package model

import (
	"errors"
	"testing"
)

func TestAddCyclesClampsToMonthLength(t *testing.T) {
	cases := []struct {
		key  string
		unit Repeat
		k    int
		want string
	}{
		{"2024-01-31", RepeatMonthly, 1, "2024-02-29"},
		{"2025-01-31", RepeatMonthly, 1, "2025-02-28"},
		{"2024-01-31", RepeatMonthly, 2, "2024-03-31"},
		{"2024-11-30", RepeatMonthly, 3, "2025-02-28"},
		{"2024-02-29", RepeatYearly, 1, "2025-02-28"},
		{"2024-02-29", RepeatYearly, 4, "2028-02-29"},
		{"2024-12-30", RepeatWeekly, 1, "2025-01-06"},
		{"2024-02-28", RepeatDaily, 2, "2024-03-01"},
	}
	for _, tc := range cases {
		got, err := AddCycles(tc.key, tc.unit, tc.k)
		if err != nil {
			t.Fatalf("AddCycles(%s, %s, %d): %v", tc.key, tc.unit, tc.k, err)
		}
		if got != tc.want {
			t.Fatalf("AddCycles(%s, %s, %d) = %s, want %s", tc.key, tc.unit, tc.k, got, tc.want)
		}
	}
}

func TestNextCycleKeyRejectsNone(t *testing.T) {
	if _, err := NextCycleKey("2024-01-01", RepeatNone); !errors.Is(err, ErrInvalidRepeat) {
		t.Fatalf("expected ErrInvalidRepeat, got %v", err)
	}
	if _, err := NextCycleKey("2024-13-01", RepeatMonthly); !errors.Is(err, ErrInvalidDateKey) {
		t.Fatalf("expected ErrInvalidDateKey, got %v", err)
	}
}

func TestCyclesElapsedLandsOnLastStartBeforeToday(t *testing.T) {
	cases := []struct {
		anchor, today string
		unit          Repeat
		want          int
		start         string
	}{
		{"2024-01-31", "2024-04-15", RepeatMonthly, 2, "2024-03-31"},
		{"2024-01-31", "2024-03-30", RepeatMonthly, 1, "2024-02-29"},
		{"2024-01-31", "2024-01-31", RepeatMonthly, 0, "2024-01-31"},
		{"2024-01-31", "2024-02-28", RepeatMonthly, 0, "2024-01-31"},
		{"2024-03-10", "2024-01-01", RepeatMonthly, 0, "2024-03-10"},
		{"2020-06-15", "2024-06-14", RepeatYearly, 3, "2023-06-15"},
		{"2020-06-15", "2024-06-15", RepeatYearly, 4, "2024-06-15"},
		{"2024-01-01", "2024-01-20", RepeatWeekly, 2, "2024-01-15"},
	}
	for _, tc := range cases {
		k, err := CyclesElapsed(tc.anchor, tc.today, tc.unit)
		if err != nil {
			t.Fatalf("CyclesElapsed(%s, %s): %v", tc.anchor, tc.today, err)
		}
		if k != tc.want {
			t.Fatalf("CyclesElapsed(%s, %s, %s) = %d, want %d", tc.anchor, tc.today, tc.unit, k, tc.want)
		}
		start, err := AddCycles(tc.anchor, tc.unit, k)
		if err != nil {
			t.Fatalf("AddCycles: %v", err)
		}
		if start != tc.start {
			t.Fatalf("cycle start = %s, want %s", start, tc.start)
		}
	}
}

func TestParseRepeat(t *testing.T) {
	if r, err := ParseRepeat(" Monthly "); err != nil || r != RepeatMonthly {
		t.Fatalf("ParseRepeat monthly = %q, %v", r, err)
	}
	if r, err := ParseRepeat(""); err != nil || r != RepeatNone {
		t.Fatalf("ParseRepeat empty = %q, %v", r, err)
	}
	if _, err := ParseRepeat("hourly"); !errors.Is(err, ErrInvalidRepeat) {
		t.Fatalf("expected ErrInvalidRepeat, got %v", err)
	}
}
