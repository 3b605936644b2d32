package model

import (
	"testing"
	"time"
)

func TestDayKeyUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	// 2024-03-10 23:30 UTC is already the 11th at UTC+9.
	instant := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)
	if got := DayKey(instant.In(loc)); got != "2024-03-11" {
		t.Fatalf("local day key = %s", got)
	}
	if got := DayKey(instant); got != "2024-03-10" {
		t.Fatalf("utc day key = %s", got)
	}
}

func TestAddDaysAcrossDST(t *testing.T) {
	got, err := AddDays("2024-03-09", 2)
	if err != nil {
		t.Fatalf("add days: %v", err)
	}
	if got != "2024-03-11" {
		t.Fatalf("AddDays = %s", got)
	}
	got, err = AddDays("2024-03-01", -1)
	if err != nil || got != "2024-02-29" {
		t.Fatalf("AddDays back = %s, %v", got, err)
	}
}

func TestDaysBetween(t *testing.T) {
	n, err := DaysBetween("2024-02-27", "2024-03-02")
	if err != nil || n != 4 {
		t.Fatalf("DaysBetween = %d, %v", n, err)
	}
	if IsDayKey("2024-2-1") {
		t.Fatalf("expected unpadded key to be rejected")
	}
}
