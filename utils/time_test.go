package utils

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	got, err := ParseClock("09:30")
	if err != nil {
		t.Fatalf("ParseClock failed: %v", err)
	}
	if got.Hour() != 9 || got.Minute() != 30 {
		t.Errorf("got %02d:%02d, want 09:30", got.Hour(), got.Minute())
	}

	for _, bad := range []string{"", "9:3", "25:00", "12:61", "noon", "12.30"} {
		if _, err := ParseClock(bad); err == nil {
			t.Errorf("ParseClock(%q) accepted invalid input", bad)
		}
	}
}

func TestClockOnDate(t *testing.T) {
	date := time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC)
	got, err := ClockOnDate(date, "14:45")
	if err != nil {
		t.Fatalf("ClockOnDate failed: %v", err)
	}
	want := time.Date(2025, time.September, 3, 14, 45, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := ClockOnDate(date, "24:01"); err == nil {
		t.Errorf("ClockOnDate accepted an invalid clock")
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-09-03")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if got.Year() != 2025 || got.Month() != time.September || got.Day() != 3 {
		t.Errorf("got %v, want 2025-09-03", got)
	}

	for _, bad := range []string{"", "03-09-2025", "2025/09/03", "2025-13-01"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) accepted invalid input", bad)
		}
	}
}
