package utils

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2026-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Year() != 2026 || parsed.Month() != time.August || parsed.Day() != 31 {
		t.Errorf("unexpected date: %v", parsed)
	}
	if parsed.Hour() != 0 || parsed.Minute() != 0 {
		t.Errorf("expected midnight, got %v", parsed)
	}
	if parsed.Location() != time.Local {
		t.Errorf("expected local timezone, got %v", parsed.Location())
	}

	if _, err := ParseDate("31/08/2026"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	parsed, err := ParseDate("2026-01-05")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := FormatDate(parsed); got != "2026-01-05" {
		t.Errorf("expected round-trip, got %q", got)
	}
}

func TestDiffDays(t *testing.T) {
	day := func(s string) time.Time {
		parsed, err := ParseDate(s)
		if err != nil {
			t.Fatalf("bad test date %q: %v", s, err)
		}
		return parsed
	}

	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", day("2026-08-31"), day("2026-08-31"), 0},
		{"one day apart", day("2026-08-31"), day("2026-08-30"), 1},
		{"negative when a before b", day("2026-08-30"), day("2026-08-31"), -1},
		{"across a month boundary", day("2026-09-02"), day("2026-08-30"), 3},
		{"time of day is ignored", day("2026-08-31").Add(23 * time.Hour), day("2026-08-31"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DiffDays(tt.a, tt.b); got != tt.want {
				t.Errorf("DiffDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDateRange(t *testing.T) {
	end, err := ParseDate("2026-08-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	start, endStr := DateRange(end, 7)
	if start != "2026-08-25" {
		t.Errorf("expected start 2026-08-25, got %q", start)
	}
	if endStr != "2026-08-31" {
		t.Errorf("expected end 2026-08-31, got %q", endStr)
	}

	// A one-day window starts and ends on the same date
	start, endStr = DateRange(end, 1)
	if start != endStr {
		t.Errorf("expected single-day window, got %q..%q", start, endStr)
	}
}

func TestValidateTimeFormat(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59"}
	for _, v := range valid {
		if !ValidateTimeFormat(v) {
			t.Errorf("expected %q to be valid", v)
		}
	}

	invalid := []string{"", "24:00", "noon", "12:60"}
	for _, v := range invalid {
		if ValidateTimeFormat(v) {
			t.Errorf("expected %q to be invalid", v)
		}
	}
}

func TestValidateDateFormat(t *testing.T) {
	if !ValidateDateFormat("2026-08-31") {
		t.Error("expected valid date to pass")
	}

	invalid := []string{"", "2026-13-01", "08-31-2026", "yesterday"}
	for _, v := range invalid {
		if ValidateDateFormat(v) {
			t.Errorf("expected %q to be invalid", v)
		}
	}
}
