package util

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2025, 4, 9, 17, 42, 3, 12, time.UTC)
	got := StartOfDay(ts)
	want := time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC)

	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestAddDays_CrossesMonthBoundary(t *testing.T) {
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	got := AddDays(start, 30)
	want := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)

	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestOnOrBefore(t *testing.T) {
	due := time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		paid time.Time
		want bool
	}{
		{"day before", time.Date(2025, 4, 8, 23, 0, 0, 0, time.UTC), true},
		{"same day, late in the evening", time.Date(2025, 4, 9, 23, 59, 0, 0, time.UTC), true},
		{"day after, early morning", time.Date(2025, 4, 10, 0, 1, 0, 0, time.UTC), false},
	}

	for _, tc := range cases {
		if got := OnOrBefore(tc.paid, due); got != tc.want {
			t.Errorf("%s: OnOrBefore = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMonthBounds_DecemberWrapsYear(t *testing.T) {
	start, end := MonthBounds(2024, time.December)

	if start != time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("unexpected start %v", start)
	}
	if end != time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("unexpected end %v", end)
	}
}
