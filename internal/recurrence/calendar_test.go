package recurrence

import (
	"testing"
	"time"

	"pennywise/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 9, 30, 0, 0, time.UTC)
}

func TestStepDay(t *testing.T) {
	got := Step(date(2025, time.March, 10), 3, models.UnitDay)
	want := date(2025, time.March, 13)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestStepWeek(t *testing.T) {
	got := Step(date(2025, time.March, 10), 2, models.UnitWeek)
	want := date(2025, time.March, 24)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestStepMonthClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		want   time.Time
	}{
		{"jan 31 to feb 28", date(2025, time.January, 31), 1, date(2025, time.February, 28)},
		{"jan 31 to feb 29 leap year", date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{"mar 31 to apr 30", date(2025, time.March, 31), 1, date(2025, time.April, 30)},
		{"jan 31 to mar 31 skips short month", date(2025, time.January, 31), 2, date(2025, time.March, 31)},
		{"mid-month unaffected", date(2025, time.January, 15), 1, date(2025, time.February, 15)},
		{"year rollover", date(2025, time.November, 30), 3, date(2026, time.February, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Step(tt.start, tt.months, models.UnitMonth)
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestStepPreservesTimeOfDay(t *testing.T) {
	start := time.Date(2025, time.January, 31, 14, 45, 30, 0, time.UTC)
	got := Step(start, 1, models.UnitMonth)
	if got.Hour() != 14 || got.Minute() != 45 || got.Second() != 30 {
		t.Errorf("expected time of day 14:45:30, got %v", got)
	}
}

func TestAdjustedEndDateBorrowsClockTime(t *testing.T) {
	end := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, time.January, 5, 16, 20, 10, 0, time.UTC)

	got := adjustedEndDate(end, now, time.UTC)
	want := time.Date(2025, time.February, 1, 16, 20, 10, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
