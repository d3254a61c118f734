package recurrence

import (
	"time"

	"pennywise/internal/models"
)

// Step advances t by one recurrence step. Month steps clamp to the last
// valid day of the target month (Jan 31 + 1 month = Feb 28/29) instead of
// letting the overflow spill into the next month.
func Step(t time.Time, period int, unit models.RecurrenceUnit) time.Time {
	switch unit {
	case models.UnitDay:
		return t.AddDate(0, 0, period)
	case models.UnitWeek:
		return t.AddDate(0, 0, 7*period)
	case models.UnitMonth:
		return addMonths(t, period)
	}
	return t
}

// addMonths adds n months to t with day-of-month clamping. time.AddDate
// normalizes an out-of-range day into the following month, which is the
// wrong behavior for a monthly bill due on the 31st.
func addMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()

	total := int(month) - 1 + n
	year += total / 12
	month = time.Month(total%12 + 1)

	if max := daysIn(year, month); day > max {
		day = max
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// adjustedEndDate combines the rule's end date (stored midnight-normalized)
// with the time-of-day of now. An occurrence landing exactly on the end
// date must not be dropped just because the rule was created later in the
// day than the seed's timestamp; borrowing now's clock time makes the
// boundary mean "any occurrence on or before end-of-day endDate, measured
// at the moment of generation".
func adjustedEndDate(end, now time.Time, loc *time.Location) time.Time {
	return time.Date(end.Year(), end.Month(), end.Day(),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), loc)
}
