/*
pattern.go - Recurring shift pattern resolution

PURPOSE:
  Computes how many share units (days or hours) a recurring shift pattern
  contributes within a reporting period. This is the weight source for
  proportional cost allocation.

ALGORITHM:
  1. Clip the pattern's effective window to the period. Empty clip → 0.
  2. Enumerate each calendar day of the clipped window.
  3. A day counts iff its weekday is in the pattern's weekday set AND the
     recurrence filter passes:
       weekly:   always
       biweekly: whole weeks since the pattern's original start are even
       monthly:  day-of-month equals the pattern start's day-of-month
  4. Day mode adds 1 per passing day; hour mode adds the per-shift duration.

EDGE CASES:
  - Pattern entirely before or after the period contributes 0.
  - A weekday the biweekly/monthly filter never admits contributes 0.
  - Degenerate same-day periods (start == end) are a one-day window.
  - Inverted pattern windows (end before start) contribute 0, not an error.
*/
package engine

import "github.com/shopspring/decimal"

// Resolver computes pattern contributions in the configured share mode.
type Resolver struct {
	Mode ShareMode
}

// Contribution returns the pattern's share units within the period.
func (r Resolver) Contribution(p RecurringShiftPattern, period Period) decimal.Decimal {
	days := r.ContributingDays(p, period)
	if len(days) == 0 {
		return decimal.Zero
	}
	if r.Mode == ShareHours {
		return p.ShiftHours().Mul(decimal.NewFromInt(int64(len(days))))
	}
	return decimal.NewFromInt(int64(len(days)))
}

// ContributingDays enumerates the calendar days on which the pattern fires
// within the period.
func (r Resolver) ContributingDays(p RecurringShiftPattern, period Period) []TimePoint {
	if period.IsEmpty() || len(p.Weekdays) == 0 {
		return nil
	}

	window := period.Clip(p.Start, p.End)
	if window.IsEmpty() {
		return nil
	}

	var days []TimePoint
	for _, day := range window.Days() {
		if !p.OnWeekday(day.Weekday()) {
			continue
		}
		if !recurrenceAdmits(p, day) {
			continue
		}
		days = append(days, day)
	}
	return days
}

// recurrenceAdmits applies the pattern's recurrence filter to a candidate
// day. The filter is anchored on the pattern's original start date, not the
// clipped window, so alternation stays stable across periods.
func recurrenceAdmits(p RecurringShiftPattern, day TimePoint) bool {
	switch p.Recurrence {
	case RecurBiweekly:
		weeks := DaysBetween(p.Start, day) / 7
		return weeks%2 == 0
	case RecurMonthly:
		return day.Day() == p.Start.Day()
	default: // weekly or unset
		return true
	}
}
