/*
cost.go - Staff cost aggregation with fallback policy

PURPOSE:
  Computes a staff member's total cost for the reporting period in the
  reporting currency. The base component follows the CostSource policy; the
  first matching branch wins. Recurring bonuses and overtime are added on
  top regardless of branch.

POLICY (CostPayRecordsThenProfile, the default):
  1. Pay records inside the period (or whose explicit pay window intersects
     it): sum signed amounts - deductions subtract, everything else adds.
  2. Otherwise the profile base salary, normalized to a monthly figure.
  3. Otherwise zero. Absence of cost data is a valid, reportable state
     surfaced upstream as a "no pay data" advisory, never a failure.
*/
package engine

import "github.com/shopspring/decimal"

// RatedHours is a block of worked hours carrying the rate they were worked
// at. Used by the schedule-hours cost variant; hours without a rate cannot
// be priced and cost zero.
type RatedHours struct {
	Hours decimal.Decimal
	Rate  *Money
}

// CostInput bundles one staff member's cost-relevant records. Slices are
// pre-filtered by staff but not by period: period filtering is this
// package's job so the rules stay in one place.
type CostInput struct {
	Profile    *StaffProfile
	PayRecords []PayRecord
	Bonuses    []RecurringBonus
	Overtime   []OvertimeRecord
	RatedHours []RatedHours
}

// CostResult breaks the total down by component so the report can expose
// where a staff member's cost came from.
type CostResult struct {
	Total    decimal.Decimal
	Base     decimal.Decimal
	Bonuses  decimal.Decimal
	Overtime decimal.Decimal

	// HasPayData is true when a base cost source existed (pay records,
	// profile, or rated hours depending on policy).
	HasPayData bool
}

// CostAggregator computes period cost under a CostSource policy.
type CostAggregator struct {
	Source CostSource
	FX     Normalizer
}

// TotalCost returns the staff member's cost for the period in the reporting
// currency. It never fails: missing data degrades to zero components.
func (a CostAggregator) TotalCost(in CostInput, period Period) CostResult {
	var res CostResult
	res.Base, res.HasPayData = a.baseCost(in, period)

	for _, b := range in.Bonuses {
		if period.Overlaps(b.Start, b.End) {
			res.Bonuses = res.Bonuses.Add(a.FX.ToBase(b.Amount))
		}
	}

	for _, ot := range in.Overtime {
		if !period.Contains(ot.Date) || ot.HourlyRate == nil {
			continue
		}
		pay := Money{Amount: ot.Hours.Mul(ot.HourlyRate.Amount), Currency: ot.HourlyRate.Currency}
		res.Overtime = res.Overtime.Add(a.FX.ToBase(pay))
	}

	res.Total = res.Base.Add(res.Bonuses).Add(res.Overtime)
	return res
}

func (a CostAggregator) baseCost(in CostInput, period Period) (decimal.Decimal, bool) {
	switch a.Source {
	case CostProfileOnly:
		return a.profileCost(in.Profile)

	case CostScheduleHoursOnly:
		total := decimal.Zero
		any := false
		for _, rh := range in.RatedHours {
			if rh.Rate == nil || rh.Hours.IsZero() {
				continue
			}
			pay := Money{Amount: rh.Hours.Mul(rh.Rate.Amount), Currency: rh.Rate.Currency}
			total = total.Add(a.FX.ToBase(pay))
			any = true
		}
		return total, any

	default: // CostPayRecordsThenProfile
		total := decimal.Zero
		any := false
		for _, r := range in.PayRecords {
			if !r.InPeriod(period) {
				continue
			}
			signed := r.Type.Signed(a.FX.ToBase(r.Amount))
			total = total.Add(signed)
			any = true
		}
		if any {
			return total, true
		}
		return a.profileCost(in.Profile)
	}
}

func (a CostAggregator) profileCost(profile *StaffProfile) (decimal.Decimal, bool) {
	if profile == nil {
		return decimal.Zero, false
	}
	return a.FX.ToBase(profile.MonthlySalary()), true
}
