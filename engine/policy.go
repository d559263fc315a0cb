/*
policy.go - Policy switches selecting between historical engine variants

PURPOSE:
  Four historical renditions of this engine differed in which cost sources
  they consulted and how client revenue handled tax. Rather than hard-coding
  one variant, the engine exposes the union as a small flag set so each
  observed behavior is a parameterization of the same code paths.

SWITCHES:
  CostSource:  where a staff member's base cost comes from
  RevenueMode: gross MRR vs. MRR net of VAT
  ShareMode:   day-count vs. hour-count allocation weights
*/
package engine

// CostSource selects the base-cost policy for StaffCostAggregator.
type CostSource string

const (
	// CostPayRecordsThenProfile sums pay records in the period, falling
	// back to the profile base salary when none exist. Default.
	CostPayRecordsThenProfile CostSource = "pay_records_then_profile"

	// CostProfileOnly always derives base cost from the profile salary,
	// ignoring pay records.
	CostProfileOnly CostSource = "profile_only"

	// CostScheduleHoursOnly prices worked hours directly: pattern hour
	// contributions at the pattern's hourly rate. Unrated hours cost zero.
	CostScheduleHoursOnly CostSource = "schedule_hours_only"
)

// RevenueMode selects how client MRR becomes reportable revenue.
type RevenueMode string

const (
	// RevenueNetOfVAT divides tax-inclusive MRR by the fixed VAT factor.
	// Default.
	RevenueNetOfVAT RevenueMode = "net_of_vat"

	// RevenueGrossMRR reports MRR unchanged.
	RevenueGrossMRR RevenueMode = "gross_mrr"
)

// ShareMode selects the allocation weight unit.
type ShareMode string

const (
	ShareDays  ShareMode = "days"
	ShareHours ShareMode = "hours"
)

// Policy bundles the engine's behavior switches.
type Policy struct {
	CostSource  CostSource
	RevenueMode RevenueMode
	ShareMode   ShareMode
}

// DefaultPolicy reproduces the production variant: pay records with profile
// fallback, revenue net of VAT, day-count shares.
func DefaultPolicy() Policy {
	return Policy{
		CostSource:  CostPayRecordsThenProfile,
		RevenueMode: RevenueNetOfVAT,
		ShareMode:   ShareDays,
	}
}
