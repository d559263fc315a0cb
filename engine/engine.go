/*
engine.go - Top-level composition of the allocation pipeline

PURPOSE:
  Wires the leaf components into a single BuildReport call:

    patterns + schedules → per-staff per-client share units   (pattern.go)
    pay records + profiles + bonuses + overtime → staff cost  (cost.go)
    cost × share proportions → per-client allocations         (allocate.go)
    allocations + client revenue → profitability report       (report.go)

  BuildReport is a pure function of ReportInput: same inputs, same report.
  All fetching (records, exchange rates) happens before this call; the
  engine has no suspension points and never blocks.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ReportInput is the complete, already-fetched input set for one report.
// The rate table is injected data, possibly the fallback; RatesStale says
// which, and only affects the advisory flags.
type ReportInput struct {
	Period     Period
	Clients    []Client
	Patterns   []RecurringShiftPattern
	Schedules  []ScheduleEntry
	PayRecords []PayRecord
	Bonuses    []RecurringBonus
	Overtime   []OvertimeRecord
	Profiles   []StaffProfile
	Rates      RateTable
	RatesStale bool
}

// Engine computes allocation reports under a fixed policy and reporting
// currency. The zero value is not usable; construct with New.
type Engine struct {
	policy Policy
	base   string
}

func New(base string, policy Policy) Engine {
	return Engine{policy: policy, base: base}
}

// Policy returns the engine's behavior switches.
func (e Engine) Policy() Policy { return e.policy }

// BaseCurrency returns the reporting currency.
func (e Engine) BaseCurrency() string { return e.base }

// BuildReport runs the full pipeline. It never returns an error: degraded
// inputs degrade the report (zero rows, advisory flags), they do not abort
// it.
func (e Engine) BuildReport(in ReportInput) Report {
	fx := NewNormalizer(e.base, in.Rates)
	resolver := Resolver{Mode: e.policy.ShareMode}
	hourResolver := Resolver{Mode: ShareHours}
	costAgg := CostAggregator{Source: e.policy.CostSource, FX: fx}

	shares := e.shareUnits(resolver, in)
	ratedHours := e.ratedHours(hourResolver, in)

	// Cost inputs per staff member, across every record source.
	costInputs := make(map[StaffID]*CostInput)
	input := func(id StaffID) *CostInput {
		if ci, ok := costInputs[id]; ok {
			return ci
		}
		ci := &CostInput{}
		costInputs[id] = ci
		return ci
	}
	for i := range in.Profiles {
		input(in.Profiles[i].StaffID).Profile = &in.Profiles[i]
	}
	for _, r := range in.PayRecords {
		ci := input(r.StaffID)
		ci.PayRecords = append(ci.PayRecords, r)
	}
	for _, b := range in.Bonuses {
		ci := input(b.StaffID)
		ci.Bonuses = append(ci.Bonuses, b)
	}
	for _, ot := range in.Overtime {
		ci := input(ot.StaffID)
		ci.Overtime = append(ci.Overtime, ot)
	}
	for id, rh := range ratedHours {
		input(id).RatedHours = rh
	}
	for id := range shares {
		input(id) // staff with shares but no cost records still participate
	}

	// Deterministic staff iteration keeps allocation output stable.
	staffIDs := make([]StaffID, 0, len(costInputs))
	for id := range costInputs {
		staffIDs = append(staffIDs, id)
	}
	sort.Slice(staffIDs, func(i, j int) bool { return staffIDs[i] < staffIDs[j] })

	var (
		allocations []StaffClientAllocation
		unallocated = decimal.Zero
		anyPayData  bool
	)
	for _, id := range staffIDs {
		cost := costAgg.TotalCost(*costInputs[id], in.Period)
		if cost.HasPayData {
			anyPayData = true
		}

		staffShares := shares[id]
		if TotalShare(staffShares).IsZero() {
			if !cost.Total.IsZero() {
				unallocated = unallocated.Add(cost.Total)
			}
			continue
		}

		allocated := Allocate(staffShares, cost.Total)
		clientIDs := make([]ClientID, 0, len(staffShares))
		for client := range staffShares {
			clientIDs = append(clientIDs, client)
		}
		sort.Slice(clientIDs, func(i, j int) bool { return clientIDs[i] < clientIDs[j] })
		for _, client := range clientIDs {
			allocations = append(allocations, StaffClientAllocation{
				StaffID:    id,
				Client:     client,
				ShareUnits: staffShares[client],
				Cost:       allocated[client],
			})
		}
	}

	var advisories []Advisory
	if len(in.Patterns) == 0 && len(in.Schedules) == 0 {
		advisories = append(advisories, AdvisoryNoPatternData)
	}
	if !anyPayData {
		advisories = append(advisories, AdvisoryNoPayData)
	}
	if in.RatesStale {
		advisories = append(advisories, AdvisoryRatesStale)
	}

	builder := ReportBuilder{Mode: e.policy.RevenueMode, FX: fx}
	return builder.Build(in.Period, in.Clients, allocations, unallocated, advisories)
}

// shareUnits derives per-staff per-client allocation weights from recurring
// patterns and one-off schedule entries. In day mode a schedule entry
// counts as one day; in hour mode it contributes its recorded hours.
func (e Engine) shareUnits(resolver Resolver, in ReportInput) map[StaffID]map[ClientID]decimal.Decimal {
	shares := make(map[StaffID]map[ClientID]decimal.Decimal)
	add := func(staff StaffID, client ClientID, units decimal.Decimal) {
		if units.IsZero() {
			return
		}
		if shares[staff] == nil {
			shares[staff] = make(map[ClientID]decimal.Decimal)
		}
		shares[staff][client] = shares[staff][client].Add(units)
	}

	for _, p := range in.Patterns {
		add(p.StaffID, p.Client, resolver.Contribution(p, in.Period))
	}
	for _, s := range in.Schedules {
		if !in.Period.Contains(s.Date) {
			continue
		}
		if resolver.Mode == ShareHours {
			add(s.StaffID, s.Client, s.Hours)
		} else {
			add(s.StaffID, s.Client, decimal.NewFromInt(1))
		}
	}
	return shares
}

// ratedHours prices pattern hours for the schedule-hours cost variant.
// Patterns without an hourly rate or a wall-clock window yield nothing.
func (e Engine) ratedHours(hourResolver Resolver, in ReportInput) map[StaffID][]RatedHours {
	if e.policy.CostSource != CostScheduleHoursOnly {
		return nil
	}
	out := make(map[StaffID][]RatedHours)
	for _, p := range in.Patterns {
		hours := hourResolver.Contribution(p, in.Period)
		if hours.IsZero() {
			continue
		}
		out[p.StaffID] = append(out[p.StaffID], RatedHours{Hours: hours, Rate: p.HourlyRate})
	}
	return out
}
