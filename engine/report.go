/*
report.go - Profitability aggregation

PURPOSE:
  Joins allocated staff cost with client revenue to produce the per-client
  profit/margin report plus period-wide totals. This is the presentation-
  facing shape: a stable, deterministic ordering and advisory flags instead
  of errors.

REVENUE:
  Client MRR is stored tax-inclusive at a fixed 20% rate. Net revenue is
  MRR / 1.2. The ratio is a policy constant, not configuration; the
  RevenueGrossMRR switch exists only to reproduce the historical variant
  that reported gross MRR.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// vatFactor converts tax-inclusive MRR to net revenue (fixed 20% rate).
var vatFactor = MustParseDecimal("1.2")

// marginScale expresses margin as a percentage.
var marginScale = decimal.NewFromInt(100)

// =============================================================================
// ADVISORIES - Degraded-data flags the UI surfaces, never exceptions
// =============================================================================

type Advisory string

const (
	// AdvisoryNoPatternData: share data (patterns and schedules) entirely
	// absent for the period.
	AdvisoryNoPatternData Advisory = "no_pattern_data"

	// AdvisoryNoPayData: no staff member had any base cost source.
	AdvisoryNoPayData Advisory = "no_pay_data"

	// AdvisoryRatesStale: the exchange-rate fetch failed and the fallback
	// table was used.
	AdvisoryRatesStale Advisory = "rates_stale"
)

// =============================================================================
// REPORT SHAPE
// =============================================================================

// StaffAllocation is one staff member's contribution to a client's cost.
type StaffAllocation struct {
	StaffID    StaffID
	ShareUnits decimal.Decimal
	Cost       decimal.Decimal
}

// ClientReport is one row of the profitability table.
type ClientReport struct {
	ClientID        ClientID
	Name            string
	Revenue         decimal.Decimal
	AllocatedCost   decimal.Decimal
	TotalShareUnits decimal.Decimal
	Profit          decimal.Decimal
	Margin          decimal.Decimal
	Breakdown       []StaffAllocation
}

// ReportTotals rolls the reported clients up period-wide. UnallocatedCost
// is cost belonging to staff with zero total share: it is surfaced here
// rather than silently dropped or forced onto a client.
type ReportTotals struct {
	Revenue         decimal.Decimal
	Cost            decimal.Decimal
	Profit          decimal.Decimal
	Margin          decimal.Decimal
	UnallocatedCost decimal.Decimal
}

// Report is the full allocation report for one period. It is derived state,
// recomputed on every invocation; nothing persists it.
type Report struct {
	Period     Period
	Currency   string
	Clients    []ClientReport
	Totals     ReportTotals
	Advisories []Advisory
}

// HasAdvisory reports whether the given flag is set.
func (r Report) HasAdvisory(a Advisory) bool {
	for _, have := range r.Advisories {
		if have == a {
			return true
		}
	}
	return false
}

// =============================================================================
// REPORT BUILDER
// =============================================================================

// StaffClientAllocation is one (staff, client) cost attribution, the unit
// the allocation step hands to the aggregator.
type StaffClientAllocation struct {
	StaffID    StaffID
	Client     ClientID
	ShareUnits decimal.Decimal
	Cost       decimal.Decimal
}

// ReportBuilder assembles the final report.
type ReportBuilder struct {
	Mode RevenueMode
	FX   Normalizer
}

// Build joins allocations with client revenue. Only active clients get a
// row; allocations naming unknown or inactive clients are excluded from
// rows but their cost still lands in Totals.Cost so period-wide spend
// stays honest. Rows are sorted descending by profit; the sort is stable,
// so ties keep the caller's (name) order.
func (rb ReportBuilder) Build(period Period, clients []Client, allocations []StaffClientAllocation, unallocated decimal.Decimal, advisories []Advisory) Report {
	rows := make([]ClientReport, 0, len(clients))
	index := make(map[ClientID]int, len(clients))
	for _, c := range clients {
		if !c.Active {
			continue
		}
		index[c.ID] = len(rows)
		rows = append(rows, ClientReport{
			ClientID:        c.ID,
			Name:            c.Name,
			Revenue:         rb.revenue(c),
			AllocatedCost:   decimal.Zero,
			TotalShareUnits: decimal.Zero,
			Profit:          decimal.Zero,
			Margin:          decimal.Zero,
		})
	}

	offRow := decimal.Zero // cost allocated to clients without a report row
	for _, a := range allocations {
		i, ok := index[a.Client]
		if !ok {
			offRow = offRow.Add(a.Cost)
			continue
		}
		rows[i].AllocatedCost = rows[i].AllocatedCost.Add(a.Cost)
		rows[i].TotalShareUnits = rows[i].TotalShareUnits.Add(a.ShareUnits)
		rows[i].Breakdown = append(rows[i].Breakdown, StaffAllocation{
			StaffID:    a.StaffID,
			ShareUnits: a.ShareUnits,
			Cost:       a.Cost,
		})
	}

	totals := ReportTotals{
		Revenue:         decimal.Zero,
		Cost:            offRow,
		Profit:          decimal.Zero,
		UnallocatedCost: unallocated,
	}
	for i := range rows {
		rows[i].Profit = rows[i].Revenue.Sub(rows[i].AllocatedCost)
		rows[i].Margin = marginOf(rows[i].Profit, rows[i].Revenue)
		sort.Slice(rows[i].Breakdown, func(a, b int) bool {
			return rows[i].Breakdown[a].StaffID < rows[i].Breakdown[b].StaffID
		})

		totals.Revenue = totals.Revenue.Add(rows[i].Revenue)
		totals.Cost = totals.Cost.Add(rows[i].AllocatedCost)
	}
	totals.Profit = totals.Revenue.Sub(totals.Cost)
	totals.Margin = marginOf(totals.Profit, totals.Revenue)

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].Profit.GreaterThan(rows[b].Profit)
	})

	return Report{
		Period:     period,
		Currency:   rb.FX.Base,
		Clients:    rows,
		Totals:     totals,
		Advisories: advisories,
	}
}

func (rb ReportBuilder) revenue(c Client) decimal.Decimal {
	gross := rb.FX.ToBase(c.MRR)
	if rb.Mode == RevenueGrossMRR {
		return gross
	}
	return gross.Div(vatFactor)
}

// marginOf is profit as a percentage of revenue, defined as 0 when revenue
// is not positive. Never NaN, never a division by zero.
func marginOf(profit, revenue decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(marginScale)
}
