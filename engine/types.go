/*
Package engine implements the client profitability allocation engine.

PURPOSE:
  Given a reporting period, determine how much of each staff member's cost
  should be attributed to each client they served, and combine that with
  client revenue to produce a profit/margin report. The engine reconciles
  several partially-overlapping, partially-missing sources (recurring shift
  patterns, explicit schedules, payroll records, base-salary fallbacks,
  recurring bonuses, overtime) and normalizes them across currencies and
  time windows with deterministic rules.

KEY CONCEPTS:
  - Period:       closed [start, end] reporting window (time.go)
  - Money:        decimal amount + currency (money.go)
  - Normalizer:   currency → reporting-currency conversion (currency.go)
  - Resolver:     pattern → day/hour contribution within a period (pattern.go)
  - CostAggregator: staff cost with fallback policy (cost.go)
  - Allocate:     proportional cost partition across clients (allocate.go)
  - Report:       per-client profit/margin with advisory flags (report.go)

DESIGN PRINCIPLES:
  1. Purity: the engine is a function of its inputs. No ambient caches,
     no clocks, no I/O. Rates are passed in, never fetched here.
  2. Degradation over failure: missing or malformed data resolves to a
     documented zero value plus an advisory flag on the report. Nothing in
     this package aborts an otherwise computable report.
  3. Precision: decimal.Decimal for every amount and share unit.

SEE ALSO:
  - store.go: the read-side interface callers use to assemble inputs
  - rates package: the exchange-rate collaborator with fallback
  - api package: HTTP surface and report orchestration
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type StaffID string
type ClientID string

// =============================================================================
// CLIENT
// =============================================================================

// Client is a revenue-bearing account. MRR is stored tax-inclusive; the
// report derives net revenue according to its RevenueMode.
type Client struct {
	ID     ClientID
	Name   string
	MRR    Money
	Active bool
}

// =============================================================================
// RECURRING SHIFT PATTERN
// =============================================================================

type Recurrence string

const (
	RecurWeekly   Recurrence = "weekly"
	RecurBiweekly Recurrence = "biweekly"
	RecurMonthly  Recurrence = "monthly"
)

// RecurringShiftPattern is a rule generating repeated shifts for a staff
// member at a client: on the given weekdays, under the recurrence filter,
// between Start and End (open-ended when End is nil).
//
// ShiftStart/ShiftEnd carry the per-shift wall-clock window and are only
// consulted in hour-based share mode. HourlyRate prices pattern hours in the
// schedule-hours cost variant; it is ignored otherwise.
type RecurringShiftPattern struct {
	ID         string
	StaffID    StaffID
	Client     ClientID
	Weekdays   []time.Weekday
	Recurrence Recurrence
	Start      TimePoint
	End        *TimePoint
	ShiftStart *ClockTime
	ShiftEnd   *ClockTime
	HourlyRate *Money
}

// Validate enforces the record invariants the store accepts: a staff
// member, a client, and a non-empty weekday set. An inverted [Start, End]
// window is deliberately NOT rejected here; it resolves to zero
// contribution instead (see pattern.go).
func (p RecurringShiftPattern) Validate() error {
	if p.StaffID == "" || p.Client == "" || len(p.Weekdays) == 0 {
		return ErrInvalidRecord
	}
	return nil
}

// OnWeekday reports whether the pattern's weekday set includes wd.
func (p RecurringShiftPattern) OnWeekday(wd time.Weekday) bool {
	for _, w := range p.Weekdays {
		if w == wd {
			return true
		}
	}
	return false
}

// ShiftHours returns the per-shift duration in hours, zero when the pattern
// carries no wall-clock window or the window is inverted.
func (p RecurringShiftPattern) ShiftHours() decimal.Decimal {
	if p.ShiftStart == nil || p.ShiftEnd == nil {
		return decimal.Zero
	}
	minutes := p.ShiftEnd.MinutesFromMidnight() - p.ShiftStart.MinutesFromMidnight()
	if minutes <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
}

// =============================================================================
// SCHEDULE ENTRY - One-off shift (as opposed to a recurring pattern)
// =============================================================================

type ScheduleEntry struct {
	ID      string
	StaffID StaffID
	Client  ClientID
	Date    TimePoint
	Hours   decimal.Decimal
}

// =============================================================================
// PAYROLL RECORDS
// =============================================================================

type PayType string

const (
	PaySalary    PayType = "salary"
	PayBonus     PayType = "bonus"
	PayDeduction PayType = "deduction"
	PayExpense   PayType = "expense"
	PayOvertime  PayType = "overtime"
)

// Signed reports the record's sign convention: deductions subtract from
// cost, every other type adds.
func (t PayType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == PayDeduction {
		return amount.Neg()
	}
	return amount
}

// PayRecord is a single payroll line for a staff member. PaidAt places the
// record in a reporting period; when an explicit pay-period window is
// tracked (PeriodStart/PeriodEnd non-nil) the record instead matches any
// reporting period the window intersects.
type PayRecord struct {
	ID          string
	StaffID     StaffID
	Type        PayType
	Amount      Money
	PaidAt      TimePoint
	PeriodStart *TimePoint
	PeriodEnd   *TimePoint
}

// InPeriod reports whether the record belongs to the reporting period.
func (r PayRecord) InPeriod(period Period) bool {
	if r.PeriodStart != nil && r.PeriodEnd != nil {
		return period.Overlaps(*r.PeriodStart, r.PeriodEnd)
	}
	return period.Contains(r.PaidAt)
}

// RecurringBonus applies to every reporting period its [Start, End] interval
// overlaps. End nil means open-ended.
type RecurringBonus struct {
	ID      string
	StaffID StaffID
	Amount  Money
	Start   TimePoint
	End     *TimePoint
}

// OvertimeRecord is extra hours worked on a specific date. A record without
// an hourly rate cannot be priced and contributes zero cost.
type OvertimeRecord struct {
	ID         string
	StaffID    StaffID
	Hours      decimal.Decimal
	HourlyRate *Money
	Date       TimePoint
}

// =============================================================================
// STAFF PROFILE - Base-salary fallback
// =============================================================================

type PayFrequency string

const (
	FreqMonthly PayFrequency = "monthly"
	FreqAnnual  PayFrequency = "annual"
)

// StaffProfile carries the base salary used when no pay records exist for
// the staff member in the period.
type StaffProfile struct {
	StaffID      StaffID
	Name         string
	BaseSalary   Money
	PayFrequency PayFrequency
}

// MonthlySalary normalizes the base salary to a monthly figure.
func (p StaffProfile) MonthlySalary() Money {
	if p.PayFrequency == FreqAnnual {
		return Money{
			Amount:   p.BaseSalary.Amount.Div(decimal.NewFromInt(12)),
			Currency: p.BaseSalary.Currency,
		}
	}
	return p.BaseSalary
}
