package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/warp/margin-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func gbpNormalizer() engine.Normalizer {
	return engine.NewNormalizer("GBP", engine.RateTable{
		"USD": engine.MustParseDecimal("0.5"),
	})
}

func defaultCostAgg() engine.CostAggregator {
	return engine.CostAggregator{Source: engine.CostPayRecordsThenProfile, FX: gbpNormalizer()}
}

func payRecord(staff string, payType engine.PayType, amount float64, paidAt engine.TimePoint) engine.PayRecord {
	return engine.PayRecord{
		StaffID: engine.StaffID(staff),
		Type:    payType,
		Amount:  engine.NewMoney(amount, "GBP"),
		PaidAt:  paidAt,
	}
}

func july() engine.Period { return engine.MonthPeriod(2025, time.July) }

// =============================================================================
// BASE COST: PAY RECORDS THEN PROFILE
// =============================================================================

func TestTotalCost_PayRecordsArePrimary(t *testing.T) {
	// GIVEN: pay records in the period AND a profile
	// THEN: records win; the profile is never consulted
	in := engine.CostInput{
		Profile: &engine.StaffProfile{
			StaffID:      "s1",
			BaseSalary:   engine.NewMoney(9999, "GBP"),
			PayFrequency: engine.FreqMonthly,
		},
		PayRecords: []engine.PayRecord{
			payRecord("s1", engine.PaySalary, 1800, date(2025, time.July, 25)),
			payRecord("s1", engine.PayExpense, 200, date(2025, time.July, 10)),
		},
	}
	res := defaultCostAgg().TotalCost(in, july())

	assert.True(t, res.Total.Equal(engine.MustParseDecimal("2000")), "got %s", res.Total)
	assert.True(t, res.HasPayData)
}

func TestTotalCost_DeductionSubtracts(t *testing.T) {
	in := engine.CostInput{
		PayRecords: []engine.PayRecord{
			payRecord("s1", engine.PaySalary, 2000, date(2025, time.July, 25)),
			payRecord("s1", engine.PayDeduction, 150, date(2025, time.July, 25)),
		},
	}
	res := defaultCostAgg().TotalCost(in, july())
	assert.True(t, res.Total.Equal(engine.MustParseDecimal("1850")), "got %s", res.Total)
}

func TestTotalCost_RecordsOutsidePeriodIgnored(t *testing.T) {
	// GIVEN: only a June record and a profile
	// THEN: the period has no records, so the profile fallback applies
	in := engine.CostInput{
		Profile: &engine.StaffProfile{
			StaffID:      "s1",
			BaseSalary:   engine.NewMoney(2400, "GBP"),
			PayFrequency: engine.FreqMonthly,
		},
		PayRecords: []engine.PayRecord{
			payRecord("s1", engine.PaySalary, 2000, date(2025, time.June, 25)),
		},
	}
	res := defaultCostAgg().TotalCost(in, july())
	assert.True(t, res.Total.Equal(engine.MustParseDecimal("2400")), "got %s", res.Total)
}

func TestTotalCost_ExplicitPayWindowIntersectsPeriod(t *testing.T) {
	// GIVEN: a record paid in August but covering July 16 - August 15
	r := payRecord("s1", engine.PaySalary, 2000, date(2025, time.August, 20))
	r.PeriodStart = datePtr(2025, time.July, 16)
	r.PeriodEnd = datePtr(2025, time.August, 15)

	res := defaultCostAgg().TotalCost(engine.CostInput{PayRecords: []engine.PayRecord{r}}, july())
	assert.True(t, res.Total.Equal(engine.MustParseDecimal("2000")))
}

func TestTotalCost_AnnualSalaryNormalizedToMonthly(t *testing.T) {
	in := engine.CostInput{
		Profile: &engine.StaffProfile{
			StaffID:      "s1",
			BaseSalary:   engine.NewMoney(30000, "GBP"),
			PayFrequency: engine.FreqAnnual,
		},
	}
	res := defaultCostAgg().TotalCost(in, july())
	assert.True(t, res.Total.Equal(engine.MustParseDecimal("2500")), "got %s", res.Total)
}

func TestTotalCost_ProfileCurrencyConverted(t *testing.T) {
	// Scenario C: base salary 2400 USD monthly at USD→GBP 0.5
	in := engine.CostInput{
		Profile: &engine.StaffProfile{
			StaffID:      "s1",
			BaseSalary:   engine.NewMoney(2400, "USD"),
			PayFrequency: engine.FreqMonthly,
		},
	}
	res := defaultCostAgg().TotalCost(in, july())
	assert.True(t, res.Total.Equal(engine.MustParseDecimal("1200")), "got %s", res.Total)
}

func TestTotalCost_NoRecordsNoProfile_ZeroNotError(t *testing.T) {
	// Absence of cost data is a valid, reportable state.
	res := defaultCostAgg().TotalCost(engine.CostInput{}, july())
	assert.True(t, res.Total.IsZero())
	assert.False(t, res.HasPayData)
}

// =============================================================================
// BONUSES AND OVERTIME (added regardless of base branch)
// =============================================================================

func TestTotalCost_RecurringBonusOverlapBoundaries(t *testing.T) {
	mk := func(start engine.TimePoint, end *engine.TimePoint) engine.RecurringBonus {
		return engine.RecurringBonus{StaffID: "s1", Amount: engine.NewMoney(100, "GBP"), Start: start, End: end}
	}
	in := engine.CostInput{
		Bonuses: []engine.RecurringBonus{
			mk(date(2025, time.January, 1), nil),                              // open-ended, applies
			mk(date(2025, time.July, 31), nil),                               // starts on last day, applies
			mk(date(2025, time.January, 1), datePtr(2025, time.July, 1)),     // ends on first day, applies
			mk(date(2025, time.August, 1), nil),                              // starts after period, no
			mk(date(2025, time.January, 1), datePtr(2025, time.June, 30)),    // ended before period, no
		},
	}
	res := defaultCostAgg().TotalCost(in, july())
	assert.True(t, res.Bonuses.Equal(engine.MustParseDecimal("300")), "got %s", res.Bonuses)
}

func TestTotalCost_OvertimePricedAtRate(t *testing.T) {
	rate := engine.NewMoney(20, "USD")
	in := engine.CostInput{
		Overtime: []engine.OvertimeRecord{
			{StaffID: "s1", Hours: engine.MustParseDecimal("10"), HourlyRate: &rate, Date: date(2025, time.July, 12)},
		},
	}
	res := defaultCostAgg().TotalCost(in, july())
	// 10h x 20 USD x 0.5 = 100 GBP
	assert.True(t, res.Overtime.Equal(engine.MustParseDecimal("100")), "got %s", res.Overtime)
}

func TestTotalCost_OvertimeWithoutRateContributesZero(t *testing.T) {
	in := engine.CostInput{
		Overtime: []engine.OvertimeRecord{
			{StaffID: "s1", Hours: engine.MustParseDecimal("10"), Date: date(2025, time.July, 12)},
		},
	}
	res := defaultCostAgg().TotalCost(in, july())
	assert.True(t, res.Overtime.IsZero())
}

func TestTotalCost_BonusesAndOvertimeAddedOnTopOfFallback(t *testing.T) {
	rate := engine.NewMoney(25, "GBP")
	in := engine.CostInput{
		Profile: &engine.StaffProfile{
			StaffID:      "s1",
			BaseSalary:   engine.NewMoney(2000, "GBP"),
			PayFrequency: engine.FreqMonthly,
		},
		Bonuses: []engine.RecurringBonus{
			{StaffID: "s1", Amount: engine.NewMoney(300, "GBP"), Start: date(2025, time.January, 1)},
		},
		Overtime: []engine.OvertimeRecord{
			{StaffID: "s1", Hours: engine.MustParseDecimal("4"), HourlyRate: &rate, Date: date(2025, time.July, 3)},
		},
	}
	res := defaultCostAgg().TotalCost(in, july())
	assert.True(t, res.Total.Equal(engine.MustParseDecimal("2400")), "got %s", res.Total)
}

// =============================================================================
// POLICY VARIANTS
// =============================================================================

func TestTotalCost_ProfileOnly_IgnoresPayRecords(t *testing.T) {
	agg := engine.CostAggregator{Source: engine.CostProfileOnly, FX: gbpNormalizer()}
	in := engine.CostInput{
		Profile: &engine.StaffProfile{
			StaffID:      "s1",
			BaseSalary:   engine.NewMoney(2100, "GBP"),
			PayFrequency: engine.FreqMonthly,
		},
		PayRecords: []engine.PayRecord{
			payRecord("s1", engine.PaySalary, 5000, date(2025, time.July, 25)),
		},
	}
	res := agg.TotalCost(in, july())
	assert.True(t, res.Total.Equal(engine.MustParseDecimal("2100")), "got %s", res.Total)
}

func TestTotalCost_ScheduleHoursOnly_PricesRatedHours(t *testing.T) {
	agg := engine.CostAggregator{Source: engine.CostScheduleHoursOnly, FX: gbpNormalizer()}
	rate := engine.NewMoney(30, "GBP")
	in := engine.CostInput{
		RatedHours: []engine.RatedHours{
			{Hours: engine.MustParseDecimal("40"), Rate: &rate},
			{Hours: engine.MustParseDecimal("10"), Rate: nil}, // unrated hours cost zero
		},
		PayRecords: []engine.PayRecord{
			payRecord("s1", engine.PaySalary, 5000, date(2025, time.July, 25)), // ignored in this mode
		},
	}
	res := agg.TotalCost(in, july())
	assert.True(t, res.Total.Equal(engine.MustParseDecimal("1200")), "got %s", res.Total)
	assert.True(t, res.HasPayData)
}
