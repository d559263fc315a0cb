package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/margin-engine/engine"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(year int, month time.Month, d int) engine.TimePoint {
	return engine.NewTimePoint(year, month, d)
}

func dayPtr(year int, month time.Month, d int) *engine.TimePoint {
	tp := day(year, month, d)
	return &tp
}

func TestStore_ClientRoundTripAndUpsert(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	created, err := s.PutClient(ctx, engine.Client{
		Name:   "Acme",
		MRR:    engine.NewMoney(1200, "GBP"),
		Active: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	// Upsert with the same id replaces the row.
	created.MRR = engine.NewMoney(1500, "GBP")
	created.Active = false
	_, err = s.PutClient(ctx, created)
	require.NoError(t, err)

	clients, err := s.Clients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "Acme", clients[0].Name)
	assert.True(t, clients[0].MRR.Amount.Equal(engine.MustParseDecimal("1500")))
	assert.False(t, clients[0].Active)
}

func TestStore_PutClient_RejectsEmptyName(t *testing.T) {
	s := testStore(t)
	_, err := s.PutClient(context.Background(), engine.Client{})
	assert.ErrorIs(t, err, engine.ErrInvalidRecord)
}

func TestStore_PatternRoundTrip_AllFields(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	rate := engine.NewMoney(25, "USD")
	in := engine.RecurringShiftPattern{
		StaffID:    "s1",
		Client:     "acme",
		Weekdays:   []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		Recurrence: engine.RecurBiweekly,
		Start:      day(2025, time.June, 2),
		End:        dayPtr(2025, time.August, 31),
		ShiftStart: &engine.ClockTime{Hour: 9, Minute: 30},
		ShiftEnd:   &engine.ClockTime{Hour: 17},
		HourlyRate: &rate,
	}
	_, err := s.PutPattern(ctx, in)
	require.NoError(t, err)

	got, err := s.PatternsOverlapping(ctx, engine.MonthPeriod(2025, time.July))
	require.NoError(t, err)
	require.Len(t, got, 1)
	p := got[0]
	assert.Equal(t, engine.StaffID("s1"), p.StaffID)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, p.Weekdays)
	assert.Equal(t, engine.RecurBiweekly, p.Recurrence)
	assert.True(t, p.Start.Equal(day(2025, time.June, 2)))
	require.NotNil(t, p.End)
	assert.True(t, p.End.Equal(day(2025, time.August, 31)))
	require.NotNil(t, p.ShiftStart)
	assert.Equal(t, 9, p.ShiftStart.Hour)
	assert.Equal(t, 30, p.ShiftStart.Minute)
	require.NotNil(t, p.HourlyRate)
	assert.True(t, p.HourlyRate.Amount.Equal(engine.MustParseDecimal("25")))
	assert.Equal(t, "USD", p.HourlyRate.Currency)
}

func TestStore_PatternRoundTrip_NullableFields(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	_, err := s.PutPattern(ctx, engine.RecurringShiftPattern{
		StaffID:    "s1",
		Client:     "acme",
		Weekdays:   []time.Weekday{time.Monday},
		Recurrence: engine.RecurWeekly,
		Start:      day(2025, time.June, 2),
	})
	require.NoError(t, err)

	got, err := s.PatternsOverlapping(ctx, engine.MonthPeriod(2025, time.July))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].End)
	assert.Nil(t, got[0].ShiftStart)
	assert.Nil(t, got[0].ShiftEnd)
	assert.Nil(t, got[0].HourlyRate)
}

func TestStore_PatternsOverlapping_ExcludesEndedPatterns(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	_, err := s.PutPattern(ctx, engine.RecurringShiftPattern{
		StaffID:    "s1",
		Client:     "beta",
		Weekdays:   []time.Weekday{time.Monday},
		Recurrence: engine.RecurWeekly,
		Start:      day(2025, time.January, 1),
		End:        dayPtr(2025, time.May, 31),
	})
	require.NoError(t, err)

	got, err := s.PatternsOverlapping(ctx, engine.MonthPeriod(2025, time.July))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_ScheduleRangeQuery(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	for _, d := range []engine.TimePoint{
		day(2025, time.June, 30),
		day(2025, time.July, 1),
		day(2025, time.July, 31),
		day(2025, time.August, 1),
	} {
		_, err := s.PutSchedule(ctx, engine.ScheduleEntry{
			StaffID: "s1", Client: "acme",
			Date:  d,
			Hours: engine.MustParseDecimal("8"),
		})
		require.NoError(t, err)
	}

	got, err := s.SchedulesInRange(ctx, engine.MonthPeriod(2025, time.July))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Date.Equal(day(2025, time.July, 1)))
	assert.True(t, got[1].Date.Equal(day(2025, time.July, 31)))
}

func TestStore_PayRecords_PaidAtAndWindowMatch(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	put := func(r engine.PayRecord) {
		t.Helper()
		_, err := s.PutPayRecord(ctx, r)
		require.NoError(t, err)
	}
	put(engine.PayRecord{
		StaffID: "s1", Type: engine.PaySalary,
		Amount: engine.NewMoney(2000, "GBP"),
		PaidAt: day(2025, time.July, 25),
	})
	// Paid in August, explicitly for July: window match.
	put(engine.PayRecord{
		StaffID: "s1", Type: engine.PayBonus,
		Amount:      engine.NewMoney(200, "GBP"),
		PaidAt:      day(2025, time.August, 5),
		PeriodStart: dayPtr(2025, time.July, 1),
		PeriodEnd:   dayPtr(2025, time.July, 31),
	})
	// Paid in July, explicitly for June: window excludes it.
	put(engine.PayRecord{
		StaffID: "s1", Type: engine.PaySalary,
		Amount:      engine.NewMoney(1900, "GBP"),
		PaidAt:      day(2025, time.July, 2),
		PeriodStart: dayPtr(2025, time.June, 1),
		PeriodEnd:   dayPtr(2025, time.June, 30),
	})

	got, err := s.PayRecordsInRange(ctx, engine.MonthPeriod(2025, time.July))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, engine.PaySalary, got[0].Type)
	assert.Equal(t, engine.PayBonus, got[1].Type)
	require.NotNil(t, got[1].PeriodStart)
	assert.True(t, got[1].PeriodStart.Equal(day(2025, time.July, 1)))
}

func TestStore_BonusWindowQuery(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	_, err := s.PutBonus(ctx, engine.RecurringBonus{
		StaffID: "s1",
		Amount:  engine.NewMoney(100, "GBP"),
		Start:   day(2025, time.January, 1),
	})
	require.NoError(t, err)
	_, err = s.PutBonus(ctx, engine.RecurringBonus{
		StaffID: "s1",
		Amount:  engine.NewMoney(50, "GBP"),
		Start:   day(2025, time.August, 1),
		End:     dayPtr(2025, time.December, 31),
	})
	require.NoError(t, err)

	got, err := s.BonusesOverlapping(ctx, engine.MonthPeriod(2025, time.July))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.Amount.Equal(engine.MustParseDecimal("100")))
	assert.Nil(t, got[0].End)
}

func TestStore_OvertimeRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	rate := engine.NewMoney(22.5, "GBP")
	_, err := s.PutOvertime(ctx, engine.OvertimeRecord{
		StaffID:    "s1",
		Hours:      engine.MustParseDecimal("6.5"),
		HourlyRate: &rate,
		Date:       day(2025, time.July, 12),
	})
	require.NoError(t, err)
	// Unpriced overtime persists with NULL rate.
	_, err = s.PutOvertime(ctx, engine.OvertimeRecord{
		StaffID: "s2",
		Hours:   engine.MustParseDecimal("3"),
		Date:    day(2025, time.July, 20),
	})
	require.NoError(t, err)

	got, err := s.OvertimeInRange(ctx, engine.MonthPeriod(2025, time.July))
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].HourlyRate)
	assert.True(t, got[0].HourlyRate.Amount.Equal(engine.MustParseDecimal("22.5")))
	assert.Nil(t, got[1].HourlyRate)
	assert.True(t, got[1].Hours.Equal(engine.MustParseDecimal("3")))
}

func TestStore_ProfileUpsert(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	_, err := s.PutProfile(ctx, engine.StaffProfile{
		StaffID:      "s1",
		Name:         "Jordan",
		BaseSalary:   engine.NewMoney(30000, "USD"),
		PayFrequency: engine.FreqAnnual,
	})
	require.NoError(t, err)
	_, err = s.PutProfile(ctx, engine.StaffProfile{
		StaffID:      "s1",
		Name:         "Jordan",
		BaseSalary:   engine.NewMoney(2400, "USD"),
		PayFrequency: engine.FreqMonthly,
	})
	require.NoError(t, err)

	got, err := s.Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, engine.FreqMonthly, got[0].PayFrequency)
	assert.True(t, got[0].BaseSalary.Amount.Equal(engine.MustParseDecimal("2400")))
}

func TestStore_ProfileDefaultsToMonthlyFrequency(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	_, err := s.PutProfile(ctx, engine.StaffProfile{
		StaffID:    "s1",
		Name:       "Jordan",
		BaseSalary: engine.NewMoney(2400, "GBP"),
	})
	require.NoError(t, err)

	got, err := s.Profiles(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, engine.FreqMonthly, got[0].PayFrequency)
}

func TestStore_DecimalPrecisionPreserved(t *testing.T) {
	// Amounts survive as exact decimal text, not floats.
	ctx := context.Background()
	s := testStore(t)

	c, err := s.PutClient(ctx, engine.Client{
		Name:   "Precise",
		MRR:    engine.NewMoneyFromDecimal(engine.MustParseDecimal("1234.5678"), "GBP"),
		Active: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)

	clients, err := s.Clients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "1234.5678", clients[0].MRR.Amount.String())
}
