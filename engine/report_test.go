package engine_test

import (
	"testing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/margin-engine/engine"
)

func netBuilder() engine.ReportBuilder {
	return engine.ReportBuilder{
		Mode: engine.RevenueNetOfVAT,
		FX:   engine.NewNormalizer("GBP", nil),
	}
}

func activeClient(id, name string, mrr float64) engine.Client {
	return engine.Client{ID: engine.ClientID(id), Name: name, MRR: engine.NewMoney(mrr, "GBP"), Active: true}
}

func alloc(staff, client string, share, cost string) engine.StaffClientAllocation {
	return engine.StaffClientAllocation{
		StaffID:    engine.StaffID(staff),
		Client:     engine.ClientID(client),
		ShareUnits: engine.MustParseDecimal(share),
		Cost:       engine.MustParseDecimal(cost),
	}
}

func TestBuild_RevenueNetOfVAT(t *testing.T) {
	// MRR 1200 tax-inclusive at 20% → revenue 1000
	report := netBuilder().Build(july(), []engine.Client{activeClient("acme", "Acme", 1200)}, nil, decimal.Zero, nil)

	require.Len(t, report.Clients, 1)
	assert.True(t, report.Clients[0].Revenue.Equal(engine.MustParseDecimal("1000")),
		"got %s", report.Clients[0].Revenue)
}

func TestBuild_RevenueGrossMode(t *testing.T) {
	builder := engine.ReportBuilder{Mode: engine.RevenueGrossMRR, FX: engine.NewNormalizer("GBP", nil)}
	report := builder.Build(july(), []engine.Client{activeClient("acme", "Acme", 1200)}, nil, decimal.Zero, nil)

	require.Len(t, report.Clients, 1)
	assert.True(t, report.Clients[0].Revenue.Equal(engine.MustParseDecimal("1200")))
}

func TestBuild_MarginFloor_ZeroRevenueClient(t *testing.T) {
	// GIVEN: an unmonetized client carrying allocated cost
	// THEN: margin is 0, never NaN or a division by zero
	report := netBuilder().Build(july(),
		[]engine.Client{activeClient("free", "Freebie", 0)},
		[]engine.StaffClientAllocation{alloc("s1", "free", "10", "500")},
		decimal.Zero, nil)

	require.Len(t, report.Clients, 1)
	row := report.Clients[0]
	assert.True(t, row.Margin.IsZero())
	assert.True(t, row.Profit.Equal(engine.MustParseDecimal("-500")))
}

func TestBuild_ProfitAndMargin(t *testing.T) {
	report := netBuilder().Build(july(),
		[]engine.Client{activeClient("acme", "Acme", 1200)},
		[]engine.StaffClientAllocation{alloc("s1", "acme", "13", "2000")},
		decimal.Zero, nil)

	row := report.Clients[0]
	assert.True(t, row.Profit.Equal(engine.MustParseDecimal("-1000")))
	assert.True(t, row.Margin.Equal(engine.MustParseDecimal("-100")), "got %s", row.Margin)
}

func TestBuild_SortedByProfitDescending_StableTies(t *testing.T) {
	// GIVEN: three clients, two tied on profit
	clients := []engine.Client{
		activeClient("a", "Alpha", 1200), // profit 1000
		activeClient("b", "Beta", 600),   // profit 500
		activeClient("c", "Gamma", 600),  // profit 500 (tie with Beta)
		activeClient("d", "Delta", 2400), // profit 2000
	}
	report := netBuilder().Build(july(), clients, nil, decimal.Zero, nil)

	names := make([]string, 0, len(report.Clients))
	for _, row := range report.Clients {
		names = append(names, row.Name)
	}
	// Ties keep insertion (name) order: Beta before Gamma.
	assert.Equal(t, []string{"Delta", "Alpha", "Beta", "Gamma"}, names)
}

func TestBuild_InactiveClientsExcluded(t *testing.T) {
	inactive := engine.Client{ID: "old", Name: "Old", MRR: engine.NewMoney(1200, "GBP"), Active: false}
	report := netBuilder().Build(july(),
		[]engine.Client{activeClient("acme", "Acme", 1200), inactive},
		nil, decimal.Zero, nil)

	require.Len(t, report.Clients, 1)
	assert.Equal(t, "Acme", report.Clients[0].Name)
}

func TestBuild_AllocationToInactiveClientStillCountsInTotals(t *testing.T) {
	// Cost attributed to a client without a report row must not vanish
	// from period-wide spend.
	inactive := engine.Client{ID: "old", Name: "Old", MRR: engine.NewMoney(1200, "GBP"), Active: false}
	report := netBuilder().Build(july(),
		[]engine.Client{activeClient("acme", "Acme", 1200), inactive},
		[]engine.StaffClientAllocation{
			alloc("s1", "acme", "10", "600"),
			alloc("s1", "old", "5", "300"),
		},
		decimal.Zero, nil)

	require.Len(t, report.Clients, 1)
	assert.True(t, report.Clients[0].AllocatedCost.Equal(engine.MustParseDecimal("600")))
	assert.True(t, report.Totals.Cost.Equal(engine.MustParseDecimal("900")), "got %s", report.Totals.Cost)
}

func TestBuild_Totals(t *testing.T) {
	report := netBuilder().Build(july(),
		[]engine.Client{
			activeClient("acme", "Acme", 1200), // revenue 1000
			activeClient("beta", "Beta", 2400), // revenue 2000
		},
		[]engine.StaffClientAllocation{
			alloc("s1", "acme", "10", "500"),
			alloc("s2", "beta", "10", "1500"),
		},
		engine.MustParseDecimal("250"), nil)

	assert.True(t, report.Totals.Revenue.Equal(engine.MustParseDecimal("3000")))
	assert.True(t, report.Totals.Cost.Equal(engine.MustParseDecimal("2000")))
	assert.True(t, report.Totals.Profit.Equal(engine.MustParseDecimal("1000")))
	// 1000/3000*100
	approxEqual(t, engine.MustParseDecimal("33.333333"), report.Totals.Margin)
	assert.True(t, report.Totals.UnallocatedCost.Equal(engine.MustParseDecimal("250")))
}

func TestBuild_BreakdownAggregatedPerClient(t *testing.T) {
	report := netBuilder().Build(july(),
		[]engine.Client{activeClient("acme", "Acme", 1200)},
		[]engine.StaffClientAllocation{
			alloc("s2", "acme", "5", "400"),
			alloc("s1", "acme", "10", "600"),
		},
		decimal.Zero, nil)

	row := report.Clients[0]
	assert.True(t, row.AllocatedCost.Equal(engine.MustParseDecimal("1000")))
	assert.True(t, row.TotalShareUnits.Equal(engine.MustParseDecimal("15")))
	require.Len(t, row.Breakdown, 2)
	// Breakdown ordered by staff id for deterministic output.
	assert.Equal(t, engine.StaffID("s1"), row.Breakdown[0].StaffID)
	assert.Equal(t, engine.StaffID("s2"), row.Breakdown[1].StaffID)
}

func TestBuild_AdvisoriesPassedThrough(t *testing.T) {
	report := netBuilder().Build(july(), nil, nil, decimal.Zero,
		[]engine.Advisory{engine.AdvisoryNoPayData, engine.AdvisoryRatesStale})

	assert.True(t, report.HasAdvisory(engine.AdvisoryNoPayData))
	assert.True(t, report.HasAdvisory(engine.AdvisoryRatesStale))
	assert.False(t, report.HasAdvisory(engine.AdvisoryNoPatternData))
}

func TestBuild_CurrencyStampedFromNormalizer(t *testing.T) {
	report := netBuilder().Build(july(), nil, nil, decimal.Zero, nil)
	assert.Equal(t, "GBP", report.Currency)
}
