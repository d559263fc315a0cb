package engine

import "github.com/shopspring/decimal"

// =============================================================================
// RATE TABLE - currency code → multiplier to the reporting currency
// =============================================================================

// RateTable maps a currency code to the multiplier that converts an amount
// in that currency into the reporting currency. It always carries an
// identity entry for the reporting currency itself.
type RateTable map[string]decimal.Decimal

// Clone returns an independent copy so callers can overlay rates without
// mutating a shared table.
func (rt RateTable) Clone() RateTable {
	out := make(RateTable, len(rt))
	for code, rate := range rt {
		out[code] = rate
	}
	return out
}

// DefaultFallbackRates is the static table substituted when the rate
// collaborator fails. It is a plain value: callers inject their own table
// for deterministic tests or different deployments.
func DefaultFallbackRates(base string) RateTable {
	rt := RateTable{
		"GBP": MustParseDecimal("1"),
		"USD": MustParseDecimal("0.79"),
		"EUR": MustParseDecimal("0.85"),
		"NGN": MustParseDecimal("0.00052"),
	}
	rt[base] = decimal.NewFromInt(1)
	return rt
}

// =============================================================================
// NORMALIZER - converts Money into the reporting currency
// =============================================================================

// Normalizer converts amounts into a single reporting currency using an
// injected rate table. It is a pure value; the table is whatever the caller
// resolved (live, cached, or fallback) before computation began.
type Normalizer struct {
	Base  string
	Rates RateTable
}

// NewNormalizer builds a normalizer, guaranteeing the identity entry for
// the reporting currency even if the injected table omits it.
func NewNormalizer(base string, rates RateTable) Normalizer {
	table := rates.Clone()
	if table == nil {
		table = RateTable{}
	}
	if _, ok := table[base]; !ok {
		table[base] = decimal.NewFromInt(1)
	}
	return Normalizer{Base: base, Rates: table}
}

// ToBase converts m into the reporting currency. An unrecognized currency
// falls back to the identity rate: inputs with unknown currencies must
// never sink the report.
func (n Normalizer) ToBase(m Money) decimal.Decimal {
	rate, ok := n.Rates[m.Currency]
	if !ok {
		rate = n.Rates[n.Base]
	}
	return m.Amount.Mul(rate)
}
