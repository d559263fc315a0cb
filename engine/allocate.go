/*
allocate.go - Proportional cost partition

PURPOSE:
  The single, centrally tested division in the system. Every per-client
  cost figure in a report flows through Allocate so the conservation
  property (allocations sum to the staff member's total cost) holds
  everywhere it is used, rather than depending on ratio math inlined at
  call sites.
*/
package engine

import "github.com/shopspring/decimal"

// Allocate partitions totalCost across clients proportionally to their
// share units. It is linear and order-independent: the allocations sum to
// totalCost within decimal division precision.
//
// A zero total share returns an empty map: the staff member's cost is
// unallocated, never a division by zero. Callers surface unallocated cost
// separately instead of silently dropping it.
func Allocate(shares map[ClientID]decimal.Decimal, totalCost decimal.Decimal) map[ClientID]decimal.Decimal {
	totalShare := decimal.Zero
	for _, units := range shares {
		totalShare = totalShare.Add(units)
	}
	if totalShare.IsZero() {
		return map[ClientID]decimal.Decimal{}
	}

	out := make(map[ClientID]decimal.Decimal, len(shares))
	for client, units := range shares {
		out[client] = totalCost.Mul(units).Div(totalShare)
	}
	return out
}

// TotalShare sums a staff member's share units across clients.
func TotalShare(shares map[ClientID]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, units := range shares {
		total = total.Add(units)
	}
	return total
}
