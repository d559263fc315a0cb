/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupled from the engine's
  internal model. Dates travel as ISO-8601 strings, amounts as IEEE-754
  doubles; the engine keeps decimals internally and only the DTO layer
  flattens them, so the report stays portable and golden-file friendly.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/margin-engine/engine"
)

// =============================================================================
// RECORD REQUESTS
// =============================================================================

type CreateClientRequest struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	MRR      float64 `json:"mrr"`
	Currency string  `json:"currency"`
	Active   *bool   `json:"active,omitempty"` // defaults to true
}

type CreatePatternRequest struct {
	StaffID    string   `json:"staff_id"`
	ClientID   string   `json:"client_id"`
	Weekdays   []int    `json:"weekdays"` // 0=Sunday … 6=Saturday
	Recurrence string   `json:"recurrence"`
	Start      string   `json:"start"`
	End        *string  `json:"end,omitempty"`
	ShiftStart *string  `json:"shift_start,omitempty"` // "HH:MM"
	ShiftEnd   *string  `json:"shift_end,omitempty"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
	Currency   string   `json:"currency,omitempty"`
}

type CreateScheduleRequest struct {
	StaffID  string  `json:"staff_id"`
	ClientID string  `json:"client_id"`
	Date     string  `json:"date"`
	Hours    float64 `json:"hours"`
}

type CreatePayRecordRequest struct {
	StaffID     string  `json:"staff_id"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	PaidAt      string  `json:"paid_at"`
	PeriodStart *string `json:"period_start,omitempty"`
	PeriodEnd   *string `json:"period_end,omitempty"`
}

type CreateBonusRequest struct {
	StaffID  string  `json:"staff_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Start    string  `json:"start"`
	End      *string `json:"end,omitempty"`
}

type CreateOvertimeRequest struct {
	StaffID    string   `json:"staff_id"`
	Hours      float64  `json:"hours"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
	Currency   string   `json:"currency,omitempty"`
	Date       string   `json:"date"`
}

type PutProfileRequest struct {
	Name         string  `json:"name"`
	BaseSalary   float64 `json:"base_salary"`
	Currency     string  `json:"currency"`
	PayFrequency string  `json:"pay_frequency"` // "monthly" or "annual"
}

// =============================================================================
// RECORD RESPONSES
// =============================================================================

type ClientDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	MRR      float64 `json:"mrr"`
	Currency string  `json:"currency"`
	Active   bool    `json:"active"`
}

type PatternDTO struct {
	ID         string  `json:"id"`
	StaffID    string  `json:"staff_id"`
	ClientID   string  `json:"client_id"`
	Weekdays   []int   `json:"weekdays"`
	Recurrence string  `json:"recurrence"`
	Start      string  `json:"start"`
	End        *string `json:"end,omitempty"`
}

type ProfileDTO struct {
	StaffID      string  `json:"staff_id"`
	Name         string  `json:"name"`
	BaseSalary   float64 `json:"base_salary"`
	Currency     string  `json:"currency"`
	PayFrequency string  `json:"pay_frequency"`
}

// =============================================================================
// REPORT RESPONSE
// =============================================================================

type StaffAllocationDTO struct {
	StaffID    string  `json:"staff_id"`
	ShareUnits float64 `json:"share_units"`
	Cost       float64 `json:"cost"`
}

type ClientReportDTO struct {
	ClientID      string               `json:"client_id"`
	Name          string               `json:"name"`
	Revenue       float64              `json:"revenue"`
	AllocatedCost float64              `json:"allocated_cost"`
	ShareUnits    float64              `json:"share_units"`
	Profit        float64              `json:"profit"`
	Margin        float64              `json:"margin"`
	Breakdown     []StaffAllocationDTO `json:"breakdown"`
}

type ReportTotalsDTO struct {
	Revenue         float64 `json:"revenue"`
	Cost            float64 `json:"cost"`
	Profit          float64 `json:"profit"`
	Margin          float64 `json:"margin"`
	UnallocatedCost float64 `json:"unallocated_cost"`
}

type ReportDTO struct {
	PeriodStart string            `json:"period_start"`
	PeriodEnd   string            `json:"period_end"`
	Currency    string            `json:"currency"`
	Clients     []ClientReportDTO `json:"clients"`
	Totals      ReportTotalsDTO   `json:"totals"`
	Advisories  []string          `json:"advisories"`
	GeneratedAt string            `json:"generated_at"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toClientDTO(c engine.Client) ClientDTO {
	return ClientDTO{
		ID:       string(c.ID),
		Name:     c.Name,
		MRR:      c.MRR.Amount.InexactFloat64(),
		Currency: c.MRR.Currency,
		Active:   c.Active,
	}
}

func toPatternDTO(p engine.RecurringShiftPattern) PatternDTO {
	wds := make([]int, len(p.Weekdays))
	for i, wd := range p.Weekdays {
		wds[i] = int(wd)
	}
	dto := PatternDTO{
		ID:         p.ID,
		StaffID:    string(p.StaffID),
		ClientID:   string(p.Client),
		Weekdays:   wds,
		Recurrence: string(p.Recurrence),
		Start:      p.Start.String(),
	}
	if p.End != nil {
		end := p.End.String()
		dto.End = &end
	}
	return dto
}

func toProfileDTO(p engine.StaffProfile) ProfileDTO {
	return ProfileDTO{
		StaffID:      string(p.StaffID),
		Name:         p.Name,
		BaseSalary:   p.BaseSalary.Amount.InexactFloat64(),
		Currency:     p.BaseSalary.Currency,
		PayFrequency: string(p.PayFrequency),
	}
}

func toReportDTO(r engine.Report) ReportDTO {
	dto := ReportDTO{
		PeriodStart: r.Period.Start.String(),
		PeriodEnd:   r.Period.End.String(),
		Currency:    r.Currency,
		Clients:     make([]ClientReportDTO, 0, len(r.Clients)),
		Totals: ReportTotalsDTO{
			Revenue:         r.Totals.Revenue.InexactFloat64(),
			Cost:            r.Totals.Cost.InexactFloat64(),
			Profit:          r.Totals.Profit.InexactFloat64(),
			Margin:          r.Totals.Margin.InexactFloat64(),
			UnallocatedCost: r.Totals.UnallocatedCost.InexactFloat64(),
		},
		Advisories:  make([]string, 0, len(r.Advisories)),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, row := range r.Clients {
		rowDTO := ClientReportDTO{
			ClientID:      string(row.ClientID),
			Name:          row.Name,
			Revenue:       row.Revenue.InexactFloat64(),
			AllocatedCost: row.AllocatedCost.InexactFloat64(),
			ShareUnits:    row.TotalShareUnits.InexactFloat64(),
			Profit:        row.Profit.InexactFloat64(),
			Margin:        row.Margin.InexactFloat64(),
			Breakdown:     make([]StaffAllocationDTO, 0, len(row.Breakdown)),
		}
		for _, b := range row.Breakdown {
			rowDTO.Breakdown = append(rowDTO.Breakdown, StaffAllocationDTO{
				StaffID:    string(b.StaffID),
				ShareUnits: b.ShareUnits.InexactFloat64(),
				Cost:       b.Cost.InexactFloat64(),
			})
		}
		dto.Clients = append(dto.Clients, rowDTO)
	}
	for _, a := range r.Advisories {
		dto.Advisories = append(dto.Advisories, string(a))
	}
	return dto
}

func moneyFrom(amount float64, currency string) engine.Money {
	return engine.Money{Amount: decimal.NewFromFloat(amount), Currency: currency}
}
