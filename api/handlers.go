/*
handlers.go - HTTP API handlers for the profitability engine

PURPOSE:
  Exposes the record store and the allocation engine over REST. Handles
  HTTP request/response, JSON serialization, and orchestration; all domain
  rules live in the engine package.

ENDPOINTS:
  Records:
    GET    /api/clients                 List clients
    POST   /api/clients                 Create/update client
    GET    /api/patterns?from&to        Patterns overlapping a window
    POST   /api/patterns                Create recurring shift pattern
    POST   /api/schedules               Create one-off schedule entry
    POST   /api/payrecords              Create pay record
    POST   /api/bonuses                 Create recurring bonus
    POST   /api/overtime                Create overtime record
    GET    /api/staff/profiles          List staff profiles
    PUT    /api/staff/{id}/profile      Upsert staff profile

  Reports:
    GET    /api/reports/profitability?from&to
           Optional: cost_source, revenue_mode, share_mode policy overrides.
           Defaults to the current calendar month.

REPORT ORCHESTRATION:
  The seven record fetches and the rate fetch are independent, so the
  handler issues them concurrently and joins before invoking the engine.
  A store failure is a 500; a rate failure is not - the provider falls
  back and the report carries the rates_stale advisory.

ERROR HANDLING:
  400 invalid input, 404 not found, 500 store failure, as JSON
  {"error": "..."}.
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/warp/margin-engine/engine"
	"github.com/warp/margin-engine/rates"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  engine.RecordStore
	Rates  *rates.Provider
	Engine engine.Engine
	Log    zerolog.Logger
}

func NewHandler(store engine.RecordStore, provider *rates.Provider, eng engine.Engine, log zerolog.Logger) *Handler {
	return &Handler{
		Store:  store,
		Rates:  provider,
		Engine: eng,
		Log:    log.With().Str("component", "api").Logger(),
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Error().Err(err).Msg("encode response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) storeStatus(err error) int {
	if errors.Is(err, engine.ErrInvalidRecord) {
		return http.StatusBadRequest
	}
	if engine.IsNotFound(err) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseDate(s string) (engine.TimePoint, error) {
	tp, err := engine.ParseDate(s)
	if err != nil {
		return engine.TimePoint{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return tp, nil
}

func parseDatePtr(s *string) (*engine.TimePoint, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	tp, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &tp, nil
}

func parseClockPtr(s *string) (*engine.ClockTime, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	parts := strings.SplitN(*s, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid time %q (want HH:MM)", *s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return nil, fmt.Errorf("invalid time %q (want HH:MM)", *s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid time %q (want HH:MM)", *s)
	}
	return &engine.ClockTime{Hour: hour, Minute: minute}, nil
}

// periodFromQuery reads ?from&to, defaulting to the current calendar month.
func periodFromQuery(r *http.Request) (engine.Period, error) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" && to == "" {
		today := engine.Today()
		return engine.MonthPeriod(today.Year(), today.Month()), nil
	}
	if from == "" || to == "" {
		return engine.Period{}, fmt.Errorf("from and to must be supplied together")
	}
	start, err := parseDate(from)
	if err != nil {
		return engine.Period{}, err
	}
	end, err := parseDate(to)
	if err != nil {
		return engine.Period{}, err
	}
	return engine.Period{Start: start, End: end}, nil
}

// policyFromQuery applies optional policy-switch overrides to the engine's
// defaults. Unknown values are rejected rather than silently ignored.
func policyFromQuery(r *http.Request, base engine.Policy) (engine.Policy, error) {
	q := r.URL.Query()
	if v := q.Get("cost_source"); v != "" {
		switch engine.CostSource(v) {
		case engine.CostPayRecordsThenProfile, engine.CostProfileOnly, engine.CostScheduleHoursOnly:
			base.CostSource = engine.CostSource(v)
		default:
			return base, fmt.Errorf("unknown cost_source %q", v)
		}
	}
	if v := q.Get("revenue_mode"); v != "" {
		switch engine.RevenueMode(v) {
		case engine.RevenueNetOfVAT, engine.RevenueGrossMRR:
			base.RevenueMode = engine.RevenueMode(v)
		default:
			return base, fmt.Errorf("unknown revenue_mode %q", v)
		}
	}
	if v := q.Get("share_mode"); v != "" {
		switch engine.ShareMode(v) {
		case engine.ShareDays, engine.ShareHours:
			base.ShareMode = engine.ShareMode(v)
		default:
			return base, fmt.Errorf("unknown share_mode %q", v)
		}
	}
	return base, nil
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Store.Clients(r.Context())
	if err != nil {
		h.Log.Error().Err(err).Msg("list clients")
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]ClientDTO, 0, len(clients))
	for _, c := range clients {
		out = append(out, toClientDTO(c))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	client, err := h.Store.PutClient(r.Context(), engine.Client{
		ID:     engine.ClientID(req.ID),
		Name:   req.Name,
		MRR:    moneyFrom(req.MRR, req.Currency),
		Active: active,
	})
	if err != nil {
		h.writeError(w, h.storeStatus(err), err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toClientDTO(client))
}

func (h *Handler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	patterns, err := h.Store.PatternsOverlapping(r.Context(), period)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]PatternDTO, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, toPatternDTO(p))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreatePattern(w http.ResponseWriter, r *http.Request) {
	var req CreatePatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	start, err := parseDate(req.Start)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	end, err := parseDatePtr(req.End)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	shiftStart, err := parseClockPtr(req.ShiftStart)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	shiftEnd, err := parseClockPtr(req.ShiftEnd)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	pattern := engine.RecurringShiftPattern{
		StaffID:    engine.StaffID(req.StaffID),
		Client:     engine.ClientID(req.ClientID),
		Recurrence: engine.Recurrence(req.Recurrence),
		Start:      start,
		End:        end,
		ShiftStart: shiftStart,
		ShiftEnd:   shiftEnd,
	}
	for _, wd := range req.Weekdays {
		if wd < 0 || wd > 6 {
			h.writeError(w, http.StatusBadRequest, fmt.Errorf("weekday %d out of range 0-6", wd))
			return
		}
		pattern.Weekdays = append(pattern.Weekdays, time.Weekday(wd))
	}
	if req.HourlyRate != nil {
		rate := moneyFrom(*req.HourlyRate, req.Currency)
		pattern.HourlyRate = &rate
	}

	created, err := h.Store.PutPattern(r.Context(), pattern)
	if err != nil {
		h.writeError(w, h.storeStatus(err), err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toPatternDTO(created))
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	entry, err := h.Store.PutSchedule(r.Context(), engine.ScheduleEntry{
		StaffID: engine.StaffID(req.StaffID),
		Client:  engine.ClientID(req.ClientID),
		Date:    date,
		Hours:   moneyFrom(req.Hours, "").Amount,
	})
	if err != nil {
		h.writeError(w, h.storeStatus(err), err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": entry.ID})
}

func (h *Handler) CreatePayRecord(w http.ResponseWriter, r *http.Request) {
	var req CreatePayRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	paidAt, err := parseDate(req.PaidAt)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	periodStart, err := parseDatePtr(req.PeriodStart)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	periodEnd, err := parseDatePtr(req.PeriodEnd)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	switch engine.PayType(req.Type) {
	case engine.PaySalary, engine.PayBonus, engine.PayDeduction, engine.PayExpense, engine.PayOvertime:
	default:
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown pay type %q", req.Type))
		return
	}
	record, err := h.Store.PutPayRecord(r.Context(), engine.PayRecord{
		StaffID:     engine.StaffID(req.StaffID),
		Type:        engine.PayType(req.Type),
		Amount:      moneyFrom(req.Amount, req.Currency),
		PaidAt:      paidAt,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	})
	if err != nil {
		h.writeError(w, h.storeStatus(err), err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": record.ID})
}

func (h *Handler) CreateBonus(w http.ResponseWriter, r *http.Request) {
	var req CreateBonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	start, err := parseDate(req.Start)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	end, err := parseDatePtr(req.End)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	bonus, err := h.Store.PutBonus(r.Context(), engine.RecurringBonus{
		StaffID: engine.StaffID(req.StaffID),
		Amount:  moneyFrom(req.Amount, req.Currency),
		Start:   start,
		End:     end,
	})
	if err != nil {
		h.writeError(w, h.storeStatus(err), err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": bonus.ID})
}

func (h *Handler) CreateOvertime(w http.ResponseWriter, r *http.Request) {
	var req CreateOvertimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	record := engine.OvertimeRecord{
		StaffID: engine.StaffID(req.StaffID),
		Hours:   moneyFrom(req.Hours, "").Amount,
		Date:    date,
	}
	if req.HourlyRate != nil {
		rate := moneyFrom(*req.HourlyRate, req.Currency)
		record.HourlyRate = &rate
	}
	created, err := h.Store.PutOvertime(r.Context(), record)
	if err != nil {
		h.writeError(w, h.storeStatus(err), err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": created.ID})
}

func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Store.Profiles(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]ProfileDTO, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileDTO(p))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	staffID := chi.URLParam(r, "id")
	var req PutProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	freq := engine.PayFrequency(req.PayFrequency)
	if freq != engine.FreqMonthly && freq != engine.FreqAnnual {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("pay_frequency must be monthly or annual"))
		return
	}
	profile, err := h.Store.PutProfile(r.Context(), engine.StaffProfile{
		StaffID:      engine.StaffID(staffID),
		Name:         req.Name,
		BaseSalary:   moneyFrom(req.BaseSalary, req.Currency),
		PayFrequency: freq,
	})
	if err != nil {
		h.writeError(w, h.storeStatus(err), err)
		return
	}
	h.writeJSON(w, http.StatusOK, toProfileDTO(profile))
}

// =============================================================================
// REPORT HANDLER
// =============================================================================

func (h *Handler) GetProfitabilityReport(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	policy, err := policyFromQuery(r, h.Engine.Policy())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	input, err := h.assembleInput(r.Context(), period)
	if err != nil {
		h.Log.Error().Err(err).Str("period", period.String()).Msg("assemble report input")
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	eng := engine.New(h.Engine.BaseCurrency(), policy)
	report := eng.BuildReport(*input)

	h.Log.Info().
		Str("period", period.String()).
		Int("clients", len(report.Clients)).
		Int("advisories", len(report.Advisories)).
		Msg("profitability report computed")
	h.writeJSON(w, http.StatusOK, toReportDTO(report))
}

// assembleInput fetches the record sets and the rate table concurrently
// and joins them into a ReportInput. The fetches are independent and
// order-insensitive; any store error fails the whole assembly, but a rate
// failure only marks the input stale.
func (h *Handler) assembleInput(ctx context.Context, period engine.Period) (*engine.ReportInput, error) {
	input := &engine.ReportInput{Period: period}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}
	fetch := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				fail(err)
			}
		}()
	}

	fetch(func() (err error) { input.Clients, err = h.Store.Clients(ctx); return })
	fetch(func() (err error) { input.Patterns, err = h.Store.PatternsOverlapping(ctx, period); return })
	fetch(func() (err error) { input.Schedules, err = h.Store.SchedulesInRange(ctx, period); return })
	fetch(func() (err error) { input.PayRecords, err = h.Store.PayRecordsInRange(ctx, period); return })
	fetch(func() (err error) { input.Bonuses, err = h.Store.BonusesOverlapping(ctx, period); return })
	fetch(func() (err error) { input.Overtime, err = h.Store.OvertimeInRange(ctx, period); return })
	fetch(func() (err error) { input.Profiles, err = h.Store.Profiles(ctx); return })
	fetch(func() error {
		input.Rates, input.RatesStale = h.Rates.Current(ctx)
		return nil
	})

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return input, nil
}
