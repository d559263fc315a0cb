/*
Package sqlite provides the SQLite-backed implementation of the record
store interfaces.

PURPOSE:
  Persists the engine's input records (clients, patterns, schedules, pay
  records, bonuses, overtime, staff profiles). Allocation reports are
  never persisted: the engine is a pure function of these inputs and is
  recomputed per query.

KEY TABLES:
  clients:         revenue accounts (MRR, active flag)
  patterns:        recurring shift patterns
  schedules:       one-off scheduled shifts
  pay_records:     payroll lines
  bonuses:         recurring bonuses
  overtime:        overtime records
  staff_profiles:  base-salary fallback, keyed by staff id

STORAGE CONVENTIONS:
  - Dates as ISO-8601 TEXT (2006-01-02); NULL for open-ended intervals
  - Monetary amounts as TEXT decimals (never floats)
  - Weekday sets as comma-separated integers ("1,3,5")
  - Clock times as "HH:MM" TEXT

WAL MODE:
  Opened with WAL for better read concurrency. Schema is auto-migrated on
  New(); production deployments would use a versioned migration tool.

SEE ALSO:
  - engine/store.go: interface definitions
  - engine/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/margin-engine/engine"
)

// Store implements engine.RecordStore on SQLite.
type Store struct {
	db *sql.DB
}

var _ engine.RecordStore = (*Store)(nil)

// New opens (creating if needed) the database at path and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		mrr        TEXT NOT NULL,
		currency   TEXT NOT NULL,
		active     INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS patterns (
		id           TEXT PRIMARY KEY,
		staff_id     TEXT NOT NULL,
		client_id    TEXT NOT NULL,
		weekdays     TEXT NOT NULL,
		recurrence   TEXT NOT NULL,
		start_date   TEXT NOT NULL,
		end_date     TEXT,
		shift_start  TEXT,
		shift_end    TEXT,
		hourly_rate  TEXT,
		rate_currency TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_patterns_window ON patterns(start_date, end_date);

	CREATE TABLE IF NOT EXISTS schedules (
		id        TEXT PRIMARY KEY,
		staff_id  TEXT NOT NULL,
		client_id TEXT NOT NULL,
		date      TEXT NOT NULL,
		hours     TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_schedules_date ON schedules(date);

	CREATE TABLE IF NOT EXISTS pay_records (
		id           TEXT PRIMARY KEY,
		staff_id     TEXT NOT NULL,
		type         TEXT NOT NULL,
		amount       TEXT NOT NULL,
		currency     TEXT NOT NULL,
		paid_at      TEXT NOT NULL,
		period_start TEXT,
		period_end   TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_pay_records_paid_at ON pay_records(paid_at);

	CREATE TABLE IF NOT EXISTS bonuses (
		id         TEXT PRIMARY KEY,
		staff_id   TEXT NOT NULL,
		amount     TEXT NOT NULL,
		currency   TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date   TEXT
	);

	CREATE TABLE IF NOT EXISTS overtime (
		id            TEXT PRIMARY KEY,
		staff_id      TEXT NOT NULL,
		hours         TEXT NOT NULL,
		hourly_rate   TEXT,
		rate_currency TEXT,
		date          TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_overtime_date ON overtime(date);

	CREATE TABLE IF NOT EXISTS staff_profiles (
		staff_id      TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		base_salary   TEXT NOT NULL,
		currency      TEXT NOT NULL,
		pay_frequency TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// =============================================================================
// ENCODING HELPERS
// =============================================================================

func encodeDate(tp engine.TimePoint) string { return tp.String() }

func encodeDatePtr(tp *engine.TimePoint) sql.NullString {
	if tp == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: tp.String(), Valid: true}
}

func decodeDate(s string) (engine.TimePoint, error) { return engine.ParseDate(s) }

func decodeDatePtr(ns sql.NullString) (*engine.TimePoint, error) {
	if !ns.Valid {
		return nil, nil
	}
	tp, err := engine.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &tp, nil
}

func encodeWeekdays(wds []time.Weekday) string {
	parts := make([]string, len(wds))
	for i, wd := range wds {
		parts[i] = strconv.Itoa(int(wd))
	}
	return strings.Join(parts, ",")
}

func decodeWeekdays(s string) ([]time.Weekday, error) {
	if s == "" {
		return nil, nil
	}
	var wds []time.Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("weekday %q: %w", part, engine.ErrInvalidRecord)
		}
		wds = append(wds, time.Weekday(n))
	}
	return wds, nil
}

func encodeClock(c *engine.ClockTime) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: fmt.Sprintf("%02d:%02d", c.Hour, c.Minute), Valid: true}
}

func decodeClock(ns sql.NullString) (*engine.ClockTime, error) {
	if !ns.Valid {
		return nil, nil
	}
	parts := strings.SplitN(ns.String, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("clock %q: %w", ns.String, engine.ErrInvalidRecord)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, err
	}
	return &engine.ClockTime{Hour: h, Minute: m}, nil
}

func encodeMoneyPtr(m *engine.Money) (sql.NullString, sql.NullString) {
	if m == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: m.Amount.String(), Valid: true},
		sql.NullString{String: m.Currency, Valid: true}
}

func decodeMoneyPtr(amount, currency sql.NullString) (*engine.Money, error) {
	if !amount.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(amount.String)
	if err != nil {
		return nil, err
	}
	return &engine.Money{Amount: d, Currency: currency.String}, nil
}

// =============================================================================
// READS
// =============================================================================

func (s *Store) Clients(ctx context.Context) ([]engine.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, mrr, currency, active FROM clients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var out []engine.Client
	for rows.Next() {
		var c engine.Client
		var mrr string
		var active int
		if err := rows.Scan(&c.ID, &c.Name, &mrr, &c.MRR.Currency, &active); err != nil {
			return nil, err
		}
		if c.MRR.Amount, err = decimal.NewFromString(mrr); err != nil {
			return nil, fmt.Errorf("client %s mrr: %w", c.ID, err)
		}
		c.Active = active != 0
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) PatternsOverlapping(ctx context.Context, period engine.Period) ([]engine.RecurringShiftPattern, error) {
	// Window intersection: start <= period end AND (end IS NULL OR end >= period start).
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, staff_id, client_id, weekdays, recurrence, start_date, end_date,
		       shift_start, shift_end, hourly_rate, rate_currency
		FROM patterns
		WHERE start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY staff_id, client_id, id`,
		encodeDate(period.End), encodeDate(period.Start))
	if err != nil {
		return nil, fmt.Errorf("query patterns: %w", err)
	}
	defer rows.Close()

	var out []engine.RecurringShiftPattern
	for rows.Next() {
		var p engine.RecurringShiftPattern
		var weekdays, start string
		var end, shiftStart, shiftEnd, rate, rateCur sql.NullString
		if err := rows.Scan(&p.ID, &p.StaffID, &p.Client, &weekdays, &p.Recurrence,
			&start, &end, &shiftStart, &shiftEnd, &rate, &rateCur); err != nil {
			return nil, err
		}
		if p.Weekdays, err = decodeWeekdays(weekdays); err != nil {
			return nil, err
		}
		if p.Start, err = decodeDate(start); err != nil {
			return nil, err
		}
		if p.End, err = decodeDatePtr(end); err != nil {
			return nil, err
		}
		if p.ShiftStart, err = decodeClock(shiftStart); err != nil {
			return nil, err
		}
		if p.ShiftEnd, err = decodeClock(shiftEnd); err != nil {
			return nil, err
		}
		if p.HourlyRate, err = decodeMoneyPtr(rate, rateCur); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) SchedulesInRange(ctx context.Context, period engine.Period) ([]engine.ScheduleEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, staff_id, client_id, date, hours
		FROM schedules WHERE date >= ? AND date <= ?
		ORDER BY date, id`,
		encodeDate(period.Start), encodeDate(period.End))
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	var out []engine.ScheduleEntry
	for rows.Next() {
		var e engine.ScheduleEntry
		var date, hours string
		if err := rows.Scan(&e.ID, &e.StaffID, &e.Client, &date, &hours); err != nil {
			return nil, err
		}
		if e.Date, err = decodeDate(date); err != nil {
			return nil, err
		}
		if e.Hours, err = decimal.NewFromString(hours); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) PayRecordsInRange(ctx context.Context, period engine.Period) ([]engine.PayRecord, error) {
	// Match by pay date, or by explicit pay-period window intersection
	// when one is tracked.
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, staff_id, type, amount, currency, paid_at, period_start, period_end
		FROM pay_records
		WHERE (period_start IS NULL AND paid_at >= ? AND paid_at <= ?)
		   OR (period_start IS NOT NULL AND period_start <= ? AND (period_end IS NULL OR period_end >= ?))
		ORDER BY paid_at, id`,
		encodeDate(period.Start), encodeDate(period.End),
		encodeDate(period.End), encodeDate(period.Start))
	if err != nil {
		return nil, fmt.Errorf("query pay records: %w", err)
	}
	defer rows.Close()

	var out []engine.PayRecord
	for rows.Next() {
		var r engine.PayRecord
		var amount, paidAt string
		var pStart, pEnd sql.NullString
		if err := rows.Scan(&r.ID, &r.StaffID, &r.Type, &amount, &r.Amount.Currency,
			&paidAt, &pStart, &pEnd); err != nil {
			return nil, err
		}
		if r.Amount.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		if r.PaidAt, err = decodeDate(paidAt); err != nil {
			return nil, err
		}
		if r.PeriodStart, err = decodeDatePtr(pStart); err != nil {
			return nil, err
		}
		if r.PeriodEnd, err = decodeDatePtr(pEnd); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) BonusesOverlapping(ctx context.Context, period engine.Period) ([]engine.RecurringBonus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, staff_id, amount, currency, start_date, end_date
		FROM bonuses
		WHERE start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY staff_id, id`,
		encodeDate(period.End), encodeDate(period.Start))
	if err != nil {
		return nil, fmt.Errorf("query bonuses: %w", err)
	}
	defer rows.Close()

	var out []engine.RecurringBonus
	for rows.Next() {
		var b engine.RecurringBonus
		var amount, start string
		var end sql.NullString
		if err := rows.Scan(&b.ID, &b.StaffID, &amount, &b.Amount.Currency, &start, &end); err != nil {
			return nil, err
		}
		if b.Amount.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		if b.Start, err = decodeDate(start); err != nil {
			return nil, err
		}
		if b.End, err = decodeDatePtr(end); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) OvertimeInRange(ctx context.Context, period engine.Period) ([]engine.OvertimeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, staff_id, hours, hourly_rate, rate_currency, date
		FROM overtime WHERE date >= ? AND date <= ?
		ORDER BY date, id`,
		encodeDate(period.Start), encodeDate(period.End))
	if err != nil {
		return nil, fmt.Errorf("query overtime: %w", err)
	}
	defer rows.Close()

	var out []engine.OvertimeRecord
	for rows.Next() {
		var ot engine.OvertimeRecord
		var hours, date string
		var rate, rateCur sql.NullString
		if err := rows.Scan(&ot.ID, &ot.StaffID, &hours, &rate, &rateCur, &date); err != nil {
			return nil, err
		}
		if ot.Hours, err = decimal.NewFromString(hours); err != nil {
			return nil, err
		}
		if ot.HourlyRate, err = decodeMoneyPtr(rate, rateCur); err != nil {
			return nil, err
		}
		if ot.Date, err = decodeDate(date); err != nil {
			return nil, err
		}
		out = append(out, ot)
	}
	return out, rows.Err()
}

func (s *Store) Profiles(ctx context.Context) ([]engine.StaffProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT staff_id, name, base_salary, currency, pay_frequency
		FROM staff_profiles ORDER BY staff_id`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var out []engine.StaffProfile
	for rows.Next() {
		var p engine.StaffProfile
		var salary string
		if err := rows.Scan(&p.StaffID, &p.Name, &salary, &p.BaseSalary.Currency, &p.PayFrequency); err != nil {
			return nil, err
		}
		if p.BaseSalary.Amount, err = decimal.NewFromString(salary); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// WRITES
// =============================================================================

func (s *Store) PutClient(ctx context.Context, c engine.Client) (engine.Client, error) {
	if c.Name == "" {
		return engine.Client{}, engine.ErrInvalidRecord
	}
	if c.ID == "" {
		c.ID = engine.ClientID(uuid.NewString())
	}
	active := 0
	if c.Active {
		active = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO clients (id, name, mrr, currency, active) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, mrr=excluded.mrr,
			currency=excluded.currency, active=excluded.active`,
		c.ID, c.Name, c.MRR.Amount.String(), c.MRR.Currency, active)
	if err != nil {
		return engine.Client{}, fmt.Errorf("put client: %w", err)
	}
	return c, nil
}

func (s *Store) PutPattern(ctx context.Context, p engine.RecurringShiftPattern) (engine.RecurringShiftPattern, error) {
	if err := p.Validate(); err != nil {
		return engine.RecurringShiftPattern{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	rate, rateCur := encodeMoneyPtr(p.HourlyRate)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO patterns (id, staff_id, client_id, weekdays, recurrence,
			start_date, end_date, shift_start, shift_end, hourly_rate, rate_currency)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.StaffID, p.Client, encodeWeekdays(p.Weekdays), p.Recurrence,
		encodeDate(p.Start), encodeDatePtr(p.End),
		encodeClock(p.ShiftStart), encodeClock(p.ShiftEnd), rate, rateCur)
	if err != nil {
		return engine.RecurringShiftPattern{}, fmt.Errorf("put pattern: %w", err)
	}
	return p, nil
}

func (s *Store) PutSchedule(ctx context.Context, e engine.ScheduleEntry) (engine.ScheduleEntry, error) {
	if e.StaffID == "" || e.Client == "" {
		return engine.ScheduleEntry{}, engine.ErrInvalidRecord
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedules (id, staff_id, client_id, date, hours) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.StaffID, e.Client, encodeDate(e.Date), e.Hours.String())
	if err != nil {
		return engine.ScheduleEntry{}, fmt.Errorf("put schedule: %w", err)
	}
	return e, nil
}

func (s *Store) PutPayRecord(ctx context.Context, r engine.PayRecord) (engine.PayRecord, error) {
	if r.StaffID == "" {
		return engine.PayRecord{}, engine.ErrInvalidRecord
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pay_records (id, staff_id, type, amount, currency, paid_at, period_start, period_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StaffID, r.Type, r.Amount.Amount.String(), r.Amount.Currency,
		encodeDate(r.PaidAt), encodeDatePtr(r.PeriodStart), encodeDatePtr(r.PeriodEnd))
	if err != nil {
		return engine.PayRecord{}, fmt.Errorf("put pay record: %w", err)
	}
	return r, nil
}

func (s *Store) PutBonus(ctx context.Context, b engine.RecurringBonus) (engine.RecurringBonus, error) {
	if b.StaffID == "" {
		return engine.RecurringBonus{}, engine.ErrInvalidRecord
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bonuses (id, staff_id, amount, currency, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.StaffID, b.Amount.Amount.String(), b.Amount.Currency,
		encodeDate(b.Start), encodeDatePtr(b.End))
	if err != nil {
		return engine.RecurringBonus{}, fmt.Errorf("put bonus: %w", err)
	}
	return b, nil
}

func (s *Store) PutOvertime(ctx context.Context, ot engine.OvertimeRecord) (engine.OvertimeRecord, error) {
	if ot.StaffID == "" {
		return engine.OvertimeRecord{}, engine.ErrInvalidRecord
	}
	if ot.ID == "" {
		ot.ID = uuid.NewString()
	}
	rate, rateCur := encodeMoneyPtr(ot.HourlyRate)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO overtime (id, staff_id, hours, hourly_rate, rate_currency, date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ot.ID, ot.StaffID, ot.Hours.String(), rate, rateCur, encodeDate(ot.Date))
	if err != nil {
		return engine.OvertimeRecord{}, fmt.Errorf("put overtime: %w", err)
	}
	return ot, nil
}

func (s *Store) PutProfile(ctx context.Context, p engine.StaffProfile) (engine.StaffProfile, error) {
	if p.StaffID == "" {
		return engine.StaffProfile{}, engine.ErrInvalidRecord
	}
	if p.PayFrequency == "" {
		p.PayFrequency = engine.FreqMonthly
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staff_profiles (staff_id, name, base_salary, currency, pay_frequency)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(staff_id) DO UPDATE SET name=excluded.name,
			base_salary=excluded.base_salary, currency=excluded.currency,
			pay_frequency=excluded.pay_frequency`,
		p.StaffID, p.Name, p.BaseSalary.Amount.String(), p.BaseSalary.Currency, p.PayFrequency)
	if err != nil {
		return engine.StaffProfile{}, fmt.Errorf("put profile: %w", err)
	}
	return p, nil
}
