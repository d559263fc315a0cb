// Package store provides an in-memory RecordStore implementation for tests
// and development. The SQLite-backed production store lives in store/sqlite.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/warp/margin-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	clients   []engine.Client
	patterns  []engine.RecurringShiftPattern
	schedules []engine.ScheduleEntry
	payRecs   []engine.PayRecord
	bonuses   []engine.RecurringBonus
	overtime  []engine.OvertimeRecord
	profiles  map[engine.StaffID]engine.StaffProfile
}

var _ engine.RecordStore = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{profiles: make(map[engine.StaffID]engine.StaffProfile)}
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

func (m *Memory) Clients(_ context.Context) ([]engine.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]engine.Client(nil), m.clients...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) PatternsOverlapping(_ context.Context, period engine.Period) ([]engine.RecurringShiftPattern, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.RecurringShiftPattern
	for _, p := range m.patterns {
		if period.Overlaps(p.Start, p.End) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) SchedulesInRange(_ context.Context, period engine.Period) ([]engine.ScheduleEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.ScheduleEntry
	for _, s := range m.schedules {
		if period.Contains(s.Date) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *Memory) PayRecordsInRange(_ context.Context, period engine.Period) ([]engine.PayRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.PayRecord
	for _, r := range m.payRecs {
		if r.InPeriod(period) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) BonusesOverlapping(_ context.Context, period engine.Period) ([]engine.RecurringBonus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.RecurringBonus
	for _, b := range m.bonuses {
		if period.Overlaps(b.Start, b.End) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *Memory) OvertimeInRange(_ context.Context, period engine.Period) ([]engine.OvertimeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.OvertimeRecord
	for _, ot := range m.overtime {
		if period.Contains(ot.Date) {
			out = append(out, ot)
		}
	}
	return out, nil
}

func (m *Memory) Profiles(_ context.Context) ([]engine.StaffProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.StaffProfile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StaffID < out[j].StaffID })
	return out, nil
}

// -----------------------------------------------------------------------------
// Writes
// -----------------------------------------------------------------------------

func (m *Memory) PutClient(_ context.Context, c engine.Client) (engine.Client, error) {
	if c.Name == "" {
		return engine.Client{}, engine.ErrInvalidRecord
	}
	if c.ID == "" {
		c.ID = engine.ClientID(uuid.NewString())
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.clients {
		if m.clients[i].ID == c.ID {
			m.clients[i] = c
			return c, nil
		}
	}
	m.clients = append(m.clients, c)
	return c, nil
}

func (m *Memory) PutPattern(_ context.Context, p engine.RecurringShiftPattern) (engine.RecurringShiftPattern, error) {
	if err := p.Validate(); err != nil {
		return engine.RecurringShiftPattern{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = append(m.patterns, p)
	return p, nil
}

func (m *Memory) PutSchedule(_ context.Context, s engine.ScheduleEntry) (engine.ScheduleEntry, error) {
	if s.StaffID == "" || s.Client == "" {
		return engine.ScheduleEntry{}, engine.ErrInvalidRecord
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules = append(m.schedules, s)
	return s, nil
}

func (m *Memory) PutPayRecord(_ context.Context, r engine.PayRecord) (engine.PayRecord, error) {
	if r.StaffID == "" {
		return engine.PayRecord{}, engine.ErrInvalidRecord
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payRecs = append(m.payRecs, r)
	return r, nil
}

func (m *Memory) PutBonus(_ context.Context, b engine.RecurringBonus) (engine.RecurringBonus, error) {
	if b.StaffID == "" {
		return engine.RecurringBonus{}, engine.ErrInvalidRecord
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bonuses = append(m.bonuses, b)
	return b, nil
}

func (m *Memory) PutOvertime(_ context.Context, ot engine.OvertimeRecord) (engine.OvertimeRecord, error) {
	if ot.StaffID == "" {
		return engine.OvertimeRecord{}, engine.ErrInvalidRecord
	}
	if ot.ID == "" {
		ot.ID = uuid.NewString()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overtime = append(m.overtime, ot)
	return ot, nil
}

func (m *Memory) PutProfile(_ context.Context, p engine.StaffProfile) (engine.StaffProfile, error) {
	if p.StaffID == "" {
		return engine.StaffProfile{}, engine.ErrInvalidRecord
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.StaffID] = p
	return p, nil
}
