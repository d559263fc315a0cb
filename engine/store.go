/*
store.go - Persistence interface for the engine's input records

PURPOSE:
  Defines the boundary between the pure engine and whatever persists the
  raw records. The engine never touches a store: callers query these
  interfaces, join the results into a ReportInput, and hand it over.

QUERY SHAPE:
  All reads are simple range/equality predicates - records by period
  window, clients by active status. No joins, no aggregation: aggregation
  is the engine's job, so every store implementation stays trivial.

IMPLEMENTATIONS:
  - engine/store: in-memory (tests, dev)
  - store/sqlite: production SQLite
*/
package engine

import "context"

// RecordReader is the read side: everything a report computation fetches.
// The fetches are independent and order-insensitive; callers may issue
// them concurrently and join before invoking the engine.
type RecordReader interface {
	// Clients returns all clients, active and inactive, in name order.
	Clients(ctx context.Context) ([]Client, error)

	// PatternsOverlapping returns patterns whose [Start, End] window
	// intersects the period (open-ended patterns match any period at or
	// after their start).
	PatternsOverlapping(ctx context.Context, period Period) ([]RecurringShiftPattern, error)

	// SchedulesInRange returns one-off schedule entries dated inside the
	// period.
	SchedulesInRange(ctx context.Context, period Period) ([]ScheduleEntry, error)

	// PayRecordsInRange returns pay records belonging to the period,
	// either by pay date or by explicit pay-period window intersection.
	PayRecordsInRange(ctx context.Context, period Period) ([]PayRecord, error)

	// BonusesOverlapping returns recurring bonuses whose interval
	// overlaps the period.
	BonusesOverlapping(ctx context.Context, period Period) ([]RecurringBonus, error)

	// OvertimeInRange returns overtime records dated inside the period.
	OvertimeInRange(ctx context.Context, period Period) ([]OvertimeRecord, error)

	// Profiles returns all staff profiles.
	Profiles(ctx context.Context) ([]StaffProfile, error)
}

// RecordWriter is the write side used by the API's record endpoints.
// Implementations mint IDs for records submitted without one.
type RecordWriter interface {
	PutClient(ctx context.Context, c Client) (Client, error)
	PutPattern(ctx context.Context, p RecurringShiftPattern) (RecurringShiftPattern, error)
	PutSchedule(ctx context.Context, s ScheduleEntry) (ScheduleEntry, error)
	PutPayRecord(ctx context.Context, r PayRecord) (PayRecord, error)
	PutBonus(ctx context.Context, b RecurringBonus) (RecurringBonus, error)
	PutOvertime(ctx context.Context, ot OvertimeRecord) (OvertimeRecord, error)
	PutProfile(ctx context.Context, p StaffProfile) (StaffProfile, error)
}

// RecordStore combines both sides.
type RecordStore interface {
	RecordReader
	RecordWriter
}
