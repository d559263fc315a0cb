package engine

import "time"

// =============================================================================
// TIME POINT - Calendar-day abstraction
// =============================================================================

// TimePoint is a calendar day in UTC. All reporting math in this package is
// day-granular; wall-clock times only appear as shift start/end ClockTimes.
type TimePoint struct {
	Time time.Time
}

func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() TimePoint {
	now := time.Now().UTC()
	return NewTimePoint(now.Year(), now.Month(), now.Day())
}

// ParseDate parses an ISO-8601 date (2006-01-02).
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return TimePoint{}, err
	}
	return TimePoint{Time: t}, nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint   { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }
func (tp TimePoint) AddMonths(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, n, 0)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) String() string { return tp.Time.Format("2006-01-02") }

func (tp TimePoint) Min(other TimePoint) TimePoint {
	if other.Before(tp) {
		return other
	}
	return tp
}

func (tp TimePoint) Max(other TimePoint) TimePoint {
	if other.After(tp) {
		return other
	}
	return tp
}

// DaysBetween returns the whole-day distance from 'from' to 'to'.
// Negative when 'to' is before 'from'.
func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }

func EndOfMonth(year int, month time.Month) TimePoint {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return TimePoint{Time: t}
}

// =============================================================================
// CLOCK TIME - Wall-clock shift boundary (for hour-based share mode)
// =============================================================================

type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) MinutesFromMidnight() int { return c.Hour*60 + c.Minute }

// =============================================================================
// PERIOD - The reporting window
// =============================================================================

// Period is a closed date interval [Start, End], normally one calendar month.
// A period with End before Start is treated as empty everywhere, never as an
// error: upstream data entry cannot be trusted to be temporally consistent.
type Period struct {
	Start TimePoint
	End   TimePoint
}

// MonthPeriod returns the calendar-month period containing the given month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

func (p Period) IsEmpty() bool { return p.End.Before(p.Start) }

// Contains returns true if the day is within [Start, End].
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Overlaps reports whether [start, end) intersects the period. A nil end
// means the interval is open-ended.
func (p Period) Overlaps(start TimePoint, end *TimePoint) bool {
	if p.IsEmpty() {
		return false
	}
	if start.After(p.End) {
		return false
	}
	if end != nil && end.Before(p.Start) {
		return false
	}
	return true
}

// Clip returns the period restricted to [start, end]. A nil end leaves the
// period's own end in place. The result may be empty.
func (p Period) Clip(start TimePoint, end *TimePoint) Period {
	clipped := Period{Start: p.Start.Max(start), End: p.End}
	if end != nil {
		clipped.End = clipped.End.Min(*end)
	}
	return clipped
}

// Days returns every day in the period in order. Empty periods yield nil.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
