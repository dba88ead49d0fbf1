package analytics

import (
	"fmt"
	"time"
)

// Period selects the time window a dashboard computation is scoped to.
type Period string

const (
	PeriodToday   Period = "today"
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
	PeriodCustom  Period = "custom"
)

// Window is a resolved [start, end] instant pair.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowResolver turns a period selector into a concrete window anchored to
// calendar-day boundaries in a single fixed civil timezone, so that "today"
// means the same calendar day for every caller regardless of where the
// request originates.
type WindowResolver struct {
	loc *time.Location
}

// NewWindowResolver creates a resolver for the given IANA timezone name.
func NewWindowResolver(timezone string) (*WindowResolver, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load report timezone %q: %w", timezone, err)
	}
	return &WindowResolver{loc: loc}, nil
}

// Location returns the resolver's fixed timezone.
func (r *WindowResolver) Location() *time.Location {
	return r.loc
}

// trailing window lengths in calendar days.
var periodDays = map[Period]int{
	PeriodToday:   1,
	PeriodWeek:    7,
	PeriodMonth:   30,
	PeriodQuarter: 90,
	PeriodYear:    365,
}

// Resolve computes the window for the given period, evaluated at now.
// week/month/quarter/year are trailing 7/30/90/365-day windows ending at the
// current day's end, not calendar-aligned periods. custom uses the supplied
// instants verbatim, without day-boundary snapping, and fails with
// ErrInvalidWindow when either bound is missing.
func (r *WindowResolver) Resolve(now time.Time, period Period, custom *Window) (Window, error) {
	if period == PeriodCustom {
		if custom == nil || custom.Start.IsZero() || custom.End.IsZero() {
			return Window{}, ErrInvalidWindow
		}
		return *custom, nil
	}

	days, ok := periodDays[period]
	if !ok {
		return Window{}, fmt.Errorf("unknown period %q", period)
	}

	local := now.In(r.loc)
	return Window{
		Start: dayStart(local.AddDate(0, 0, -(days - 1))),
		End:   dayEnd(local),
	}, nil
}

// dayStart returns 00:00:00.000 of t's calendar day in t's location.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dayEnd returns 23:59:59.999 of t's calendar day in t's location.
func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// DayKey formats an instant as its calendar-day key in the given location.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
