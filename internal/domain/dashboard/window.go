package dashboard

import (
	"fmt"
	"time"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
)

// WindowMode represents how the administrator picked the dashboard time window
type WindowMode string

const (
	WindowToday     WindowMode = "today"
	WindowYesterday WindowMode = "yesterday"
	WindowThisWeek  WindowMode = "thisWeek"
	WindowThisMonth WindowMode = "thisMonth"
	WindowLastMonth WindowMode = "lastMonth"
	WindowCustom    WindowMode = "custom"
)

// DateLayout is the wire format used for window bounds
const DateLayout = "2006-01-02"

var (
	ErrInvalidWindowMode   = shared.NewDomainError("INVALID_WINDOW", "Unknown time window mode")
	ErrCustomRangeRequired = shared.NewDomainError("INVALID_WINDOW", "Custom window requires a start and end date")
	ErrInvalidRange        = shared.NewDomainError("INVALID_WINDOW", "Start date must not be after end date")
)

// IsValid checks if the mode is a known WindowMode
func (m WindowMode) IsValid() bool {
	switch m {
	case WindowToday, WindowYesterday, WindowThisWeek, WindowThisMonth, WindowLastMonth, WindowCustom:
		return true
	}
	return false
}

// String returns the string representation of WindowMode
func (m WindowMode) String() string {
	return string(m)
}

// ParseWindowMode converts a raw mode string, defaulting empty input to today
func ParseWindowMode(raw string) (WindowMode, error) {
	if raw == "" {
		return WindowToday, nil
	}
	mode := WindowMode(raw)
	if !mode.IsValid() {
		return "", ErrInvalidWindowMode
	}
	return mode, nil
}

// TimeWindow is a resolved, immutable date range used to scope metric queries.
// StartDate and EndDate are calendar days at midnight in the resolver's location.
type TimeWindow struct {
	Mode      WindowMode `json:"mode"`
	StartDate time.Time  `json:"startDate"`
	EndDate   time.Time  `json:"endDate"`
	Label     string     `json:"label"`
}

// StartParam returns the start date in wire format
func (w TimeWindow) StartParam() string {
	return w.StartDate.Format(DateLayout)
}

// EndParam returns the end date in wire format
func (w TimeWindow) EndParam() string {
	return w.EndDate.Format(DateLayout)
}

// Days returns the number of calendar days covered by the window
func (w TimeWindow) Days() int {
	return int((w.EndDate.Sub(w.StartDate)+12*time.Hour)/(24*time.Hour)) + 1
}

// DateRange is an explicit range picked by the administrator
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Clock supplies the current instant
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

// Now returns the current instant
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock returns a Clock backed by time.Now
func SystemClock() Clock {
	return ClockFunc(time.Now)
}

// DateRangeResolver turns a window mode into concrete calendar bounds.
// It holds no mutable state; the result depends only on the mode, the explicit
// range and the clock.
type DateRangeResolver struct {
	clock     Clock
	weekStart time.Weekday
	location  *time.Location
}

// ResolverOption configures a DateRangeResolver
type ResolverOption func(*DateRangeResolver)

// WithWeekStart sets the first day of the week used by thisWeek
func WithWeekStart(day time.Weekday) ResolverOption {
	return func(r *DateRangeResolver) {
		r.weekStart = day
	}
}

// WithLocation sets the calendar location used to compute day boundaries
func WithLocation(loc *time.Location) ResolverOption {
	return func(r *DateRangeResolver) {
		if loc != nil {
			r.location = loc
		}
	}
}

// NewDateRangeResolver creates a resolver. Weeks start on Monday unless configured.
func NewDateRangeResolver(clock Clock, opts ...ResolverOption) *DateRangeResolver {
	if clock == nil {
		clock = SystemClock()
	}
	r := &DateRangeResolver{
		clock:     clock,
		weekStart: time.Monday,
		location:  time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve computes the window for mode. explicit is required for custom and
// ignored otherwise.
func (r *DateRangeResolver) Resolve(mode WindowMode, explicit *DateRange) (TimeWindow, error) {
	today := startOfDay(r.clock.Now().In(r.location))

	switch mode {
	case WindowToday:
		return TimeWindow{Mode: mode, StartDate: today, EndDate: today, Label: "Today"}, nil
	case WindowYesterday:
		y := today.AddDate(0, 0, -1)
		return TimeWindow{Mode: mode, StartDate: y, EndDate: y, Label: "Yesterday"}, nil
	case WindowThisWeek:
		offset := (int(today.Weekday()) - int(r.weekStart) + 7) % 7
		return TimeWindow{Mode: mode, StartDate: today.AddDate(0, 0, -offset), EndDate: today, Label: "This Week"}, nil
	case WindowThisMonth:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, r.location)
		return TimeWindow{Mode: mode, StartDate: first, EndDate: today, Label: "This Month"}, nil
	case WindowLastMonth:
		first := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, r.location)
		last := time.Date(today.Year(), today.Month(), 0, 0, 0, 0, 0, r.location)
		return TimeWindow{Mode: mode, StartDate: first, EndDate: last, Label: first.Format("January 2006")}, nil
	case WindowCustom:
		return r.resolveCustom(explicit)
	}
	return TimeWindow{}, ErrInvalidWindowMode
}

// ResolveMonth returns a custom window covering the whole calendar month
// containing any day of the given year and month.
func (r *DateRangeResolver) ResolveMonth(year int, month time.Month) TimeWindow {
	first := time.Date(year, month, 1, 0, 0, 0, 0, r.location)
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, r.location)
	return TimeWindow{Mode: WindowCustom, StartDate: first, EndDate: last, Label: first.Format("January 2006")}
}

func (r *DateRangeResolver) resolveCustom(explicit *DateRange) (TimeWindow, error) {
	if explicit == nil || explicit.Start.IsZero() || explicit.End.IsZero() {
		return TimeWindow{}, ErrCustomRangeRequired
	}
	start := r.calendarDay(explicit.Start)
	end := r.calendarDay(explicit.End)
	if start.After(end) {
		return TimeWindow{}, ErrInvalidRange
	}
	label := fmt.Sprintf("%s - %s", start.Format("02 Jan 2006"), end.Format("02 Jan 2006"))
	if start.Equal(end) {
		label = start.Format("02 Jan 2006")
	}
	return TimeWindow{Mode: WindowCustom, StartDate: start, EndDate: end, Label: label}, nil
}

// calendarDay keeps the picked calendar date as written, whatever zone it was parsed in
func (r *DateRangeResolver) calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.location)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
