package date

import (
	"time"

	"github.com/pkg/errors"
)

// DayLayout is the key format of holiday dates
const DayLayout = "2006-01-02"

// searchHorizon bounds how far Add walks forward looking for working time
const searchHorizon = 10 * 366

// ErrConfiguration is returned when a rule set can not describe any working time
var ErrConfiguration = errors.New("invalid business hours configuration")

// ErrHorizonExceeded is raised when a duration does not fit into the working time of the search horizon
var ErrHorizonExceeded = errors.New("business duration exceeds the search horizon")

// ErrOrderingViolation is raised when a business time difference is asked for a reversed range
var ErrOrderingViolation = errors.New("start is after finish")

// WorkDayRule declares [Start, End) as working time on the given weekdays.
// Start and End are offsets from midnight.
type WorkDayRule struct {
	Start    time.Duration
	End      time.Duration
	Weekdays []time.Weekday
}

// LunchTimeRule excludes [Start, End) from working time on the given weekdays
type LunchTimeRule struct {
	Start    time.Duration
	End      time.Duration
	Weekdays []time.Weekday
}

// HolidayRule excludes whole days. Days are keyed by DayLayout, country holidays are resolved on demand.
type HolidayRule struct {
	Country string
	Days    map[string]string
}

// Name returns the name of the holiday on day, if there is one
func (r *HolidayRule) Name(day time.Time) (string, bool) {
	if name, ok := r.Days[day.Format(DayLayout)]; ok {
		return name, true
	}

	lookup, ok := countryHolidays[r.Country]
	if !ok || lookup == nil {
		return "", false
	}

	return lookup(day)
}

// BusinessHours describes which parts of which days count as working time.
// All calculations happen on the wall clock of Location.
type BusinessHours struct {
	Location *time.Location
	WorkDays []WorkDayRule
	Lunches  []LunchTimeRule
	Holidays HolidayRule
}

func appliesTo(weekdays []time.Weekday, weekday time.Weekday) bool {
	for _, w := range weekdays {
		if w == weekday {
			return true
		}
	}
	return false
}

// Validate checks that the rules describe at least some working time
func (b *BusinessHours) Validate() error {
	if b.Location == nil {
		return errors.Wrap(ErrConfiguration, "no location set")
	}

	if len(b.WorkDays) == 0 {
		return errors.Wrap(ErrConfiguration, "no working days defined")
	}

	for _, rule := range b.WorkDays {
		if len(rule.Weekdays) == 0 {
			return errors.Wrap(ErrConfiguration, "working day rule without weekdays")
		}
		if rule.Start < 0 || rule.End > 24*time.Hour || rule.Start >= rule.End {
			return errors.Wrapf(ErrConfiguration, "working window %s-%s is empty", rule.Start, rule.End)
		}
	}

	for _, rule := range b.Lunches {
		if rule.Start < 0 || rule.End > 24*time.Hour || rule.Start >= rule.End {
			return errors.Wrapf(ErrConfiguration, "lunch window %s-%s is empty", rule.Start, rule.End)
		}
	}

	if _, ok := countryHolidays[b.Holidays.Country]; !ok {
		return errors.Wrapf(ErrConfiguration, "unknown holiday country %q", b.Holidays.Country)
	}

	return nil
}

// WithHolidays returns a copy of the business hours with additional days off
func (b *BusinessHours) WithHolidays(days map[string]string) *BusinessHours {
	merged := make(map[string]string, len(b.Holidays.Days)+len(days))
	for day, name := range b.Holidays.Days {
		merged[day] = name
	}
	for day, name := range days {
		merged[day] = name
	}

	copied := *b
	copied.Holidays = HolidayRule{Country: b.Holidays.Country, Days: merged}
	return &copied
}

// Local strips zone information by moving t onto the wall clock of the business location
func (b *BusinessHours) Local(t time.Time) time.Time {
	t = t.In(b.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), b.Location)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func nextDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day()+1, 0, 0, 0, 0, day.Location())
}

func atClock(day time.Time, clock time.Duration) time.Time {
	hours := int(clock / time.Hour)
	minutes := int(clock % time.Hour / time.Minute)
	seconds := int(clock % time.Minute / time.Second)
	return time.Date(day.Year(), day.Month(), day.Day(), hours, minutes, seconds, 0, day.Location())
}

// DayStart returns the earliest working clock time on the day of t, e.g. 09:00
func (b *BusinessHours) DayStart(t time.Time) time.Time {
	day := midnight(b.Local(t))
	if len(b.WorkDays) == 0 {
		return day
	}

	earliest := b.WorkDays[0].Start
	for _, rule := range b.WorkDays[1:] {
		if rule.Start < earliest {
			earliest = rule.Start
		}
	}

	return atClock(day, earliest)
}

// WorkingSpans returns the sorted working timespans of the day t falls on
func (b *BusinessHours) WorkingSpans(t time.Time) []Timespan {
	day := midnight(b.Local(t))

	if _, ok := b.Holidays.Name(day); ok {
		return nil
	}

	var spans []Timespan
	for _, rule := range b.WorkDays {
		if !appliesTo(rule.Weekdays, day.Weekday()) {
			continue
		}
		spans = append(spans, Timespan{Start: atClock(day, rule.Start), End: atClock(day, rule.End)})
	}

	spans = MergeTimespans(spans)

	for _, lunch := range b.Lunches {
		if !appliesTo(lunch.Weekdays, day.Weekday()) {
			continue
		}
		spans = SubtractTimespan(spans, Timespan{Start: atClock(day, lunch.Start), End: atClock(day, lunch.End)})
	}

	return spans
}

// IsWorkingTime reports whether t lies inside working time
func (b *BusinessHours) IsWorkingTime(t time.Time) bool {
	t = b.Local(t)
	for _, span := range b.WorkingSpans(t) {
		if span.ContainsStartOf(t) {
			return true
		}
	}
	return false
}

// Difference returns the working time elapsed between start and finish.
// A finish before start is a programming error and panics with ErrOrderingViolation.
func (b *BusinessHours) Difference(start time.Time, finish time.Time) time.Duration {
	start = b.Local(start)
	finish = b.Local(finish)

	if finish.Before(start) {
		panic(errors.Wrapf(ErrOrderingViolation, "%s > %s", start, finish))
	}

	var total time.Duration
	for day := midnight(start); day.Before(finish); day = nextDay(day) {
		for _, span := range b.WorkingSpans(day) {
			total += span.Overlap(start, finish)
		}
	}

	return total
}

// Add returns the moment reached after duration of working time has elapsed from t.
// Non working spans are skipped entirely, a zero duration moves t to the next working moment.
func (b *BusinessHours) Add(t time.Time, duration time.Duration) time.Time {
	if duration < 0 {
		panic(errors.Wrapf(ErrOrderingViolation, "negative business duration %s", duration))
	}

	t = b.Local(t)
	remaining := duration
	found := false

	day := midnight(t)
	for i := 0; i < searchHorizon; i++ {
		for _, span := range b.WorkingSpans(day) {
			if TimeBeforeOrEquals(span.End, t) {
				continue
			}
			found = true

			start := maxTime(span.Start, t)
			available := span.End.Sub(start)
			if remaining <= available {
				return start.Add(remaining)
			}

			remaining -= available
		}
		day = nextDay(day)
	}

	if found {
		panic(errors.Wrapf(ErrHorizonExceeded, "%s after %s", duration, t))
	}
	panic(errors.Wrapf(ErrConfiguration, "no working time found within %d days after %s", searchHorizon, t))
}

// Normalize moves t forward to the next moment that is working time
func (b *BusinessHours) Normalize(t time.Time) time.Time {
	return b.Add(t, 0)
}
