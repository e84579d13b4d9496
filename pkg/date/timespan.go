package date

import (
	"fmt"
	"sort"
	"time"
)

// TimeBeforeOrEquals returns whether t1 is before or equal t2
func TimeBeforeOrEquals(t1 time.Time, t2 time.Time) bool {
	return !t1.After(t2)
}

// TimeAfterOrEquals returns whether t1 is after or equal t2
func TimeAfterOrEquals(t1 time.Time, t2 time.Time) bool {
	return !t1.Before(t2)
}

// Timespan is a simple timespan between to times/dates
type Timespan struct {
	Start time.Time `json:"start" bson:"start"`
	End   time.Time `json:"end" bson:"end"`
}

// Duration simply get the duration of a Timespan
func (t *Timespan) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// IsStartBeforeEnd checks if start is earlier than end
func (t *Timespan) IsStartBeforeEnd() bool {
	return t.Start.Before(t.End)
}

// String prints a timespan string
func (t *Timespan) String() string {
	return fmt.Sprintf("%s - %s", t.Start.Format("2006-01-02 15:04"), t.End.Format("2006-01-02 15:04"))
}

// In changes the location on a Timespan
func (t *Timespan) In(location *time.Location) Timespan {
	return Timespan{Start: t.Start.In(location), End: t.End.In(location)}
}

// IntersectsWith checks if one timespan intersects with another
func (t *Timespan) IntersectsWith(timespan Timespan) bool {
	return t.Start.Before(timespan.End) && t.End.After(timespan.Start)
}

// Contains checks if one timespan t contains another Timespan timespan
func (t *Timespan) Contains(timespan Timespan) bool {
	return TimeAfterOrEquals(timespan.Start, t.Start) && TimeBeforeOrEquals(timespan.End, t.End)
}

// ContainsStartOf reports whether moment lies in [Start, End)
func (t *Timespan) ContainsStartOf(moment time.Time) bool {
	return TimeAfterOrEquals(moment, t.Start) && moment.Before(t.End)
}

// ContainsEndOf reports whether moment lies in (Start, End]
func (t *Timespan) ContainsEndOf(moment time.Time) bool {
	return moment.After(t.Start) && TimeBeforeOrEquals(moment, t.End)
}

// Overlap returns how much of t lies inside the given bounds
func (t *Timespan) Overlap(from time.Time, to time.Time) time.Duration {
	start := maxTime(t.Start, from)
	end := minTime(t.End, to)
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// MergeTimespans merges Timespan structs together in case they overlap or touch, they don't have to be presorted.
// The input slice is left untouched.
func MergeTimespans(timespans []Timespan) []Timespan {
	if len(timespans) == 0 {
		return nil
	}

	sorted := make([]Timespan, len(timespans))
	copy(sorted, timespans)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	index := 0

	for i := 1; i < len(sorted); i++ {
		if TimeAfterOrEquals(sorted[index].End, sorted[i].Start) {
			sorted[index].End = maxTime(sorted[index].End, sorted[i].End)
		} else {
			index++
			sorted[index] = sorted[i]
		}
	}

	return sorted[:index+1]
}

// SubtractTimespan cuts the given timespan out of every span, spans have to be sorted
func SubtractTimespan(spans []Timespan, cut Timespan) []Timespan {
	if !cut.IsStartBeforeEnd() {
		return spans
	}

	var result []Timespan
	for _, span := range spans {
		if !span.IntersectsWith(cut) {
			result = append(result, span)
			continue
		}

		if span.Start.Before(cut.Start) {
			result = append(result, Timespan{Start: span.Start, End: cut.Start})
		}

		if span.End.After(cut.End) {
			result = append(result, Timespan{Start: cut.End, End: span.End})
		}
	}

	return result
}
