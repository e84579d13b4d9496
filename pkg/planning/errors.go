package planning

import "github.com/pkg/errors"

// ErrMissingDuration is returned when a work unit has neither a subtask duration nor a usable planned window
var ErrMissingDuration = errors.New("work unit has no duration")

// ErrDurationTooLong is returned when a work unit does not fit into the calendar's search horizon
var ErrDurationTooLong = errors.New("work unit duration is too long")
