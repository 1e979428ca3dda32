package activity

import (
	"fmt"
	"smartcalendar/calendar"

	"github.com/google/uuid"
)

// Candidate is the time range of an activity about to be saved.
type Candidate struct {
	Date      calendar.Date
	StartTime calendar.Clock
	EndTime   calendar.Clock
}

func CandidateOf(a Activity) Candidate {
	return Candidate{Date: a.Date, StartTime: a.StartTime, EndTime: a.EndTime}
}

type InvalidRangeError struct {
	Start calendar.Clock
	End   calendar.Clock
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid time range %s-%s: start must be before end", e.Start, e.End)
}

// FindOverlaps returns one warning per activity in existing that shares time
// with candidate on the same date. Ranges are half-open, so activities that
// only touch at a boundary do not overlap. Warnings follow the order of
// existing; nil means no conflict.
func FindOverlaps(candidate Candidate, existing []Activity) ([]string, error) {
	if candidate.EndTime < candidate.StartTime {
		return nil, &InvalidRangeError{Start: candidate.StartTime, End: candidate.EndTime}
	}
	if candidate.EndTime == candidate.StartTime {
		return nil, nil
	}

	var warnings []string
	for _, a := range existing {
		if a.Date != candidate.Date {
			continue
		}
		if candidate.StartTime < a.EndTime && a.StartTime < candidate.EndTime {
			warnings = append(warnings, OverlapWarning(a))
		}
	}
	return warnings, nil
}

func OverlapWarning(a Activity) string {
	return fmt.Sprintf("Overlaps with %q (%s-%s)", a.Name, a.StartTime, a.EndTime)
}

// Without returns activities minus the one with the given id.
func Without(activities []Activity, id uuid.UUID) []Activity {
	out := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}
