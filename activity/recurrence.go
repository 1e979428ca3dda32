package activity

import (
	"cmp"
	"fmt"
	"slices"
	"smartcalendar/calendar"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

const maxOccurrencesPerActivity = 1000

// Occurrence is one concrete instance of a possibly recurring activity.
type Occurrence struct {
	ActivityID uuid.UUID           `json:"activity_id"`
	Name       string              `json:"name"`
	Date       calendar.Date       `json:"date"`
	StartTime  calendar.Clock      `json:"start_time"`
	EndTime    calendar.Clock      `json:"end_time"`
	Location   string              `json:"location"`
	Recurrence calendar.Recurrence `json:"recurrence"`
}

func occurrenceOf(a Activity, date calendar.Date) Occurrence {
	return Occurrence{
		ActivityID: a.ID,
		Name:       a.Name,
		Date:       date,
		StartTime:  a.StartTime,
		EndTime:    a.EndTime,
		Location:   a.Location,
		Recurrence: a.Recurrence.Normalize(),
	}
}

func frequency(r calendar.Recurrence) (rrule.Frequency, bool) {
	switch r.Normalize() {
	case calendar.RecurrenceDaily:
		return rrule.DAILY, true
	case calendar.RecurrenceWeekly:
		return rrule.WEEKLY, true
	case calendar.RecurrenceMonthly:
		return rrule.MONTHLY, true
	case calendar.RecurrenceYearly:
		return rrule.YEARLY, true
	}
	return 0, false
}

// Expand returns the occurrences of activities whose date lies in the
// inclusive range [from, to], sorted by date then start time.
func Expand(activities []Activity, from, to calendar.Date) ([]Occurrence, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("range end %s is before start %s", to, from)
	}

	occurrences := []Occurrence{}
	for _, a := range activities {
		freq, ok := frequency(a.Recurrence)
		if !ok {
			if !a.Date.Before(from) && !a.Date.After(to) {
				occurrences = append(occurrences, occurrenceOf(a, a.Date))
			}
			continue
		}

		rule, err := rrule.NewRRule(rrule.ROption{
			Freq:    freq,
			Dtstart: a.Date.At(0, time.UTC),
		})
		if err != nil {
			return nil, fmt.Errorf("recurrence rule for %s: %w", a.ID, err)
		}

		dates := rule.Between(from.At(0, time.UTC), to.At(0, time.UTC), true)
		if len(dates) > maxOccurrencesPerActivity {
			dates = dates[:maxOccurrencesPerActivity]
		}
		for _, d := range dates {
			occurrences = append(occurrences, occurrenceOf(a, calendar.DateOf(d)))
		}
	}

	slices.SortStableFunc(occurrences, func(x, y Occurrence) int {
		if x.Date != y.Date {
			if x.Date.Before(y.Date) {
				return -1
			}
			return 1
		}
		return cmp.Compare(x.StartTime, y.StartTime)
	})
	return occurrences, nil
}
