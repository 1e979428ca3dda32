package activity

import (
	"errors"
	"fmt"
	"smartcalendar/calendar"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("activity not found")

type Activity struct {
	ID          uuid.UUID           `json:"id"`
	UserID      uuid.UUID           `json:"user_id"`
	CategoryID  uuid.NullUUID       `json:"category_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Date        calendar.Date       `json:"date"`
	StartTime   calendar.Clock      `json:"start_time"`
	EndTime     calendar.Clock      `json:"end_time"`
	Location    string              `json:"location"`
	Recurrence  calendar.Recurrence `json:"recurrence"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (a *Activity) Validate() error {
	if a.Name == "" {
		return errors.New("name is required")
	}
	if a.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}
	if a.Date.IsZero() {
		return errors.New("date is required")
	}
	if !a.StartTime.Valid() || !a.EndTime.Valid() {
		return errors.New("start and end time must be within the day")
	}
	if a.StartTime >= a.EndTime {
		return &InvalidRangeError{Start: a.StartTime, End: a.EndTime}
	}
	if err := a.Recurrence.Validate(); err != nil {
		return fmt.Errorf("recurrence: %w", err)
	}
	return nil
}

// Starts returns the activity's start instant in loc.
func (a *Activity) Starts(loc *time.Location) time.Time {
	return a.Date.At(a.StartTime, loc)
}

func (a *Activity) Ends(loc *time.Location) time.Time {
	return a.Date.At(a.EndTime, loc)
}

type Stats struct {
	Total    int `json:"total"`
	Upcoming int `json:"upcoming"`
	Ongoing  int `json:"ongoing"`
}

// ComputeStats counts activities that have not started yet and those in
// progress at now.
func ComputeStats(activities []Activity, now time.Time) Stats {
	stats := Stats{Total: len(activities)}
	for _, a := range activities {
		start, end := a.Starts(now.Location()), a.Ends(now.Location())
		switch {
		case now.Before(start):
			stats.Upcoming++
		case now.Before(end):
			stats.Ongoing++
		}
	}
	return stats
}
