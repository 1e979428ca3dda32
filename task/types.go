package task

import (
	"errors"
	"fmt"
	"smartcalendar/activity"
	"smartcalendar/calendar"
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID          uuid.UUID           `json:"id"`
	UserID      uuid.UUID           `json:"user_id"`
	CategoryID  uuid.NullUUID       `json:"category_id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Date        calendar.Date       `json:"date"`
	Location    string              `json:"location"`
	Completed   bool                `json:"completed"`
	Recurrence  calendar.Recurrence `json:"recurrence"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (t *Task) Validate() error {
	if t.Name == "" {
		return errors.New("name is required")
	}
	if t.UserID == uuid.Nil {
		return errors.New("user ID is required")
	}
	if err := t.Recurrence.Validate(); err != nil {
		return fmt.Errorf("recurrence: %w", err)
	}
	return nil
}

// Activity schedules the task on date between start and end. The task's
// descriptive fields carry over.
func (t *Task) Activity(date calendar.Date, start, end calendar.Clock) activity.Activity {
	return activity.Activity{
		UserID:      t.UserID,
		CategoryID:  t.CategoryID,
		Name:        t.Name,
		Description: t.Description,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Location:    t.Location,
		Recurrence:  t.Recurrence.Normalize(),
	}
}

type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}
