package calendar

import (
	"fmt"
	"strings"
)

type Recurrence string

const (
	RecurrenceNone    Recurrence = "NONE"
	RecurrenceDaily   Recurrence = "DAILY"
	RecurrenceWeekly  Recurrence = "WEEKLY"
	RecurrenceMonthly Recurrence = "MONTHLY"
	RecurrenceYearly  Recurrence = "YEARLY"
)

// Normalize upper-cases r and maps the empty value to RecurrenceNone.
func (r Recurrence) Normalize() Recurrence {
	if r == "" {
		return RecurrenceNone
	}
	return Recurrence(strings.ToUpper(string(r)))
}

func (r Recurrence) Validate() error {
	switch r.Normalize() {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return nil
	}
	return fmt.Errorf("unknown recurrence %q", string(r))
}

func (r Recurrence) Repeats() bool {
	return r.Normalize() != RecurrenceNone
}
