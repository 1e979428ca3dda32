package activity

import (
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
)

// ExportICS renders activities as an iCalendar document. Clock times are
// interpreted in loc.
func ExportICS(activities []Activity, loc *time.Location, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SmartCalendar//Activities//EN")

	for _, a := range activities {
		event := cal.AddEvent(a.ID.String() + "@smartcalendar")
		event.SetDtStampTime(now)
		event.SetCreatedTime(a.CreatedAt)
		event.SetModifiedAt(a.UpdatedAt)
		event.SetStartAt(a.Starts(loc))
		event.SetEndAt(a.Ends(loc))
		event.SetSummary(a.Name)
		if a.Description != "" {
			event.SetDescription(a.Description)
		}
		if a.Location != "" {
			event.SetLocation(a.Location)
		}
		if freq, ok := frequency(a.Recurrence); ok {
			opt := rrule.ROption{Freq: freq}
			event.AddProperty(ics.ComponentPropertyRrule, opt.RRuleString())
		}
	}

	return cal.Serialize()
}
