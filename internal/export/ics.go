// Package export writes expanded instances as an iCalendar feed.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/hray3182/DoseLine/internal/models"
)

const (
	productID = "-//DoseLine//Reminders//EN"
	// PropStatus carries the derived instance status, which has no
	// VEVENT equivalent.
	PropStatus = "X-DOSELINE-STATUS"

	eventLength = 15 * time.Minute
)

// Calendar builds a VCALENDAR with one VEVENT per instance. Untimed
// instances become all-day events.
func Calendar(insts []models.Instance, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	for _, inst := range insts {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, inst.UniqueID+"@doseline")
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		event.Props.SetText(ical.PropSummary, inst.Title)
		if inst.HasTime {
			event.Props.SetDateTime(ical.PropDateTimeStart, inst.At.UTC())
			event.Props.SetDateTime(ical.PropDateTimeEnd, inst.At.Add(eventLength).UTC())
		} else {
			event.Props.SetDate(ical.PropDateTimeStart, inst.At)
		}
		if src := inst.SourceReminder; src != nil {
			if src.Instructions != "" {
				event.Props.SetText(ical.PropDescription, src.Instructions)
			}
			if src.Type != "" {
				event.Props.SetText(ical.PropCategories, src.Type)
			}
			if src.IsImportant {
				event.Props.SetText(ical.PropPriority, "1")
			}
		}
		event.Props.SetText(PropStatus, string(inst.Status))
		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

// WriteICS encodes insts to w.
func WriteICS(w io.Writer, insts []models.Instance, stamp time.Time) error {
	if err := ical.NewEncoder(w).Encode(Calendar(insts, stamp)); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
