package models

import "time"

// Instance is one concrete occurrence derived from a ReminderDefinition.
// Instances are recomputed on every read and never stored.
type Instance struct {
	UniqueID    string     `json:"uniqueId"`
	InstanceKey string     `json:"instanceKey"`
	Date        string     `json:"date"`
	DisplayTime string     `json:"displayTime"`
	Status      Status     `json:"status"`
	TakenAt     *time.Time `json:"takenAt"`
	Title       string     `json:"title"`

	// At is the effective moment after exceptions and snoozes. Untimed
	// instances use local midnight of Date.
	At      time.Time `json:"-"`
	HasTime bool      `json:"-"`

	SourceReminder *ReminderDefinition `json:"sourceReminder"`
}

// Actionable reports whether the user can still act on the instance.
func (i *Instance) Actionable() bool {
	return i.Status == StatusUpcoming || i.Status == StatusSnoozed
}
