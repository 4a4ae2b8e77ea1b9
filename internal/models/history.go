package models

import "time"

// HistoryEntry is one immutable completion event in the ledger.
type HistoryEntry struct {
	ID          string    `json:"id"`
	ReminderID  ID        `json:"reminderId"`
	InstanceKey string    `json:"instanceKey,omitempty"`
	Title       string    `json:"title"`
	Type        string    `json:"type,omitempty"`
	Status      Status    `json:"status"`
	Date        string    `json:"date"`
	Timestamp   time.Time `json:"timestamp"`
}
