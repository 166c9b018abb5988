package tracking

import (
	"time"
)

// Status is the lifecycle state of a tracked document.
type Status string

const (
	StatusSending       Status = "SENDING"
	StatusTransitDaNang Status = "TRANSIT_DA_NANG"
	StatusTransitHCM    Status = "TRANSIT_HCM"
	StatusProcessing    Status = "PROCESSING"
	StatusCompleted     Status = "COMPLETED"
	StatusReturned      Status = "RETURNED"
)

// AllStatuses lists every valid status value, in step order.
func AllStatuses() []Status {
	return []Status{
		StatusSending,
		StatusTransitDaNang,
		StatusTransitHCM,
		StatusProcessing,
		StatusCompleted,
		StatusReturned,
	}
}

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusSending, StatusTransitDaNang, StatusTransitHCM,
		StatusProcessing, StatusCompleted, StatusReturned:
		return true
	}
	return false
}

// IsTerminal reports whether s is excluded from bottleneck sweeps.
// COMPLETED and RETURNED are treated as final by consumers even though
// the engine still accepts actions on them.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusReturned
}

// EntryType classifies a history entry.
type EntryType string

const (
	EntryIn    EntryType = "in"
	EntryOut   EntryType = "out"
	EntryInfo  EntryType = "info"
	EntryError EntryType = "error"
)

// Document is one physical dossier under tracking. The id doubles as the
// QR token printed on the paper folder (one token per document).
type Document struct {
	ID            string     `json:"id" db:"id"`
	QRCode        string     `json:"qr_code" db:"qr_code"`
	Title         string     `json:"title" db:"title"`
	Description   string     `json:"description" db:"description"`
	Department    string     `json:"department" db:"department_id"`
	Category      string     `json:"category" db:"category_id"`
	CurrentStatus Status     `json:"current_status" db:"current_status"`
	CurrentHolder string     `json:"current_holder" db:"current_holder_name"`
	IsBottleneck  bool       `json:"is_bottleneck" db:"is_bottleneck"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	History       []LogEntry `json:"history"` // newest-first, append-only
}

// LogEntry is one immutable record of an action taken on a document.
// Entries are a ledger: never edited or deleted after creation.
type LogEntry struct {
	ID        string    `json:"id" db:"id"`
	Action    string    `json:"action" db:"action"`
	Location  string    `json:"location" db:"location"`
	User      string    `json:"user" db:"actor_name"`
	Type      EntryType `json:"type" db:"action_type"`
	Notes     string    `json:"notes,omitempty" db:"notes"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}
