package tracking

import "time"

// ActionKind is one of the three caller-invokable transition operations.
// These are the only operations; the engine has no full transition table.
type ActionKind string

const (
	ActionReceive  ActionKind = "receive"
	ActionTransfer ActionKind = "transfer"
	ActionReturn   ActionKind = "return"
)

// IsValid reports whether k is a known action kind.
func (k ActionKind) IsValid() bool {
	switch k {
	case ActionReceive, ActionTransfer, ActionReturn:
		return true
	}
	return false
}

// ActionRequest is the validated payload for one lifecycle action.
// The boundary layer parses loose JSON into this tagged form before it
// reaches the engine; per-kind field rules live in the engine itself.
type ActionRequest struct {
	Kind     ActionKind `json:"kind"`
	Location string     `json:"location"`
	User     string     `json:"user"`
	Notes    string     `json:"notes,omitempty"`
	// UpdateDate overrides the transition timestamp when backfilling
	// scans recorded offline. Zero value means "now".
	UpdateDate time.Time `json:"update_date,omitempty"`
}
