package models

// Role is the privilege level of a participant or user account.
type Role string

const (
	RoleMember   Role = "member"
	RoleOperator Role = "operator"
)

// ParticipantPreference is a participant directory entry.
type ParticipantPreference struct {
	// Name is the participant key used in transaction records.
	Name string

	// Contact is the address used to reach the participant (e.g. an email).
	Contact string

	// OptedIn controls whether slots given away by this participant are billed.
	OptedIn bool

	Role Role

	// Color is a display attribute for the scheduling UI.
	Color string
}

// Preferences is the participant directory keyed by name.
type Preferences map[string]ParticipantPreference

// OptedIn reports the participant's opt-in flag. Participants missing from
// the directory are opted in.
func (p Preferences) OptedIn(name string) bool {
	pref, ok := p[name]
	if !ok {
		return true
	}
	return pref.OptedIn
}
