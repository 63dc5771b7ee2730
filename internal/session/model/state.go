package model

// SessionState is the client-visible lifecycle stage of a replay session.
type SessionState string

const (
	StateCreated   SessionState = "CREATED"
	StateRunning   SessionState = "RUNNING"
	StateStopped   SessionState = "STOPPED"
	StateCompleted SessionState = "COMPLETED"
	StateEvicted   SessionState = "EVICTED"
)

// IsTerminal reports whether no further control operation can move the
// session out of this state.
func (s SessionState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateEvicted:
		return true
	default:
		return false
	}
}

func (s SessionState) String() string { return string(s) }
