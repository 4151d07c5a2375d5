// Package desktop mirrors notifications to the operating system's
// notification surface and tracks the user's permission decision.
package desktop

import "errors"

// State is the desktop permission state.
type State string

const (
	// StateUnsupported means the platform cannot show desktop notifications.
	StateUnsupported State = "unsupported"
	// StateUnrequested means no decision has been asked for yet.
	StateUnrequested State = "unrequested"
	// StateRequested means a permission request is awaiting the user.
	StateRequested State = "requested"
	// StateGranted means desktop notifications may be shown.
	StateGranted State = "granted"
	// StateDenied means the user refused desktop notifications.
	StateDenied State = "denied"
)

var (
	// ErrUnsupported is returned when the platform has no desktop
	// notification service.
	ErrUnsupported = errors.New("desktop notifications are not supported")
	// ErrDenied is returned when the user refused permission.
	ErrDenied = errors.New("desktop notification permission denied")
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsValid reports whether s is a known state.
func (s State) IsValid() bool {
	switch s {
	case StateUnsupported, StateUnrequested, StateRequested, StateGranted, StateDenied:
		return true
	default:
		return false
	}
}

// ParseState converts a persisted decision into a State. Unknown values map
// to StateUnrequested.
func ParseState(value string) State {
	s := State(value)
	if !s.IsValid() {
		return StateUnrequested
	}
	return s
}
