package enums

import "fmt"

// ScreenStatus is the local lifecycle state of a payment confirmation
// session. Waiting is the only non-terminal state; every other value is
// terminal and no transition is permitted out of it.
type ScreenStatus string

const (
	ScreenStatusWaiting       ScreenStatus = "waiting"
	ScreenStatusSuccess       ScreenStatus = "success"
	ScreenStatusExpired       ScreenStatus = "expired"
	ScreenStatusFailed        ScreenStatus = "failed"
	ScreenStatusPartialRefund ScreenStatus = "partial_refund"
)

var validScreenStatuses = []ScreenStatus{
	ScreenStatusWaiting,
	ScreenStatusSuccess,
	ScreenStatusExpired,
	ScreenStatusFailed,
	ScreenStatusPartialRefund,
}

// String implements fmt.Stringer.
func (s ScreenStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ScreenStatus.
func (s ScreenStatus) IsValid() bool {
	for _, candidate := range validScreenStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the session is finished in this state.
func (s ScreenStatus) IsTerminal() bool {
	return s.IsValid() && s != ScreenStatusWaiting
}

// ParseScreenStatus converts raw input into a ScreenStatus.
func ParseScreenStatus(value string) (ScreenStatus, error) {
	for _, candidate := range validScreenStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid screen status %q", value)
}
