package enums

import "fmt"

// RemoteStatus is the payment status reported by the backend status-check
// endpoint for a payment code.
type RemoteStatus string

const (
	RemoteStatusPending   RemoteStatus = "pending"
	RemoteStatusCompleted RemoteStatus = "completed"
	RemoteStatusFailed    RemoteStatus = "failed"
	RemoteStatusExpired   RemoteStatus = "expired"
)

var validRemoteStatuses = []RemoteStatus{
	RemoteStatusPending,
	RemoteStatusCompleted,
	RemoteStatusFailed,
	RemoteStatusExpired,
}

// String implements fmt.Stringer.
func (r RemoteStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RemoteStatus.
func (r RemoteStatus) IsValid() bool {
	for _, candidate := range validRemoteStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRemoteStatus converts raw input into a RemoteStatus.
func ParseRemoteStatus(value string) (RemoteStatus, error) {
	for _, candidate := range validRemoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid remote payment status %q", value)
}
