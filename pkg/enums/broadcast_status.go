package enums

import "fmt"

// BroadcastStatus is a driver's response to an order offer.
type BroadcastStatus string

const (
	BroadcastStatusPending  BroadcastStatus = "pending"
	BroadcastStatusAccepted BroadcastStatus = "accepted"
	BroadcastStatusRejected BroadcastStatus = "rejected"
)

var validBroadcastStatuses = []BroadcastStatus{
	BroadcastStatusPending,
	BroadcastStatusAccepted,
	BroadcastStatusRejected,
}

// String implements fmt.Stringer.
func (b BroadcastStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BroadcastStatus.
func (b BroadcastStatus) IsValid() bool {
	for _, candidate := range validBroadcastStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBroadcastStatus converts raw input into a BroadcastStatus.
func ParseBroadcastStatus(value string) (BroadcastStatus, error) {
	for _, candidate := range validBroadcastStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid broadcast status %q", value)
}
