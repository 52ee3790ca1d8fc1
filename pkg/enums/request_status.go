package enums

import "fmt"

// RequestStatus describes the lifecycle state of a custom order request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCompleted RequestStatus = "completed"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusAccepted,
	RequestStatusRejected,
	RequestStatusCompleted,
}

// IsValid reports whether the value matches the canonical request status enum.
func (s RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRequestStatus converts the raw string to RequestStatus.
func ParseRequestStatus(value string) (RequestStatus, error) {
	for _, candidate := range validRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}

// CanTransitionTo reports whether the status graph allows moving to target.
// Requests only ever move forward: pending resolves to accepted or rejected,
// and only accepted requests can be completed.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	switch s {
	case RequestStatusPending:
		return target == RequestStatusAccepted || target == RequestStatusRejected
	case RequestStatusAccepted:
		return target == RequestStatusCompleted
	default:
		return false
	}
}
