package enums

import "fmt"

// Urgency captures how quickly a customer needs the requested produce.
type Urgency string

const (
	UrgencyNormal    Urgency = "normal"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyImmediate Urgency = "immediate"
)

var validUrgencies = []Urgency{
	UrgencyNormal,
	UrgencyUrgent,
	UrgencyImmediate,
}

// IsValid reports whether the value matches the canonical urgency enum.
func (u Urgency) IsValid() bool {
	for _, candidate := range validUrgencies {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUrgency converts the raw string to Urgency.
func ParseUrgency(value string) (Urgency, error) {
	for _, candidate := range validUrgencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid urgency %q", value)
}
