package enums

import "fmt"

// NotificationType is the severity bucket shown on dashboard bells.
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeInfo,
	NotificationTypeSuccess,
	NotificationTypeWarning,
	NotificationTypeError,
}

// IsValid reports whether the value matches the canonical notification type enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts the raw string to NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// NotificationOrigin distinguishes server-persisted entries from local toasts.
type NotificationOrigin string

const (
	NotificationOriginDurable   NotificationOrigin = "durable"
	NotificationOriginEphemeral NotificationOrigin = "ephemeral"
)
