package enums

import "fmt"

// NotificationKind names the two lifecycle points a push is fired at.
type NotificationKind string

const (
	NotificationKindPreDraw         NotificationKind = "pre_draw"
	NotificationKindResultPublished NotificationKind = "result_published"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindPreDraw,
	NotificationKindResultPublished,
}

// IsValid checks whether the given kind matches the canonical enum.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts raw strings into NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
