package models

import "time"

// Role is the audience a notification is addressed to
type Role string

const (
	RoleClient  Role = "client"
	RoleArtisan Role = "artisan"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleClient || r == RoleArtisan
}

type NotificationKind string

const (
	NotificationKindBooking NotificationKind = "booking"
	NotificationKindPayment NotificationKind = "payment"
	NotificationKindOther   NotificationKind = "other"
)

// Notification is addressed to a role rather than an individual user
type Notification struct {
	ID               uint             `json:"id"`
	RecipientRole    Role             `json:"recipient_role"`
	Title            string           `json:"title"`
	Message          string           `json:"message"`
	Kind             NotificationKind `json:"kind"`
	RelatedRequestID *uint            `json:"related_request_id,omitempty"`
	IsRead           bool             `json:"is_read"`
	CreatedAt        time.Time        `json:"created_at"`
}

// NotificationList is a role's notifications together with its unread count
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}
