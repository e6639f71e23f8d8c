package services

import (
	"context"
	"fmt"
	"strings"

	"juaconnect-server/models"
)

// Order controls the presentation order of a notification list.
type Order int

const (
	OldestFirst Order = iota
	NewestFirst
)

// ParseOrder accepts "oldest", "newest" or "" (oldest).
func ParseOrder(value string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "oldest", "asc":
		return OldestFirst, nil
	case "newest", "desc":
		return NewestFirst, nil
	}
	return OldestFirst, &ValidationError{Field: "order", Message: fmt.Sprintf("unknown order %q", value)}
}

// NotificationService manages role-addressed notifications.
type NotificationService struct {
	m *Marketplace
}

// List returns the notifications addressed to role in the requested order
// together with the number still unread.
func (s *NotificationService) List(ctx context.Context, role models.Role, order Order) (*models.NotificationList, error) {
	if err := validateRole(role); err != nil {
		return nil, err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	list := &models.NotificationList{Notifications: []models.Notification{}}
	for _, n := range s.m.notifications {
		if n.RecipientRole != role {
			continue
		}
		list.Notifications = append(list.Notifications, cloneNotification(n))
		if !n.IsRead {
			list.UnreadCount++
		}
	}
	if order == NewestFirst {
		for i, j := 0, len(list.Notifications)-1; i < j; i, j = i+1, j-1 {
			list.Notifications[i], list.Notifications[j] = list.Notifications[j], list.Notifications[i]
		}
	}
	return list, nil
}

// UnreadCount returns the number of unread notifications addressed to role.
func (s *NotificationService) UnreadCount(ctx context.Context, role models.Role) (int, error) {
	if err := validateRole(role); err != nil {
		return 0, err
	}
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	count := 0
	for _, n := range s.m.notifications {
		if n.RecipientRole == role && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// MarkRead marks a notification addressed to role as read. Marking one that
// is already read succeeds without persisting anything. Notifications of
// another role are reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, role models.Role, id uint) error {
	if err := validateRole(role); err != nil {
		return err
	}
	return s.m.mutate(ctx, func() error {
		for i := range s.m.notifications {
			n := &s.m.notifications[i]
			if n.ID != id {
				continue
			}
			if n.RecipientRole != role {
				break
			}
			if n.IsRead {
				return errNoChange
			}
			n.IsRead = true
			return nil
		}
		return &NotFoundError{Resource: "notification", ID: id}
	})
}

// MarkAllRead marks every notification addressed to role as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, role models.Role) error {
	if err := validateRole(role); err != nil {
		return err
	}
	return s.m.mutate(ctx, func() error {
		changed := false
		for i := range s.m.notifications {
			n := &s.m.notifications[i]
			if n.RecipientRole == role && !n.IsRead {
				n.IsRead = true
				changed = true
			}
		}
		if !changed {
			return errNoChange
		}
		return nil
	})
}

// Delete removes a notification addressed to role. Deleting an absent id is
// a no-op; a notification of another role is reported as not found.
func (s *NotificationService) Delete(ctx context.Context, role models.Role, id uint) error {
	if err := validateRole(role); err != nil {
		return err
	}
	return s.m.mutate(ctx, func() error {
		for i, n := range s.m.notifications {
			if n.ID != id {
				continue
			}
			if n.RecipientRole != role {
				return &NotFoundError{Resource: "notification", ID: id}
			}
			s.m.notifications = append(s.m.notifications[:i:i], s.m.notifications[i+1:]...)
			return nil
		}
		return errNoChange
	})
}

func cloneNotification(n models.Notification) models.Notification {
	if n.RelatedRequestID != nil {
		id := *n.RelatedRequestID
		n.RelatedRequestID = &id
	}
	return n
}
