package models

import (
	"strings"
	"time"
)

// ServiceRequestStatus represents the current status of a service request
type ServiceRequestStatus string

const (
	RequestStatusPending    ServiceRequestStatus = "pending"
	RequestStatusAccepted   ServiceRequestStatus = "accepted"
	RequestStatusInProgress ServiceRequestStatus = "in_progress"
	RequestStatusCompleted  ServiceRequestStatus = "completed"
	RequestStatusCancelled  ServiceRequestStatus = "cancelled"
)

// IsValid reports whether s is one of the known statuses.
func (s ServiceRequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusInProgress,
		RequestStatusCompleted, RequestStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition can leave s.
func (s ServiceRequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusCancelled
}

// HasArtisan reports whether a request in status s must carry an assigned artisan.
func (s ServiceRequestStatus) HasArtisan() bool {
	return s == RequestStatusAccepted || s == RequestStatusInProgress || s == RequestStatusCompleted
}

// Party is a reference to a client or an artisan taking part in a request.
type Party struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// Key returns the identity key used to match parties: the email when set,
// otherwise the display name, lower-cased.
func (p Party) Key() string {
	if email := strings.TrimSpace(p.Email); email != "" {
		return strings.ToLower(email)
	}
	return strings.ToLower(strings.TrimSpace(p.Name))
}

// Matches compares two parties by identity key, case-insensitively.
func (p Party) Matches(other Party) bool {
	key := p.Key()
	return key != "" && key == other.Key()
}

// ServiceRequest is a unit of work tracked through the request lifecycle
type ServiceRequest struct {
	ID                 uint                 `json:"id"`
	ServiceCategory    ServiceCategory      `json:"service_category"`
	Description        string               `json:"description"`
	Location           string               `json:"location,omitempty"`
	Budget             *float64             `json:"budget,omitempty"`
	Status             ServiceRequestStatus `json:"status"`
	Client             Party                `json:"client"`
	Artisan            *Party               `json:"artisan,omitempty"`
	PreferredArtisanID *uint                `json:"preferred_artisan_id,omitempty"`
	PreferredDate      *time.Time           `json:"preferred_date,omitempty"`
	AcceptedAt         *time.Time           `json:"accepted_at,omitempty"`
	StartedAt          *time.Time           `json:"started_at,omitempty"`
	CompletedAt        *time.Time           `json:"completed_at,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// ServiceRequestCreate represents the input for creating a service request
type ServiceRequestCreate struct {
	ServiceCategory string   `json:"service_category" binding:"required" validate:"required,service_category"`
	Description     string   `json:"description" binding:"required" validate:"required"`
	Location        string   `json:"location"`
	Budget          *float64 `json:"budget" validate:"omitempty,gte=0"`
	Client          Party    `json:"-"`
}

// DirectBookingCreate represents a booking addressed to a specific artisan from the directory
type DirectBookingCreate struct {
	ArtisanID     uint       `json:"artisan_id" binding:"required"`
	PreferredDate *time.Time `json:"preferred_date"`
	ServiceRequestCreate
}

// ServiceRequestUpdate is the client's change to its own request. Only
// cancellation is supported.
type ServiceRequestUpdate struct {
	Status ServiceRequestStatus `json:"status"`
}

// StartWork carries the optional agreed total when work starts
type StartWork struct {
	TotalAmount *float64 `json:"total_amount"`
}
