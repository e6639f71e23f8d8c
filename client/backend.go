// Package client gives presentation layers one interface to the marketplace,
// served either by a remote API or by an in-process Marketplace.
package client

import (
	"context"

	"juaconnect-server/models"
	"juaconnect-server/services"
)

// Identity names the caller. Every Backend acts on behalf of one identity.
type Identity struct {
	Role  models.Role
	Party models.Party
}

// Backend is the set of operations a dashboard view can perform.
type Backend interface {
	CreateRequest(ctx context.Context, input models.ServiceRequestCreate) (*models.ServiceRequest, error)
	MyRequests(ctx context.Context, statuses ...models.ServiceRequestStatus) ([]models.ServiceRequest, error)
	CancelRequest(ctx context.Context, id uint) (*models.ServiceRequest, error)
	AvailableRequests(ctx context.Context) ([]models.ServiceRequest, error)
	AssignedRequests(ctx context.Context, statuses ...models.ServiceRequestStatus) ([]models.ServiceRequest, error)
	GetRequest(ctx context.Context, id uint) (*models.ServiceRequest, error)
	AcceptRequest(ctx context.Context, id uint) (*models.ServiceRequest, error)
	RejectRequest(ctx context.Context, id uint) (*models.ServiceRequest, error)
	StartWork(ctx context.Context, id uint, totalAmount *float64) (*models.ServiceRequest, error)
	CompleteWork(ctx context.Context, id uint) (*models.ServiceRequest, error)

	Notifications(ctx context.Context, order services.Order) (*models.NotificationList, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id uint) error
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id uint) error

	SearchArtisans(ctx context.Context, category, location string) ([]models.ArtisanProfile, error)
	GetArtisan(ctx context.Context, id uint) (*models.ArtisanProfile, error)
	BookArtisan(ctx context.Context, input models.DirectBookingCreate) (*models.ServiceRequest, error)
}

var (
	_ Backend = (*HTTPClient)(nil)
	_ Backend = (*Local)(nil)
)
