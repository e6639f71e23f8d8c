package client

import (
	"context"

	"juaconnect-server/models"
	"juaconnect-server/services"
)

// Local serves a Backend from an in-process Marketplace.
type Local struct {
	m  *services.Marketplace
	id Identity
}

// NewLocal returns a Backend acting as id against m.
func NewLocal(m *services.Marketplace, id Identity) *Local {
	return &Local{m: m, id: id}
}

func (l *Local) CreateRequest(ctx context.Context, input models.ServiceRequestCreate) (*models.ServiceRequest, error) {
	input.Client = l.id.Party
	return l.m.Requests.Create(ctx, input)
}

func (l *Local) MyRequests(ctx context.Context, statuses ...models.ServiceRequestStatus) ([]models.ServiceRequest, error) {
	return l.m.Requests.ListMine(ctx, l.id.Party, statuses...)
}

func (l *Local) CancelRequest(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	return l.m.Requests.Cancel(ctx, id, l.id.Party)
}

func (l *Local) AvailableRequests(ctx context.Context) ([]models.ServiceRequest, error) {
	return l.m.Requests.ListAvailable(ctx)
}

func (l *Local) AssignedRequests(ctx context.Context, statuses ...models.ServiceRequestStatus) ([]models.ServiceRequest, error) {
	return l.m.Requests.ListAssignedTo(ctx, l.id.Party, statuses...)
}

func (l *Local) GetRequest(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	return l.m.Requests.Get(ctx, id)
}

func (l *Local) AcceptRequest(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	return l.m.Requests.Accept(ctx, id, l.id.Party)
}

func (l *Local) RejectRequest(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	return l.m.Requests.Reject(ctx, id)
}

func (l *Local) StartWork(ctx context.Context, id uint, totalAmount *float64) (*models.ServiceRequest, error) {
	return l.m.Requests.Start(ctx, id, totalAmount)
}

func (l *Local) CompleteWork(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	return l.m.Requests.Complete(ctx, id)
}

func (l *Local) Notifications(ctx context.Context, order services.Order) (*models.NotificationList, error) {
	return l.m.Notifications.List(ctx, l.id.Role, order)
}

func (l *Local) UnreadCount(ctx context.Context) (int, error) {
	return l.m.Notifications.UnreadCount(ctx, l.id.Role)
}

func (l *Local) MarkNotificationRead(ctx context.Context, id uint) error {
	return l.m.Notifications.MarkRead(ctx, l.id.Role, id)
}

func (l *Local) MarkAllNotificationsRead(ctx context.Context) error {
	return l.m.Notifications.MarkAllRead(ctx, l.id.Role)
}

func (l *Local) DeleteNotification(ctx context.Context, id uint) error {
	return l.m.Notifications.Delete(ctx, l.id.Role, id)
}

func (l *Local) SearchArtisans(ctx context.Context, category, location string) ([]models.ArtisanProfile, error) {
	return l.m.Directory.Search(ctx, category, location)
}

func (l *Local) GetArtisan(ctx context.Context, id uint) (*models.ArtisanProfile, error) {
	return l.m.Directory.Get(ctx, id)
}

func (l *Local) BookArtisan(ctx context.Context, input models.DirectBookingCreate) (*models.ServiceRequest, error) {
	input.Client = l.id.Party
	return l.m.Directory.BookDirect(ctx, input)
}
