package services

import (
	"context"
	"log"
	"strings"
	"time"

	"juaconnect-server/models"
)

// RequestService drives service requests through their lifecycle.
type RequestService struct {
	m *Marketplace
}

// Create records a new pending request for input.Client.
func (s *RequestService) Create(ctx context.Context, input models.ServiceRequestCreate) (*models.ServiceRequest, error) {
	return s.create(ctx, input, nil)
}

// create validates input and appends a pending request. book, when set, runs
// under the lock once the id is assigned and may reject the request.
func (s *RequestService) create(ctx context.Context, input models.ServiceRequestCreate, book func(r *models.ServiceRequest) error) (*models.ServiceRequest, error) {
	input.Description = strings.TrimSpace(input.Description)
	input.Client.Name = strings.TrimSpace(input.Client.Name)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	category, _ := models.ParseServiceCategory(input.ServiceCategory)

	var created models.ServiceRequest
	err := s.m.mutate(ctx, func() error {
		now := s.m.now()
		created = models.ServiceRequest{
			ServiceCategory: category,
			Description:     input.Description,
			Location:        strings.TrimSpace(input.Location),
			Budget:          cloneFloat(input.Budget),
			Status:          models.RequestStatusPending,
			Client:          input.Client,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		created.ID = s.m.nextRequestID()
		if book != nil {
			if err := book(&created); err != nil {
				s.m.seq.Request--
				return err
			}
		}
		s.m.requests = append(s.m.requests, created)
		return nil
	})
	if err != nil && !IsStorage(err) {
		return nil, err
	}
	log.Printf("📝 Service request %d created (%s) for %s", created.ID, created.ServiceCategory, created.Client.Name)
	return cloneRequest(created), err
}

// ListAvailable returns every pending request, oldest first.
func (s *RequestService) ListAvailable(ctx context.Context) ([]models.ServiceRequest, error) {
	return s.filter(func(r models.ServiceRequest) bool {
		return r.Status == models.RequestStatusPending
	}), nil
}

// ListMine returns the requests created by client, optionally restricted to statuses.
func (s *RequestService) ListMine(ctx context.Context, client models.Party, statuses ...models.ServiceRequestStatus) ([]models.ServiceRequest, error) {
	if client.Key() == "" {
		return nil, &ValidationError{Field: "client", Message: "is required"}
	}
	return s.filter(func(r models.ServiceRequest) bool {
		return r.Client.Matches(client) && statusIn(r.Status, statuses)
	}), nil
}

// ListAssignedTo returns the requests assigned to artisan, optionally restricted to statuses.
func (s *RequestService) ListAssignedTo(ctx context.Context, artisan models.Party, statuses ...models.ServiceRequestStatus) ([]models.ServiceRequest, error) {
	if artisan.Key() == "" {
		return nil, &ValidationError{Field: "artisan", Message: "is required"}
	}
	return s.filter(func(r models.ServiceRequest) bool {
		return r.Artisan != nil && r.Artisan.Matches(artisan) && statusIn(r.Status, statuses)
	}), nil
}

// Get returns the request with the given id.
func (s *RequestService) Get(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, err := s.findLocked(id)
	if err != nil {
		return nil, err
	}
	return cloneRequest(*r), nil
}

// Accept assigns artisan to a pending request and notifies the client.
func (s *RequestService) Accept(ctx context.Context, id uint, artisan models.Party) (*models.ServiceRequest, error) {
	artisan.Name = strings.TrimSpace(artisan.Name)
	if err := validateStruct(artisan); err != nil {
		if ve, ok := err.(*ValidationError); ok {
			ve.Field = "artisan_" + ve.Field
		}
		return nil, err
	}
	return s.transition(ctx, id, models.RequestStatusPending, models.RequestStatusAccepted, func(r *models.ServiceRequest) {
		a := artisan
		r.Artisan = &a
		r.AcceptedAt = timePtr(r.UpdatedAt)
		s.m.notifyLocked(models.RoleClient, models.NotificationKindBooking, s.m.templates.accepted(*r), r.ID)
	})
}

// Reject cancels a pending request and notifies the client.
func (s *RequestService) Reject(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	return s.transition(ctx, id, models.RequestStatusPending, models.RequestStatusCancelled, func(r *models.ServiceRequest) {
		s.m.notifyLocked(models.RoleClient, models.NotificationKindBooking, s.m.templates.rejected(*r), r.ID)
	})
}

// Cancel withdraws a pending request on behalf of the client who created it.
// Requests of other clients are reported as not found.
func (s *RequestService) Cancel(ctx context.Context, id uint, client models.Party) (*models.ServiceRequest, error) {
	if client.Key() == "" {
		return nil, &ValidationError{Field: "client", Message: "is required"}
	}
	return s.guardedTransition(ctx, id, models.RequestStatusPending, models.RequestStatusCancelled, func(r *models.ServiceRequest) error {
		if !r.Client.Matches(client) {
			return &NotFoundError{Resource: "service request", ID: id}
		}
		return nil
	}, func(r *models.ServiceRequest) {})
}

// Start moves an accepted request to in_progress. A non-nil totalAmount
// replaces the request's budget.
func (s *RequestService) Start(ctx context.Context, id uint, totalAmount *float64) (*models.ServiceRequest, error) {
	if err := validateAmount("total_amount", totalAmount); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, models.RequestStatusAccepted, models.RequestStatusInProgress, func(r *models.ServiceRequest) {
		if totalAmount != nil {
			r.Budget = cloneFloat(totalAmount)
		}
		r.StartedAt = timePtr(r.UpdatedAt)
		if s.m.notifyOnStart {
			s.m.notifyLocked(models.RoleClient, models.NotificationKindBooking, s.m.templates.started(*r), r.ID)
		}
	})
}

// Complete finishes an in-progress request and tells the client payment is due.
func (s *RequestService) Complete(ctx context.Context, id uint) (*models.ServiceRequest, error) {
	return s.transition(ctx, id, models.RequestStatusInProgress, models.RequestStatusCompleted, func(r *models.ServiceRequest) {
		r.CompletedAt = timePtr(r.UpdatedAt)
		s.m.notifyLocked(models.RoleClient, models.NotificationKindPayment, s.m.templates.completed(*r), r.ID)
	})
}

// transition checks the current status and applies apply under the lock.
// The request is left untouched when the check fails.
func (s *RequestService) transition(ctx context.Context, id uint, from, to models.ServiceRequestStatus, apply func(r *models.ServiceRequest)) (*models.ServiceRequest, error) {
	return s.guardedTransition(ctx, id, from, to, nil, apply)
}

// guardedTransition is transition with an extra check run before the status
// check.
func (s *RequestService) guardedTransition(ctx context.Context, id uint, from, to models.ServiceRequestStatus, guard func(r *models.ServiceRequest) error, apply func(r *models.ServiceRequest)) (*models.ServiceRequest, error) {
	var updated models.ServiceRequest
	err := s.m.mutate(ctx, func() error {
		r, err := s.findLocked(id)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(r); err != nil {
				return err
			}
		}
		if r.Status != from {
			return &InvalidTransitionError{RequestID: id, From: r.Status, To: to}
		}
		r.Status = to
		r.UpdatedAt = s.m.now()
		apply(r)
		updated = *r
		return nil
	})
	if err != nil && !IsStorage(err) {
		return nil, err
	}
	log.Printf("🔄 Service request %d moved %s -> %s", id, from, to)
	return cloneRequest(updated), err
}

func (s *RequestService) findLocked(id uint) (*models.ServiceRequest, error) {
	for i := range s.m.requests {
		if s.m.requests[i].ID == id {
			return &s.m.requests[i], nil
		}
	}
	return nil, &NotFoundError{Resource: "service request", ID: id}
}

func (s *RequestService) filter(keep func(r models.ServiceRequest) bool) []models.ServiceRequest {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := []models.ServiceRequest{}
	for _, r := range s.m.requests {
		if keep(r) {
			out = append(out, *cloneRequest(r))
		}
	}
	return out
}

func statusIn(status models.ServiceRequestStatus, statuses []models.ServiceRequestStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// cloneRequest copies r including the values behind its pointer fields.
func cloneRequest(r models.ServiceRequest) *models.ServiceRequest {
	c := r
	c.Budget = cloneFloat(r.Budget)
	if r.Artisan != nil {
		a := *r.Artisan
		c.Artisan = &a
	}
	if r.PreferredArtisanID != nil {
		id := *r.PreferredArtisanID
		c.PreferredArtisanID = &id
	}
	if r.PreferredDate != nil {
		c.PreferredDate = timePtr(*r.PreferredDate)
	}
	if r.AcceptedAt != nil {
		c.AcceptedAt = timePtr(*r.AcceptedAt)
	}
	if r.StartedAt != nil {
		c.StartedAt = timePtr(*r.StartedAt)
	}
	if r.CompletedAt != nil {
		c.CompletedAt = timePtr(*r.CompletedAt)
	}
	return &c
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
