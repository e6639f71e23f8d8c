package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"juaconnect-server/models"
)

// DirectoryService is the searchable list of artisan profiles and the
// entry point for booking an artisan directly.
type DirectoryService struct {
	m *Marketplace
}

// Search returns verified artisans whose category contains category and
// whose location or service area contains location. Both filters are
// case-insensitive and an empty filter matches everything.
func (s *DirectoryService) Search(ctx context.Context, category, location string) ([]models.ArtisanProfile, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	location = strings.ToLower(strings.TrimSpace(location))

	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	results := []models.ArtisanProfile{}
	for _, a := range s.m.artisans {
		if !a.IsVerified {
			continue
		}
		if category != "" && !strings.Contains(strings.ToLower(a.ServiceCategory), category) {
			continue
		}
		if location != "" &&
			!strings.Contains(strings.ToLower(a.Location), location) &&
			!strings.Contains(strings.ToLower(a.ServiceArea), location) {
			continue
		}
		results = append(results, cloneProfile(a))
	}
	return results, nil
}

// Get returns the profile with the given id.
func (s *DirectoryService) Get(ctx context.Context, id uint) (*models.ArtisanProfile, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	a, err := s.findLocked(id)
	if err != nil {
		return nil, err
	}
	p := cloneProfile(*a)
	return &p, nil
}

// Profile returns the profile belonging to artisan, matched by identity key.
func (s *DirectoryService) Profile(ctx context.Context, artisan models.Party) (*models.ArtisanProfile, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if a := s.findByPartyLocked(artisan); a != nil {
		p := cloneProfile(*a)
		return &p, nil
	}
	return nil, &NotFoundError{Resource: "artisan profile"}
}

// UpsertProfile creates or updates the profile matching profile's email, or
// its username when no email is set. Rating and verification are kept from
// the stored profile since artisans cannot set them on themselves.
func (s *DirectoryService) UpsertProfile(ctx context.Context, profile models.ArtisanProfile) (*models.ArtisanProfile, error) {
	profile.Username = strings.TrimSpace(profile.Username)
	profile.Email = strings.TrimSpace(profile.Email)
	if err := validateStruct(profile); err != nil {
		return nil, err
	}
	if profile.ServiceCategory != "" {
		category, ok := models.ParseServiceCategory(profile.ServiceCategory)
		if !ok {
			return nil, &ValidationError{Field: "service_category", Message: fmt.Sprintf("unknown service category %q", profile.ServiceCategory)}
		}
		profile.ServiceCategory = string(category)
	}

	var saved models.ArtisanProfile
	err := s.m.mutate(ctx, func() error {
		profile.UpdatedAt = s.m.now()
		if existing := s.findByPartyLocked(profile.Party()); existing != nil {
			profile.ID = existing.ID
			profile.Rating = existing.Rating
			profile.IsVerified = existing.IsVerified
			*existing = profile
		} else {
			profile.ID = s.m.nextArtisanID()
			profile.Rating = 0
			profile.IsVerified = false
			s.m.artisans = append(s.m.artisans, profile)
		}
		saved = cloneProfile(profile)
		return nil
	})
	if err != nil && !IsStorage(err) {
		return nil, err
	}
	log.Printf("👷 Artisan profile %d saved for %s", saved.ID, saved.Username)
	return &saved, err
}

// BookDirect creates a pending request addressed to the artisan with
// input.ArtisanID and notifies the artisan role.
func (s *DirectoryService) BookDirect(ctx context.Context, input models.DirectBookingCreate) (*models.ServiceRequest, error) {
	if input.ArtisanID == 0 {
		return nil, &ValidationError{Field: "artisan_id", Message: "is required"}
	}
	return s.m.Requests.create(ctx, input.ServiceRequestCreate, func(r *models.ServiceRequest) error {
		artisan, err := s.findLocked(input.ArtisanID)
		if err != nil {
			return err
		}
		id := artisan.ID
		r.PreferredArtisanID = &id
		if input.PreferredDate != nil {
			r.PreferredDate = timePtr(input.PreferredDate.UTC())
		}
		s.m.notifyLocked(models.RoleArtisan, models.NotificationKindBooking, s.m.templates.newBooking(*r), r.ID)
		return nil
	})
}

// Seed adds profiles when the directory is empty. Profiles without an id
// get the next one.
func (s *DirectoryService) Seed(ctx context.Context, profiles []models.ArtisanProfile) (int, error) {
	added := 0
	err := s.m.mutate(ctx, func() error {
		if len(s.m.artisans) > 0 {
			log.Printf("⚠️  Artisans already exist (%d found). Skipping seed.", len(s.m.artisans))
			return errNoChange
		}
		for _, p := range profiles {
			p.UpdatedAt = s.m.now()
			if p.ID == 0 {
				p.ID = s.m.nextArtisanID()
			}
			s.m.seq.Artisan = maxID(s.m.seq.Artisan, p.ID+1)
			s.m.artisans = append(s.m.artisans, cloneProfile(p))
			added++
		}
		if added == 0 {
			return errNoChange
		}
		return nil
	})
	if added > 0 {
		log.Printf("🎉 Seeded %d artisan profiles", added)
	}
	return added, err
}

func (s *DirectoryService) findLocked(id uint) (*models.ArtisanProfile, error) {
	for i := range s.m.artisans {
		if s.m.artisans[i].ID == id {
			return &s.m.artisans[i], nil
		}
	}
	return nil, &NotFoundError{Resource: "artisan", ID: id}
}

func (s *DirectoryService) findByPartyLocked(p models.Party) *models.ArtisanProfile {
	for i := range s.m.artisans {
		if s.m.artisans[i].Party().Matches(p) {
			return &s.m.artisans[i]
		}
	}
	return nil
}

func cloneProfile(a models.ArtisanProfile) models.ArtisanProfile {
	a.HourlyRate = cloneFloat(a.HourlyRate)
	return a
}
