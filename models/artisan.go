package models

import "time"

// ArtisanProfile is an artisan's public directory entry
type ArtisanProfile struct {
	ID              uint      `json:"id"`
	Username        string    `json:"username" validate:"required"`
	Email           string    `json:"email" validate:"omitempty,email"`
	Phone           string    `json:"phone,omitempty"`
	Location        string    `json:"location,omitempty"`
	ServiceCategory string    `json:"service_category,omitempty"`
	ExperienceYears int       `json:"experience_years" validate:"gte=0"`
	Bio             string    `json:"bio,omitempty"`
	Rating          float64   `json:"rating" validate:"gte=0,lte=5"`
	IsVerified      bool      `json:"is_verified"`
	Skills          string    `json:"skills,omitempty"`
	HourlyRate      *float64  `json:"hourly_rate,omitempty" validate:"omitempty,gte=0"`
	Languages       string    `json:"languages,omitempty"`
	ServiceArea     string    `json:"service_area,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Party returns the reference used when this artisan is assigned to a request.
func (a ArtisanProfile) Party() Party {
	return Party{Name: a.Username, Email: a.Email}
}
