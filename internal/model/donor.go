package model

import (
	"time"

	"github.com/google/uuid"
)

type Donor struct {
	Base
	UserID           uuid.UUID  `db:"user_id" json:"user_id"`
	BloodTypeID      *int       `db:"blood_type_id" json:"blood_type_id,omitempty"`
	Lat              *float64   `db:"lat" json:"lat,omitempty"`
	Lng              *float64   `db:"lng" json:"lng,omitempty"`
	TravelRadiusKm   float64    `db:"travel_radius_km" json:"travel_radius_km"`
	IsReady          bool       `db:"is_ready" json:"is_ready"`
	NextEligibleDate *time.Time `db:"next_eligible_date" json:"next_eligible_date,omitempty"`
}

// HasLocation reports whether the donor can be distance-ranked.
func (d *Donor) HasLocation() bool {
	return d.Lat != nil && d.Lng != nil
}

// CandidateDonor is a donor joined with profile and blood group data,
// as returned by the candidate query.
type CandidateDonor struct {
	Donor
	FullName   string `db:"full_name" json:"full_name"`
	BloodGroup string `db:"blood_group" json:"blood_group"`
}

type CreateDonorRequest struct {
	UserID         uuid.UUID `json:"user_id" binding:"required"`
	BloodTypeID    *int      `json:"blood_type_id"`
	Lat            *float64  `json:"lat" binding:"omitempty,min=-90,max=90"`
	Lng            *float64  `json:"lng" binding:"omitempty,min=-180,max=180"`
	TravelRadiusKm float64   `json:"travel_radius_km" binding:"omitempty,min=0"`
}

type UpdateDonorRequest struct {
	BloodTypeID      *int       `json:"blood_type_id"`
	Lat              *float64   `json:"lat" binding:"omitempty,min=-90,max=90"`
	Lng              *float64   `json:"lng" binding:"omitempty,min=-180,max=180"`
	TravelRadiusKm   *float64   `json:"travel_radius_km" binding:"omitempty,min=0"`
	IsReady          *bool      `json:"is_ready"`
	NextEligibleDate *time.Time `json:"next_eligible_date"`
}

type DonorFilters struct {
	BloodTypeID *int
	IsReady     *bool
}
