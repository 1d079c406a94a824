package model

import (
	"github.com/google/uuid"
)

// Candidate is the derived, non-persisted view of a donor considered
// for a specific request, ranked by distance from the request origin.
type Candidate struct {
	DonorID    uuid.UUID `json:"donor_id"`
	FullName   string    `json:"full_name"`
	BloodGroup string    `json:"blood_group"`
	DistanceKm float64   `json:"distance_km"`
	Lat        *float64  `json:"lat,omitempty"`
	Lng        *float64  `json:"lng,omitempty"`
	IsReady    bool      `json:"is_ready"`
}

// RankedCandidates is the response shape of the compatible-donors endpoint.
type RankedCandidates struct {
	RequestID uuid.UUID   `json:"request_id"`
	Donors    []Candidate `json:"donors"`
}
