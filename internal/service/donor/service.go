package donor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/repository"
)

type Service struct {
	repo repository.DonorRepository
}

func NewService(repo repository.DonorRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateDonor(ctx context.Context, in *model.CreateDonorRequest) (*model.Donor, error) {
	donor := &model.Donor{
		UserID:         in.UserID,
		BloodTypeID:    in.BloodTypeID,
		Lat:            in.Lat,
		Lng:            in.Lng,
		TravelRadiusKm: in.TravelRadiusKm,
	}

	if err := s.repo.Create(ctx, donor); err != nil {
		return nil, fmt.Errorf("failed to create donor: %w", err)
	}
	return donor, nil
}

func (s *Service) GetDonor(ctx context.Context, id uuid.UUID) (*model.Donor, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetDonorByUser(ctx context.Context, userID uuid.UUID) (*model.Donor, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *Service) ListDonors(ctx context.Context, filters *model.DonorFilters) ([]*model.Donor, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) UpdateDonor(ctx context.Context, id uuid.UUID, in *model.UpdateDonorRequest) (*model.Donor, error) {
	donor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.BloodTypeID != nil {
		donor.BloodTypeID = in.BloodTypeID
	}
	if in.Lat != nil {
		donor.Lat = in.Lat
	}
	if in.Lng != nil {
		donor.Lng = in.Lng
	}
	if in.TravelRadiusKm != nil {
		donor.TravelRadiusKm = *in.TravelRadiusKm
	}
	if in.NextEligibleDate != nil {
		donor.NextEligibleDate = in.NextEligibleDate
	}
	if in.IsReady != nil {
		donor.IsReady = *in.IsReady
	}

	if err := s.repo.Update(ctx, donor); err != nil {
		return nil, err
	}
	return donor, nil
}
