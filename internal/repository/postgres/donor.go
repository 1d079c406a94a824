package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	apperrors "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/errors"
)

func (r *donorRepository) Create(ctx context.Context, donor *model.Donor) error {
	query := `
		INSERT INTO donors (
			id, user_id, blood_type_id, lat, lng, travel_radius_km,
			is_ready, next_eligible_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	donor.ID = uuid.New()
	donor.CreatedAt = time.Now()
	donor.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		donor.ID,
		donor.UserID,
		donor.BloodTypeID,
		donor.Lat,
		donor.Lng,
		donor.TravelRadiusKm,
		donor.IsReady,
		donor.NextEligibleDate,
		donor.CreatedAt,
		donor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create donor: %w", err)
	}
	return nil
}

func (r *donorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Donor, error) {
	query := `
		SELECT id, user_id, blood_type_id, lat, lng, travel_radius_km,
			   is_ready, next_eligible_date, created_at, updated_at
		FROM donors
		WHERE id = $1 AND deleted_at IS NULL
	`
	var donor model.Donor
	err := r.db.GetContext(ctx, &donor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("donor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get donor: %w", err)
	}
	return &donor, nil
}

func (r *donorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Donor, error) {
	query := `
		SELECT id, user_id, blood_type_id, lat, lng, travel_radius_km,
			   is_ready, next_eligible_date, created_at, updated_at
		FROM donors
		WHERE user_id = $1 AND deleted_at IS NULL
	`
	var donor model.Donor
	err := r.db.GetContext(ctx, &donor, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("donor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get donor by user: %w", err)
	}
	return &donor, nil
}

func (r *donorRepository) Update(ctx context.Context, donor *model.Donor) error {
	query := `
		UPDATE donors
		SET blood_type_id = $1, lat = $2, lng = $3, travel_radius_km = $4,
			is_ready = $5, next_eligible_date = $6, updated_at = $7
		WHERE id = $8 AND deleted_at IS NULL
	`
	donor.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		donor.BloodTypeID,
		donor.Lat,
		donor.Lng,
		donor.TravelRadiusKm,
		donor.IsReady,
		donor.NextEligibleDate,
		donor.UpdatedAt,
		donor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update donor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("donor", nil)
	}

	return nil
}

func (r *donorRepository) List(ctx context.Context, filters *model.DonorFilters) ([]*model.Donor, error) {
	query := `
		SELECT id, user_id, blood_type_id, lat, lng, travel_radius_km,
			   is_ready, next_eligible_date, created_at, updated_at
		FROM donors
		WHERE deleted_at IS NULL
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil && filters.BloodTypeID != nil {
		query += fmt.Sprintf(" AND blood_type_id = $%d", argCount)
		args = append(args, *filters.BloodTypeID)
		argCount++
	}

	if filters != nil && filters.IsReady != nil {
		query += fmt.Sprintf(" AND is_ready = $%d", argCount)
		args = append(args, *filters.IsReady)
		argCount++
	}

	query += " ORDER BY created_at DESC"

	var donors []*model.Donor
	err := r.db.SelectContext(ctx, &donors, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list donors: %w", err)
	}
	return donors, nil
}

func (r *donorRepository) FindReadyByBloodTypes(ctx context.Context, bloodTypeIDs []int) ([]*model.CandidateDonor, error) {
	if len(bloodTypeIDs) == 0 {
		return nil, nil
	}

	// Donors without a location cannot be ranked and are excluded here
	// by contract.
	query := `
		SELECT d.id, d.user_id, d.blood_type_id, d.lat, d.lng,
			   d.travel_radius_km, d.is_ready, d.next_eligible_date,
			   d.created_at, d.updated_at,
			   u.full_name, bt.name AS blood_group
		FROM donors d
		JOIN users u ON u.id = d.user_id
		JOIN blood_types bt ON bt.id = d.blood_type_id
		WHERE d.deleted_at IS NULL
		  AND d.is_ready = TRUE
		  AND d.lat IS NOT NULL
		  AND d.lng IS NOT NULL
		  AND (d.next_eligible_date IS NULL OR d.next_eligible_date <= NOW())
		  AND d.blood_type_id = ANY($1)
		ORDER BY d.id ASC
	`
	var donors []*model.CandidateDonor
	err := r.db.SelectContext(ctx, &donors, query, pq.Array(bloodTypeIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to find ready donors: %w", err)
	}
	return donors, nil
}
