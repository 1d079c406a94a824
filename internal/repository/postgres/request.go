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

func (r *requestRepository) Create(ctx context.Context, req *model.BloodRequest) error {
	query := `
		INSERT INTO blood_requests (
			id, requester_id, urgency, blood_type_id, component_id,
			quantity_units, need_before, lat, lng, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	req.ID = uuid.New()
	req.Status = model.RequestStatusRequested
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.RequesterID,
		req.Urgency,
		req.BloodTypeID,
		req.ComponentID,
		req.QuantityUnits,
		req.NeedBefore,
		req.Lat,
		req.Lng,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create blood request: %w", err)
	}
	return nil
}

func (r *requestRepository) Get(ctx context.Context, id uuid.UUID) (*model.BloodRequest, error) {
	query := `
		SELECT id, requester_id, urgency, blood_type_id, component_id,
			   quantity_units, need_before, lat, lng, status, cancel_reason,
			   created_at, updated_at
		FROM blood_requests
		WHERE id = $1
	`
	var req model.BloodRequest
	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("request", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blood request: %w", err)
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filters *model.RequestFilters) ([]*model.BloodRequest, error) {
	query := `
		SELECT id, requester_id, urgency, blood_type_id, component_id,
			   quantity_units, need_before, lat, lng, status, cancel_reason,
			   created_at, updated_at
		FROM blood_requests
		WHERE 1 = 1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil && filters.RequesterID != nil {
		query += fmt.Sprintf(" AND requester_id = $%d", argCount)
		args = append(args, *filters.RequesterID)
		argCount++
	}

	if filters != nil && filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if filters != nil && filters.Urgency != "" {
		query += fmt.Sprintf(" AND urgency = $%d", argCount)
		args = append(args, filters.Urgency)
		argCount++
	}

	query += " ORDER BY created_at DESC"

	var requests []*model.BloodRequest
	err := r.db.SelectContext(ctx, &requests, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list blood requests: %w", err)
	}
	return requests, nil
}

// UpdateStatusFrom is the single mutation path for request status. The
// status guard is part of the UPDATE itself so two racing transitions
// cannot both apply.
func (r *requestRepository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from []model.RequestStatus, to model.RequestStatus, cancelReason *string) (bool, error) {
	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}

	query := `
		UPDATE blood_requests
		SET status = $1,
			cancel_reason = COALESCE($2, cancel_reason),
			updated_at = NOW()
		WHERE id = $3 AND status = ANY($4)
	`
	result, err := r.db.ExecContext(ctx, query, to, cancelReason, id, pq.Array(fromStrs))
	if err != nil {
		return false, fmt.Errorf("failed to update request status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}
