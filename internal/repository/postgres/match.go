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

// pq error code for unique_violation.
const uniqueViolation = "23505"

// Create inserts a PENDING match. The matches_open_pair_idx partial
// unique index makes the duplicate guard race-safe: of two concurrent
// creators for the same (request, donor) pair exactly one insert
// commits, the other gets a unique violation mapped to
// ErrDuplicateMatch.
func (r *matchRepository) Create(ctx context.Context, match *model.Match) error {
	query := `
		INSERT INTO matches (
			id, request_id, donor_id, compatibility_score, distance_km,
			status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	match.ID = uuid.New()
	match.Status = model.MatchStatusPending
	match.CreatedAt = time.Now()
	match.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		match.ID,
		match.RequestID,
		match.DonorID,
		match.CompatibilityScore,
		match.DistanceKm,
		match.Status,
		match.CreatedAt,
		match.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("create match: %w", apperrors.ErrDuplicateMatch)
		}
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

func (r *matchRepository) Get(ctx context.Context, id uuid.UUID) (*model.Match, error) {
	query := `
		SELECT id, request_id, donor_id, compatibility_score, distance_km,
			   status, contacted_at, response, created_at, updated_at
		FROM matches
		WHERE id = $1
	`
	var match model.Match
	err := r.db.GetContext(ctx, &match, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("match", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return &match, nil
}

func (r *matchRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*model.Match, error) {
	query := `
		SELECT id, request_id, donor_id, compatibility_score, distance_km,
			   status, contacted_at, response, created_at, updated_at
		FROM matches
		WHERE request_id = $1
		ORDER BY created_at ASC
	`
	var matches []*model.Match
	err := r.db.SelectContext(ctx, &matches, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

func (r *matchRepository) ExistsNonTerminal(ctx context.Context, requestID, donorID uuid.UUID) (bool, error) {
	nonTerminal := model.NonTerminalMatchStatuses()
	statuses := make([]string, len(nonTerminal))
	for i, s := range nonTerminal {
		statuses[i] = string(s)
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM matches
			WHERE request_id = $1 AND donor_id = $2 AND status = ANY($3)
		)
	`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, requestID, donorID, pq.Array(statuses))
	if err != nil {
		return false, fmt.Errorf("failed to check open match: %w", err)
	}
	return exists, nil
}

func (r *matchRepository) DonorIDsWithMatch(ctx context.Context, requestID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT donor_id FROM matches WHERE request_id = $1
	`
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matched donors: %w", err)
	}
	return ids, nil
}

// TransitionFrom applies a lifecycle move as one conditional UPDATE:
// read, validate and write happen in a single statement, so concurrent
// transitions on the same match cannot both succeed.
func (r *matchRepository) TransitionFrom(ctx context.Context, id uuid.UUID, from []model.MatchStatus, to model.MatchStatus, contactedAt *time.Time, response *string) (bool, error) {
	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}

	query := `
		UPDATE matches
		SET status = $1,
			contacted_at = COALESCE($2, contacted_at),
			response = COALESCE($3, response),
			updated_at = NOW()
		WHERE id = $4 AND status = ANY($5)
	`
	result, err := r.db.ExecContext(ctx, query, to, contactedAt, response, id, pq.Array(fromStrs))
	if err != nil {
		return false, fmt.Errorf("failed to transition match: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}
