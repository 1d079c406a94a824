package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	apperrors "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/errors"
)

func (r *bloodRepository) ListBloodTypes(ctx context.Context) ([]*model.BloodType, error) {
	query := `SELECT id, name FROM blood_types ORDER BY id ASC`

	var types []*model.BloodType
	err := r.db.SelectContext(ctx, &types, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blood types: %w", err)
	}
	return types, nil
}

func (r *bloodRepository) GetBloodType(ctx context.Context, id int) (*model.BloodType, error) {
	query := `SELECT id, name FROM blood_types WHERE id = $1`

	var bt model.BloodType
	err := r.db.GetContext(ctx, &bt, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("blood type", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blood type: %w", err)
	}
	return &bt, nil
}

func (r *bloodRepository) ListComponents(ctx context.Context) ([]*model.BloodComponent, error) {
	query := `SELECT id, name FROM blood_components ORDER BY id ASC`

	var components []*model.BloodComponent
	err := r.db.SelectContext(ctx, &components, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	return components, nil
}

func (r *bloodRepository) ListCompatibilityRules(ctx context.Context, recipientBloodTypeID, componentID int) ([]*model.CompatibilityRule, error) {
	query := `
		SELECT donor_blood_type_id, recipient_blood_type_id, component_id,
			   is_compatible, priority_level
		FROM compatibility_rules
		WHERE recipient_blood_type_id = $1 AND component_id = $2
	`
	var rules []*model.CompatibilityRule
	err := r.db.SelectContext(ctx, &rules, query, recipientBloodTypeID, componentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list compatibility rules: %w", err)
	}
	return rules, nil
}
