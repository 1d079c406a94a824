package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
	}

	DonorRepository interface {
		Create(ctx context.Context, donor *model.Donor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Donor, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Donor, error)
		Update(ctx context.Context, donor *model.Donor) error
		List(ctx context.Context, filters *model.DonorFilters) ([]*model.Donor, error)
		// FindReadyByBloodTypes returns ready donors with a known
		// location whose blood type is in the given set, joined with
		// profile data for candidate presentation.
		FindReadyByBloodTypes(ctx context.Context, bloodTypeIDs []int) ([]*model.CandidateDonor, error)
	}

	BloodRepository interface {
		ListBloodTypes(ctx context.Context) ([]*model.BloodType, error)
		GetBloodType(ctx context.Context, id int) (*model.BloodType, error)
		ListComponents(ctx context.Context) ([]*model.BloodComponent, error)
		// ListCompatibilityRules returns every rule for the given
		// recipient type and component, compatible or not.
		ListCompatibilityRules(ctx context.Context, recipientBloodTypeID, componentID int) ([]*model.CompatibilityRule, error)
	}

	RequestRepository interface {
		Create(ctx context.Context, req *model.BloodRequest) error
		Get(ctx context.Context, id uuid.UUID) (*model.BloodRequest, error)
		List(ctx context.Context, filters *model.RequestFilters) ([]*model.BloodRequest, error)
		// UpdateStatusFrom atomically moves the request to the target
		// status if its current status is one of from. Returns false
		// when the guard did not match (no rows updated).
		UpdateStatusFrom(ctx context.Context, id uuid.UUID, from []model.RequestStatus, to model.RequestStatus, cancelReason *string) (bool, error)
	}

	MatchRepository interface {
		// Create inserts a new PENDING match. The partial unique index
		// on (request_id, donor_id) over non-terminal statuses makes
		// the duplicate check race-safe; a unique violation surfaces
		// as errors.ErrDuplicateMatch.
		Create(ctx context.Context, match *model.Match) error
		Get(ctx context.Context, id uuid.UUID) (*model.Match, error)
		ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*model.Match, error)
		ExistsNonTerminal(ctx context.Context, requestID, donorID uuid.UUID) (bool, error)
		// DonorIDsWithMatch returns donors that already have any match,
		// terminal or not, recorded for the request.
		DonorIDsWithMatch(ctx context.Context, requestID uuid.UUID) ([]uuid.UUID, error)
		// TransitionFrom atomically moves the match to the target
		// status if its current status is one of from. contactedAt and
		// response are written when non-nil. Returns false when the
		// guard did not match.
		TransitionFrom(ctx context.Context, id uuid.UUID, from []model.MatchStatus, to model.MatchStatus, contactedAt *time.Time, response *string) (bool, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		BeginTx(ctx context.Context) (*sql.Tx, error)
		UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uuid.UUID, status string, errorMessage *string, retryAt *time.Time) error
		MoveToDeadLetter(ctx context.Context, tx *sql.Tx, event *model.OutboxEvent) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	PostRepository interface {
		Create(ctx context.Context, post *model.Post) error
		Get(ctx context.Context, id uuid.UUID) (*model.Post, error)
		GetBySlug(ctx context.Context, slug string) (*model.Post, error)
		Update(ctx context.Context, post *model.Post) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PostFilters) ([]*model.Post, error)
	}
)
