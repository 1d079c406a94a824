package escalation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/repository"
	apperrors "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/errors"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/logger"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/metrics"
)

// Matcher is the slice of the matching service the escalation pipeline
// needs: re-rank and create the next match.
type Matcher interface {
	FindRankedCandidates(ctx context.Context, req *model.BloodRequest, exclude map[uuid.UUID]struct{}) ([]model.Candidate, error)
	CreateMatch(ctx context.Context, requestID, donorID uuid.UUID) (*model.Match, error)
}

// Service reacts to terminal non-success match events by lining up the
// next ranked candidate. It holds no state of its own; every handling
// attempt is independently retryable.
type Service struct {
	requestRepo repository.RequestRepository
	matchRepo   repository.MatchRepository
	matcher     Matcher
	metrics     *metrics.Metrics
	logger      *logger.Logger
}

func NewService(
	requestRepo repository.RequestRepository,
	matchRepo repository.MatchRepository,
	matcher Matcher,
	m *metrics.Metrics,
	logger *logger.Logger,
) *Service {
	return &Service{
		requestRepo: requestRepo,
		matchRepo:   matchRepo,
		matcher:     matcher,
		metrics:     m,
		logger:      logger,
	}
}

// HandleMatchEvent processes one lifecycle event. Events that are not
// escalation triggers are ignored.
func (s *Service) HandleMatchEvent(ctx context.Context, evt model.MatchEvent) error {
	switch evt.Event {
	case model.EventMatchNoAnswer, model.EventMatchDeclined:
	default:
		return nil
	}

	req, err := s.requestRepo.Get(ctx, evt.RequestID)
	if err != nil {
		return fmt.Errorf("failed to load request for escalation: %w", err)
	}

	if req.Status.IsTerminal() {
		s.logger.Info("skipping escalation for closed request",
			"request_id", req.ID.String(), "status", string(req.Status))
		return nil
	}

	// Donors with any recorded match for this request, terminal or
	// not, are out of the running.
	matched, err := s.matchRepo.DonorIDsWithMatch(ctx, evt.RequestID)
	if err != nil {
		return fmt.Errorf("failed to list matched donors: %w", err)
	}
	exclude := make(map[uuid.UUID]struct{}, len(matched))
	for _, id := range matched {
		exclude[id] = struct{}{}
	}

	candidates, err := s.matcher.FindRankedCandidates(ctx, req, exclude)
	if err != nil {
		return fmt.Errorf("failed to rank candidates for escalation: %w", err)
	}

	if len(candidates) == 0 {
		s.logger.Warn("no candidates left to escalate to",
			"request_id", req.ID.String(), "trigger", evt.Event)
		return nil
	}

	next := candidates[0]
	match, err := s.matcher.CreateMatch(ctx, req.ID, next.DonorID)
	if err != nil {
		// A concurrent escalation already created the next match.
		if errors.Is(err, apperrors.ErrDuplicateMatch) {
			s.logger.Info("escalation already handled",
				"request_id", req.ID.String(), "donor_id", next.DonorID.String())
			return nil
		}
		return fmt.Errorf("failed to create escalation match: %w", err)
	}

	if s.metrics != nil {
		s.metrics.EscalationsTriggered.WithLabelValues(evt.Event).Inc()
	}
	s.logger.Info("escalated to next candidate",
		"request_id", req.ID.String(),
		"match_id", match.ID.String(),
		"donor_id", next.DonorID.String(),
		"distance_km", next.DistanceKm,
		"trigger", evt.Event)
	return nil
}
