package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/email"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/geo"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/repository"
	apperrors "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/errors"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/logger"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/metrics"
)

// Evaluator resolves the compatible donor blood type set for a request.
type Evaluator interface {
	CompatibleDonorTypes(ctx context.Context, recipientBloodTypeID, componentID int) ([]int, error)
	ListCompatibilityRules(ctx context.Context, recipientBloodTypeID, componentID int) ([]*model.CompatibilityRule, error)
}

// EventEmitter stages lifecycle events for asynchronous delivery.
type EventEmitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type Service struct {
	requestRepo repository.RequestRepository
	donorRepo   repository.DonorRepository
	matchRepo   repository.MatchRepository
	userRepo    repository.UserRepository
	evaluator   Evaluator
	oracle      geo.Oracle
	events      EventEmitter
	emailSvc    email.Service
	metrics     *metrics.Metrics
	logger      *logger.Logger

	maxConcurrentLookups int
}

func NewService(
	requestRepo repository.RequestRepository,
	donorRepo repository.DonorRepository,
	matchRepo repository.MatchRepository,
	userRepo repository.UserRepository,
	evaluator Evaluator,
	oracle geo.Oracle,
	events EventEmitter,
	emailSvc email.Service,
	m *metrics.Metrics,
	logger *logger.Logger,
	maxConcurrentLookups int,
) *Service {
	if maxConcurrentLookups <= 0 {
		maxConcurrentLookups = 8
	}
	return &Service{
		requestRepo:          requestRepo,
		donorRepo:            donorRepo,
		matchRepo:            matchRepo,
		userRepo:             userRepo,
		evaluator:            evaluator,
		oracle:               oracle,
		events:               events,
		emailSvc:             emailSvc,
		metrics:              m,
		logger:               logger,
		maxConcurrentLookups: maxConcurrentLookups,
	}
}

// GetCompatibleDonors returns the full ranked candidate list for a
// request. An empty list is a valid result.
func (s *Service) GetCompatibleDonors(ctx context.Context, requestID uuid.UUID) (*model.RankedCandidates, error) {
	req, err := s.requestRepo.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.FindRankedCandidates(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	return &model.RankedCandidates{
		RequestID: req.ID,
		Donors:    candidates,
	}, nil
}

// FindRankedCandidates builds the ranked candidate list for a request,
// skipping donors in exclude. Ranking needs an origin, so a request
// without a location fails with ErrMissingLocation.
func (s *Service) FindRankedCandidates(ctx context.Context, req *model.BloodRequest, exclude map[uuid.UUID]struct{}) ([]model.Candidate, error) {
	if !req.HasLocation() {
		return nil, fmt.Errorf("request %s: %w", req.ID, apperrors.ErrMissingLocation)
	}

	start := time.Now()
	if s.metrics != nil {
		s.metrics.CandidateSearches.Inc()
		defer func() {
			s.metrics.MatchingLatency.Observe(time.Since(start).Seconds())
		}()
	}

	types, err := s.evaluator.CompatibleDonorTypes(ctx, req.BloodTypeID, req.ComponentID)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate compatibility: %w", err)
	}
	if len(types) == 0 {
		return []model.Candidate{}, nil
	}

	donors, err := s.donorRepo.FindReadyByBloodTypes(ctx, types)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}

	if len(exclude) > 0 {
		filtered := donors[:0]
		for _, d := range donors {
			if _, skip := exclude[d.ID]; !skip {
				filtered = append(filtered, d)
			}
		}
		donors = filtered
	}

	origin := model.Location{Lat: *req.Lat, Lng: *req.Lng}
	candidates := s.resolveDistances(ctx, origin, donors)
	sortCandidates(candidates)

	if s.metrics != nil {
		s.metrics.CandidatesRanked.Observe(float64(len(candidates)))
	}
	return candidates, nil
}

// CreateMatch records a new matching attempt between a request and a
// donor. At most one non-terminal match may exist per pair; the
// database guard backs the check under concurrency.
func (s *Service) CreateMatch(ctx context.Context, requestID, donorID uuid.UUID) (*model.Match, error) {
	req, err := s.requestRepo.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	donor, err := s.donorRepo.Get(ctx, donorID)
	if err != nil {
		return nil, err
	}

	exists, err := s.matchRepo.ExistsNonTerminal(ctx, requestID, donorID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open match: %w", err)
	}
	if exists {
		if s.metrics != nil {
			s.metrics.DuplicateMatchRejected.Inc()
		}
		return nil, fmt.Errorf("request %s donor %s: %w", requestID, donorID, apperrors.ErrDuplicateMatch)
	}

	match := &model.Match{
		RequestID:          requestID,
		DonorID:            donorID,
		DistanceKm:         s.matchDistance(ctx, req, donor),
		CompatibilityScore: s.compatibilityScore(ctx, req, donor),
	}

	if err := s.matchRepo.Create(ctx, match); err != nil {
		if s.metrics != nil && apperrors.FromError(err).Code == apperrors.ErrConflict {
			s.metrics.DuplicateMatchRejected.Inc()
		}
		return nil, err
	}

	s.emit(ctx, match, model.EventMatchCreated)
	s.logger.Info("match created",
		"match_id", match.ID.String(),
		"request_id", requestID.String(),
		"donor_id", donorID.String())
	return match, nil
}

// ContactMatch marks the donor as contacted and fires the notification
// email. The email is best effort; a delivery failure never rolls back
// the transition.
func (s *Service) ContactMatch(ctx context.Context, matchID uuid.UUID) (*model.Match, error) {
	now := time.Now()
	match, err := s.transition(ctx, matchID, model.MatchStatusContacted, &now, nil, model.EventMatchContacted)
	if err != nil {
		return nil, err
	}

	s.notifyDonor(ctx, match)
	return match, nil
}

func (s *Service) AcceptMatch(ctx context.Context, matchID uuid.UUID) (*model.Match, error) {
	response := "accepted"
	return s.transition(ctx, matchID, model.MatchStatusAccepted, nil, &response, model.EventMatchAccepted)
}

func (s *Service) DeclineMatch(ctx context.Context, matchID uuid.UUID) (*model.Match, error) {
	response := "declined"
	return s.transition(ctx, matchID, model.MatchStatusDeclined, nil, &response, model.EventMatchDeclined)
}

// MarkNoAnswer records that a contacted donor never responded. The
// emitted event is the escalation trigger for the next candidate.
func (s *Service) MarkNoAnswer(ctx context.Context, matchID uuid.UUID) (*model.Match, error) {
	return s.transition(ctx, matchID, model.MatchStatusNoAnswer, nil, nil, model.EventMatchNoAnswer)
}

func (s *Service) GetMatch(ctx context.Context, matchID uuid.UUID) (*model.Match, error) {
	return s.matchRepo.Get(ctx, matchID)
}

func (s *Service) ListMatches(ctx context.Context, requestID uuid.UUID) ([]*model.Match, error) {
	return s.matchRepo.ListByRequest(ctx, requestID)
}

// transition applies one guarded lifecycle move and emits its event.
func (s *Service) transition(ctx context.Context, matchID uuid.UUID, to model.MatchStatus, contactedAt *time.Time, response *string, eventType string) (*model.Match, error) {
	from := model.MatchStatusesAllowing(to)

	ok, err := s.matchRepo.TransitionFrom(ctx, matchID, from, to, contactedAt, response)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Distinguish a missing match from an illegal move.
		match, getErr := s.matchRepo.Get(ctx, matchID)
		if getErr != nil {
			return nil, getErr
		}
		if s.metrics != nil {
			s.metrics.MatchTransitions.WithLabelValues(string(to), "rejected").Inc()
		}
		return nil, fmt.Errorf("match %s in status %s cannot move to %s: %w",
			matchID, match.Status, to, apperrors.ErrInvalidTransition)
	}

	match, err := s.matchRepo.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.MatchTransitions.WithLabelValues(string(to), "applied").Inc()
	}
	s.emit(ctx, match, eventType)
	return match, nil
}

func (s *Service) emit(ctx context.Context, match *model.Match, eventType string) {
	evt := model.MatchEvent{
		MatchID:   match.ID,
		RequestID: match.RequestID,
		DonorID:   match.DonorID,
		Event:     eventType,
	}
	if err := s.events.Emit(ctx, eventType, evt); err != nil {
		// The transition already committed; the event loss is logged,
		// not propagated.
		s.logger.Error(err, "failed to stage match event",
			"match_id", match.ID.String(), "event_type", eventType)
	}
}

func (s *Service) matchDistance(ctx context.Context, req *model.BloodRequest, donor *model.Donor) float64 {
	if !req.HasLocation() || !donor.HasLocation() {
		return UnknownDistanceKm
	}

	origin := model.Location{Lat: *req.Lat, Lng: *req.Lng}
	dest := model.Location{Lat: *donor.Lat, Lng: *donor.Lng}

	km, err := s.oracle.DistanceKm(ctx, origin, dest)
	if err != nil {
		return UnknownDistanceKm
	}
	return km
}

// compatibilityScore picks the priority level of the rule that matched
// the donor's blood type, when one exists. Informational only.
func (s *Service) compatibilityScore(ctx context.Context, req *model.BloodRequest, donor *model.Donor) *int {
	if donor.BloodTypeID == nil {
		return nil
	}

	rules, err := s.evaluator.ListCompatibilityRules(ctx, req.BloodTypeID, req.ComponentID)
	if err != nil {
		return nil
	}

	for _, rule := range rules {
		if rule.IsCompatible && rule.DonorBloodTypeID == *donor.BloodTypeID {
			score := rule.PriorityLevel
			return &score
		}
	}
	return nil
}

func (s *Service) notifyDonor(ctx context.Context, match *model.Match) {
	if s.emailSvc == nil {
		return
	}

	donor, err := s.donorRepo.Get(ctx, match.DonorID)
	if err != nil {
		s.logger.Error(err, "failed to load donor for notification", "donor_id", match.DonorID.String())
		return
	}

	user, err := s.userRepo.Get(ctx, donor.UserID)
	if err != nil {
		s.logger.Error(err, "failed to load donor profile for notification", "user_id", donor.UserID.String())
		return
	}

	bloodGroup := ""
	if donor.BloodTypeID != nil {
		bloodGroup = fmt.Sprintf("type %d", *donor.BloodTypeID)
	}

	if err := s.emailSvc.SendDonorContacted(ctx, user.Email, user.FullName, bloodGroup); err != nil {
		s.logger.Error(err, "failed to send contact notification", "match_id", match.ID.String())
	}
}
