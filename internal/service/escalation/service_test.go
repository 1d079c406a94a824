package escalation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	apperrors "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/errors"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/logger"
)

type fakeRequestRepo struct {
	requests map[uuid.UUID]*model.BloodRequest
}

func (f *fakeRequestRepo) Create(ctx context.Context, req *model.BloodRequest) error { return nil }

func (f *fakeRequestRepo) Get(ctx context.Context, id uuid.UUID) (*model.BloodRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, apperrors.NotFound("blood request", nil)
	}
	return req, nil
}

func (f *fakeRequestRepo) List(ctx context.Context, filters *model.RequestFilters) ([]*model.BloodRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from []model.RequestStatus, to model.RequestStatus, cancelReason *string) (bool, error) {
	return false, nil
}

type fakeMatchRepo struct {
	matchedDonors []uuid.UUID
}

func (f *fakeMatchRepo) Create(ctx context.Context, match *model.Match) error { return nil }
func (f *fakeMatchRepo) Get(ctx context.Context, id uuid.UUID) (*model.Match, error) {
	return nil, apperrors.NotFound("match", nil)
}
func (f *fakeMatchRepo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*model.Match, error) {
	return nil, nil
}
func (f *fakeMatchRepo) ExistsNonTerminal(ctx context.Context, requestID, donorID uuid.UUID) (bool, error) {
	return false, nil
}
func (f *fakeMatchRepo) DonorIDsWithMatch(ctx context.Context, requestID uuid.UUID) ([]uuid.UUID, error) {
	return f.matchedDonors, nil
}
func (f *fakeMatchRepo) TransitionFrom(ctx context.Context, id uuid.UUID, from []model.MatchStatus, to model.MatchStatus, contactedAt *time.Time, response *string) (bool, error) {
	return false, nil
}

// fakeMatcher records what the escalation asked for.
type fakeMatcher struct {
	candidates []model.Candidate
	excluded   map[uuid.UUID]struct{}
	created    []uuid.UUID
	createErr  error
}

func (f *fakeMatcher) FindRankedCandidates(ctx context.Context, req *model.BloodRequest, exclude map[uuid.UUID]struct{}) ([]model.Candidate, error) {
	f.excluded = exclude
	var out []model.Candidate
	for _, c := range f.candidates {
		if _, skip := exclude[c.DonorID]; skip {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeMatcher) CreateMatch(ctx context.Context, requestID, donorID uuid.UUID) (*model.Match, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, donorID)
	m := &model.Match{RequestID: requestID, DonorID: donorID, Status: model.MatchStatusPending}
	m.ID = uuid.New()
	return m, nil
}

func newMatchingRequest() *model.BloodRequest {
	req := &model.BloodRequest{Status: model.RequestStatusMatching}
	req.ID = uuid.New()
	return req
}

func newTestService(req *model.BloodRequest, matchRepo *fakeMatchRepo, matcher *fakeMatcher) *Service {
	requests := &fakeRequestRepo{requests: map[uuid.UUID]*model.BloodRequest{}}
	if req != nil {
		requests.requests[req.ID] = req
	}
	return NewService(requests, matchRepo, matcher, nil, &logger.Logger{ZL: zerolog.Nop()})
}

func noAnswerEvent(requestID uuid.UUID) model.MatchEvent {
	return model.MatchEvent{
		MatchID:   uuid.New(),
		RequestID: requestID,
		DonorID:   uuid.New(),
		Event:     model.EventMatchNoAnswer,
	}
}

func TestEscalationCreatesNextBestMatch(t *testing.T) {
	req := newMatchingRequest()
	alreadyMatched := uuid.New()
	next := uuid.New()
	further := uuid.New()

	matcher := &fakeMatcher{candidates: []model.Candidate{
		{DonorID: alreadyMatched, DistanceKm: 1},
		{DonorID: next, DistanceKm: 4},
		{DonorID: further, DistanceKm: 12},
	}}
	svc := newTestService(req, &fakeMatchRepo{matchedDonors: []uuid.UUID{alreadyMatched}}, matcher)

	err := svc.HandleMatchEvent(context.Background(), noAnswerEvent(req.ID))
	require.NoError(t, err)

	// The donor who already had a match is excluded; the nearest
	// remaining candidate gets the new match.
	assert.Contains(t, matcher.excluded, alreadyMatched)
	assert.Equal(t, []uuid.UUID{next}, matcher.created)
}

func TestEscalationIgnoresNonTriggerEvents(t *testing.T) {
	req := newMatchingRequest()
	matcher := &fakeMatcher{candidates: []model.Candidate{{DonorID: uuid.New()}}}
	svc := newTestService(req, &fakeMatchRepo{}, matcher)

	for _, event := range []string{model.EventMatchCreated, model.EventMatchContacted, model.EventMatchAccepted} {
		evt := noAnswerEvent(req.ID)
		evt.Event = event
		require.NoError(t, svc.HandleMatchEvent(context.Background(), evt))
	}
	assert.Empty(t, matcher.created)
}

func TestEscalationSkipsClosedRequest(t *testing.T) {
	req := newMatchingRequest()
	req.Status = model.RequestStatusCancelled
	matcher := &fakeMatcher{candidates: []model.Candidate{{DonorID: uuid.New()}}}
	svc := newTestService(req, &fakeMatchRepo{}, matcher)

	err := svc.HandleMatchEvent(context.Background(), noAnswerEvent(req.ID))
	require.NoError(t, err)
	assert.Empty(t, matcher.created)
}

func TestEscalationNoCandidatesLeft(t *testing.T) {
	req := newMatchingRequest()
	exhausted := uuid.New()
	matcher := &fakeMatcher{candidates: []model.Candidate{{DonorID: exhausted}}}
	svc := newTestService(req, &fakeMatchRepo{matchedDonors: []uuid.UUID{exhausted}}, matcher)

	err := svc.HandleMatchEvent(context.Background(), noAnswerEvent(req.ID))
	require.NoError(t, err)
	assert.Empty(t, matcher.created)
}

func TestEscalationDuplicateMatchIsIdempotent(t *testing.T) {
	req := newMatchingRequest()
	matcher := &fakeMatcher{
		candidates: []model.Candidate{{DonorID: uuid.New()}},
		createErr:  fmt.Errorf("create match: %w", apperrors.ErrDuplicateMatch),
	}
	svc := newTestService(req, &fakeMatchRepo{}, matcher)

	// A concurrent worker beat us to it; that is success, not failure.
	err := svc.HandleMatchEvent(context.Background(), noAnswerEvent(req.ID))
	assert.NoError(t, err)
}

func TestEscalationDeclinedAlsoTriggers(t *testing.T) {
	req := newMatchingRequest()
	next := uuid.New()
	matcher := &fakeMatcher{candidates: []model.Candidate{{DonorID: next, DistanceKm: 2}}}
	svc := newTestService(req, &fakeMatchRepo{}, matcher)

	evt := noAnswerEvent(req.ID)
	evt.Event = model.EventMatchDeclined
	require.NoError(t, svc.HandleMatchEvent(context.Background(), evt))
	assert.Equal(t, []uuid.UUID{next}, matcher.created)
}
