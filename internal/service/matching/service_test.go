package matching

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/email"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/geo"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	apperrors "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/errors"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/logger"
)

func testLogger() *logger.Logger {
	return &logger.Logger{ZL: zerolog.Nop()}
}

func ptr[T any](v T) *T { return &v }

// fakeRequestRepo serves a fixed set of requests.
type fakeRequestRepo struct {
	requests map[uuid.UUID]*model.BloodRequest
}

func (f *fakeRequestRepo) Create(ctx context.Context, req *model.BloodRequest) error { return nil }

func (f *fakeRequestRepo) Get(ctx context.Context, id uuid.UUID) (*model.BloodRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, apperrors.NotFound("request", nil)
	}
	return req, nil
}

func (f *fakeRequestRepo) List(ctx context.Context, filters *model.RequestFilters) ([]*model.BloodRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from []model.RequestStatus, to model.RequestStatus, cancelReason *string) (bool, error) {
	return false, nil
}

type fakeDonorRepo struct {
	donors     map[uuid.UUID]*model.Donor
	candidates []*model.CandidateDonor
}

func (f *fakeDonorRepo) Create(ctx context.Context, donor *model.Donor) error { return nil }

func (f *fakeDonorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Donor, error) {
	donor, ok := f.donors[id]
	if !ok {
		return nil, apperrors.NotFound("donor", nil)
	}
	return donor, nil
}

func (f *fakeDonorRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Donor, error) {
	return nil, apperrors.NotFound("donor", nil)
}

func (f *fakeDonorRepo) Update(ctx context.Context, donor *model.Donor) error { return nil }

func (f *fakeDonorRepo) List(ctx context.Context, filters *model.DonorFilters) ([]*model.Donor, error) {
	return nil, nil
}

func (f *fakeDonorRepo) FindReadyByBloodTypes(ctx context.Context, bloodTypeIDs []int) ([]*model.CandidateDonor, error) {
	return f.candidates, nil
}

// fakeMatchRepo keeps matches in memory with the same duplicate and
// transition guarantees the real table gives.
type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[uuid.UUID]*model.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[uuid.UUID]*model.Match)}
}

func (f *fakeMatchRepo) Create(ctx context.Context, match *model.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.matches {
		if m.RequestID == match.RequestID && m.DonorID == match.DonorID && !m.Status.IsTerminal() {
			return fmt.Errorf("create match: %w", apperrors.ErrDuplicateMatch)
		}
	}
	match.ID = uuid.New()
	match.Status = model.MatchStatusPending
	f.matches[match.ID] = match
	return nil
}

func (f *fakeMatchRepo) Get(ctx context.Context, id uuid.UUID) (*model.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return nil, apperrors.NotFound("match", nil)
	}
	copied := *m
	return &copied, nil
}

func (f *fakeMatchRepo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*model.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Match
	for _, m := range f.matches {
		if m.RequestID == requestID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeMatchRepo) ExistsNonTerminal(ctx context.Context, requestID, donorID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.matches {
		if m.RequestID == requestID && m.DonorID == donorID && !m.Status.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMatchRepo) DonorIDsWithMatch(ctx context.Context, requestID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []uuid.UUID
	for _, m := range f.matches {
		if m.RequestID == requestID {
			ids = append(ids, m.DonorID)
		}
	}
	return ids, nil
}

func (f *fakeMatchRepo) TransitionFrom(ctx context.Context, id uuid.UUID, from []model.MatchStatus, to model.MatchStatus, contactedAt *time.Time, response *string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if m.Status == s {
			m.Status = to
			if contactedAt != nil {
				m.ContactedAt = contactedAt
			}
			if response != nil {
				m.Response = response
			}
			return true, nil
		}
	}
	return false, nil
}

type fakeUserRepo struct{}

func (fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return &model.User{Email: "donor@example.com", FullName: "Donor"}, nil
}
func (fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, apperrors.NotFound("user", nil)
}
func (fakeUserRepo) Update(ctx context.Context, user *model.User) error { return nil }

type fakeEvaluator struct {
	types []int
	rules []*model.CompatibilityRule
}

func (f *fakeEvaluator) CompatibleDonorTypes(ctx context.Context, recipientBloodTypeID, componentID int) ([]int, error) {
	return f.types, nil
}

func (f *fakeEvaluator) ListCompatibilityRules(ctx context.Context, recipientBloodTypeID, componentID int) ([]*model.CompatibilityRule, error) {
	return f.rules, nil
}

// fakeOracle answers with a per-destination distance table; unlisted
// destinations fail like a timed-out lookup.
type fakeOracle struct {
	distances map[model.Location]float64
}

func (f *fakeOracle) DistanceKm(ctx context.Context, origin, dest model.Location) (float64, error) {
	if km, ok := f.distances[dest]; ok {
		return km, nil
	}
	return 0, geo.ErrUnavailable
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeEmitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	return nil
}

func (f *fakeEmitter) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

type fixture struct {
	svc      *Service
	requests *fakeRequestRepo
	donors   *fakeDonorRepo
	matches  *fakeMatchRepo
	emitter  *fakeEmitter
	oracle   *fakeOracle
}

func newFixture(evaluator *fakeEvaluator, oracle *fakeOracle) *fixture {
	requests := &fakeRequestRepo{requests: make(map[uuid.UUID]*model.BloodRequest)}
	donors := &fakeDonorRepo{donors: make(map[uuid.UUID]*model.Donor)}
	matches := newFakeMatchRepo()
	emitter := &fakeEmitter{}

	svc := NewService(
		requests, donors, matches, fakeUserRepo{},
		evaluator, oracle, emitter, email.NewNoopService(),
		nil, testLogger(), 4,
	)
	return &fixture{svc: svc, requests: requests, donors: donors, matches: matches, emitter: emitter, oracle: oracle}
}

func candidateDonor(id uuid.UUID, lat, lng float64) *model.CandidateDonor {
	d := &model.CandidateDonor{FullName: "Donor", BloodGroup: "O-"}
	d.ID = id
	d.Lat = ptr(lat)
	d.Lng = ptr(lng)
	d.IsReady = true
	d.BloodTypeID = ptr(1)
	return d
}

func storedRequest(f *fixture, lat, lng *float64, status model.RequestStatus) *model.BloodRequest {
	req := &model.BloodRequest{
		BloodTypeID: 4,
		ComponentID: 1,
		Status:      status,
		Lat:         lat,
		Lng:         lng,
	}
	req.ID = uuid.New()
	f.requests.requests[req.ID] = req
	return req
}

func TestFindRankedCandidatesOrdersByDistance(t *testing.T) {
	near := uuid.New()
	far := uuid.New()
	oracle := &fakeOracle{distances: map[model.Location]float64{
		{Lat: 1, Lng: 1}: 3,
		{Lat: 2, Lng: 2}: 9,
	}}
	f := newFixture(&fakeEvaluator{types: []int{1}}, oracle)
	f.donors.candidates = []*model.CandidateDonor{
		candidateDonor(far, 2, 2),
		candidateDonor(near, 1, 1),
	}
	req := storedRequest(f, ptr(0.0), ptr(0.0), model.RequestStatusMatching)

	candidates, err := f.svc.FindRankedCandidates(context.Background(), req, nil)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, near, candidates[0].DonorID)
	assert.Equal(t, 3.0, candidates[0].DistanceKm)
	assert.Equal(t, far, candidates[1].DonorID)
	assert.Equal(t, 9.0, candidates[1].DistanceKm)
}

func TestFindRankedCandidatesFailedLookupSinksCandidate(t *testing.T) {
	known := uuid.New()
	unknown := uuid.New()
	oracle := &fakeOracle{distances: map[model.Location]float64{
		{Lat: 5, Lng: 5}: 120,
	}}
	f := newFixture(&fakeEvaluator{types: []int{1}}, oracle)
	f.donors.candidates = []*model.CandidateDonor{
		candidateDonor(unknown, 9, 9),
		candidateDonor(known, 5, 5),
	}
	req := storedRequest(f, ptr(0.0), ptr(0.0), model.RequestStatusMatching)

	candidates, err := f.svc.FindRankedCandidates(context.Background(), req, nil)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	// A failed lookup keeps the candidate, at the bottom.
	assert.Equal(t, known, candidates[0].DonorID)
	assert.Equal(t, unknown, candidates[1].DonorID)
	assert.Equal(t, UnknownDistanceKm, candidates[1].DistanceKm)
}

func TestFindRankedCandidatesMissingLocation(t *testing.T) {
	f := newFixture(&fakeEvaluator{types: []int{1}}, &fakeOracle{})
	req := storedRequest(f, nil, nil, model.RequestStatusMatching)

	_, err := f.svc.FindRankedCandidates(context.Background(), req, nil)
	assert.ErrorIs(t, err, apperrors.ErrMissingLocation)
}

func TestFindRankedCandidatesNoCompatibleTypes(t *testing.T) {
	f := newFixture(&fakeEvaluator{types: nil}, &fakeOracle{})
	req := storedRequest(f, ptr(0.0), ptr(0.0), model.RequestStatusMatching)

	candidates, err := f.svc.FindRankedCandidates(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestFindRankedCandidatesHonorsExclusions(t *testing.T) {
	kept := uuid.New()
	excluded := uuid.New()
	oracle := &fakeOracle{distances: map[model.Location]float64{
		{Lat: 1, Lng: 1}: 2,
		{Lat: 2, Lng: 2}: 1,
	}}
	f := newFixture(&fakeEvaluator{types: []int{1}}, oracle)
	f.donors.candidates = []*model.CandidateDonor{
		candidateDonor(kept, 1, 1),
		candidateDonor(excluded, 2, 2),
	}
	req := storedRequest(f, ptr(0.0), ptr(0.0), model.RequestStatusMatching)

	candidates, err := f.svc.FindRankedCandidates(context.Background(), req,
		map[uuid.UUID]struct{}{excluded: {}})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, kept, candidates[0].DonorID)
}

func TestCreateMatchRejectsOpenDuplicate(t *testing.T) {
	f := newFixture(&fakeEvaluator{types: []int{1}}, &fakeOracle{})
	req := storedRequest(f, ptr(0.0), ptr(0.0), model.RequestStatusMatching)

	donor := &model.Donor{IsReady: true}
	donor.ID = uuid.New()
	f.donors.donors[donor.ID] = donor

	_, err := f.svc.CreateMatch(context.Background(), req.ID, donor.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateMatch(context.Background(), req.ID, donor.ID)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateMatch)
}

func TestCreateMatchAllowsRematchAfterTerminal(t *testing.T) {
	f := newFixture(&fakeEvaluator{types: []int{1}}, &fakeOracle{})
	req := storedRequest(f, ptr(0.0), ptr(0.0), model.RequestStatusMatching)

	donor := &model.Donor{IsReady: true}
	donor.ID = uuid.New()
	f.donors.donors[donor.ID] = donor

	first, err := f.svc.CreateMatch(context.Background(), req.ID, donor.ID)
	require.NoError(t, err)

	_, err = f.svc.DeclineMatch(context.Background(), first.ID)
	require.NoError(t, err)

	// The declined match is terminal; a new attempt for the same pair
	// is legal again.
	_, err = f.svc.CreateMatch(context.Background(), req.ID, donor.ID)
	assert.NoError(t, err)
}

func TestCreateMatchUnknownDistanceSentinel(t *testing.T) {
	f := newFixture(&fakeEvaluator{types: []int{1}}, &fakeOracle{})
	req := storedRequest(f, ptr(0.0), ptr(0.0), model.RequestStatusMatching)

	donor := &model.Donor{IsReady: true, Lat: ptr(3.0), Lng: ptr(3.0)}
	donor.ID = uuid.New()
	f.donors.donors[donor.ID] = donor

	match, err := f.svc.CreateMatch(context.Background(), req.ID, donor.ID)
	require.NoError(t, err)
	assert.Equal(t, UnknownDistanceKm, match.DistanceKm)
}

func TestMatchLifecycleHappyPath(t *testing.T) {
	f := newFixture(&fakeEvaluator{types: []int{1}}, &fakeOracle{})
	req := storedRequest(f, ptr(0.0), ptr(0.0), model.RequestStatusMatching)

	donor := &model.Donor{IsReady: true}
	donor.ID = uuid.New()
	f.donors.donors[donor.ID] = donor

	match, err := f.svc.CreateMatch(context.Background(), req.ID, donor.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchStatusPending, match.Status)

	contacted, err := f.svc.ContactMatch(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchStatusContacted, contacted.Status)
	assert.NotNil(t, contacted.ContactedAt)

	accepted, err := f.svc.AcceptMatch(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.Response)
	assert.Equal(t, "accepted", *accepted.Response)

	assert.Equal(t, []string{
		model.EventMatchCreated,
		model.EventMatchContacted,
		model.EventMatchAccepted,
	}, f.emitter.all())
}

func TestMarkNoAnswerRequiresContact(t *testing.T) {
	f := newFixture(&fakeEvaluator{types: []int{1}}, &fakeOracle{})
	req := storedRequest(f, ptr(0.0), ptr(0.0), model.RequestStatusMatching)

	donor := &model.Donor{IsReady: true}
	donor.ID = uuid.New()
	f.donors.donors[donor.ID] = donor

	match, err := f.svc.CreateMatch(context.Background(), req.ID, donor.ID)
	require.NoError(t, err)

	// Straight from PENDING the move is illegal.
	_, err = f.svc.MarkNoAnswer(context.Background(), match.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	_, err = f.svc.ContactMatch(context.Background(), match.ID)
	require.NoError(t, err)

	noAnswer, err := f.svc.MarkNoAnswer(context.Background(), match.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MatchStatusNoAnswer, noAnswer.Status)
	assert.Contains(t, f.emitter.all(), model.EventMatchNoAnswer)
}

func TestTransitionOnMissingMatch(t *testing.T) {
	f := newFixture(&fakeEvaluator{types: []int{1}}, &fakeOracle{})

	_, err := f.svc.AcceptMatch(context.Background(), uuid.New())
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestTerminalMatchRejectsFurtherMoves(t *testing.T) {
	f := newFixture(&fakeEvaluator{types: []int{1}}, &fakeOracle{})
	req := storedRequest(f, ptr(0.0), ptr(0.0), model.RequestStatusMatching)

	donor := &model.Donor{IsReady: true}
	donor.ID = uuid.New()
	f.donors.donors[donor.ID] = donor

	match, err := f.svc.CreateMatch(context.Background(), req.ID, donor.ID)
	require.NoError(t, err)
	_, err = f.svc.DeclineMatch(context.Background(), match.ID)
	require.NoError(t, err)

	_, err = f.svc.AcceptMatch(context.Background(), match.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}
