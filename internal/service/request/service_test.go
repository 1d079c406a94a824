package request

import (
	"context"
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

// fakeRepo mirrors the conditional-update semantics of the real table.
type fakeRepo struct {
	requests map[uuid.UUID]*model.BloodRequest
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{requests: make(map[uuid.UUID]*model.BloodRequest)}
}

func (f *fakeRepo) Create(ctx context.Context, req *model.BloodRequest) error {
	req.ID = uuid.New()
	req.Status = model.RequestStatusRequested
	f.requests[req.ID] = req
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id uuid.UUID) (*model.BloodRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, apperrors.NotFound("blood request", nil)
	}
	copied := *req
	return &copied, nil
}

func (f *fakeRepo) List(ctx context.Context, filters *model.RequestFilters) ([]*model.BloodRequest, error) {
	var out []*model.BloodRequest
	for _, req := range f.requests {
		if filters != nil && filters.Status != "" && req.Status != filters.Status {
			continue
		}
		copied := *req
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from []model.RequestStatus, to model.RequestStatus, cancelReason *string) (bool, error) {
	req, ok := f.requests[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if req.Status == s {
			req.Status = to
			if cancelReason != nil {
				req.CancelReason = cancelReason
			}
			return true, nil
		}
	}
	return false, nil
}

type recordingEmitter struct {
	events []string
}

func (r *recordingEmitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	r.events = append(r.events, eventType)
	return nil
}

func newTestService() (*Service, *fakeRepo, *recordingEmitter) {
	repo := newFakeRepo()
	emitter := &recordingEmitter{}
	return NewService(repo, emitter, &logger.Logger{ZL: zerolog.Nop()}), repo, emitter
}

func createRequest(t *testing.T, svc *Service) *model.BloodRequest {
	t.Helper()
	need := time.Now().Add(48 * time.Hour)
	req, err := svc.CreateRequest(context.Background(), uuid.New(), &model.CreateBloodRequestRequest{
		Urgency:       model.UrgencyHigh,
		BloodTypeID:   4,
		ComponentID:   1,
		QuantityUnits: 2,
		NeedBefore:    &need,
	})
	require.NoError(t, err)
	return req
}

func TestCreateRequestStartsRequested(t *testing.T) {
	svc, _, emitter := newTestService()

	req := createRequest(t, svc)
	assert.Equal(t, model.RequestStatusRequested, req.Status)
	assert.Equal(t, []string{model.EventRequestCreated}, emitter.events)
}

func TestRequestLifecycleHappyPath(t *testing.T) {
	svc, _, emitter := newTestService()
	req := createRequest(t, svc)

	matching, err := svc.StartMatching(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusMatching, matching.Status)

	fulfilled, err := svc.Fulfill(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusFulfilled, fulfilled.Status)

	assert.Equal(t, []string{
		model.EventRequestCreated,
		model.EventRequestMatching,
		model.EventRequestFulfilled,
	}, emitter.events)
}

func TestFulfillRequiresMatching(t *testing.T) {
	svc, _, _ := newTestService()
	req := createRequest(t, svc)

	_, err := svc.Fulfill(context.Background(), req.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestCancelFromRequestedAndMatching(t *testing.T) {
	svc, repo, _ := newTestService()

	first := createRequest(t, svc)
	cancelled, err := svc.Cancel(context.Background(), first.ID, "duplicate entry")
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "duplicate entry", *cancelled.CancelReason)

	second := createRequest(t, svc)
	_, err = svc.StartMatching(context.Background(), second.ID)
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), second.ID, "patient transferred")
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusCancelled, repo.requests[second.ID].Status)
}

func TestCancelRejectedAfterFulfilled(t *testing.T) {
	svc, _, _ := newTestService()
	req := createRequest(t, svc)

	_, err := svc.StartMatching(context.Background(), req.ID)
	require.NoError(t, err)
	_, err = svc.Fulfill(context.Background(), req.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), req.ID, "too late")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestUpdateStatusRoutesThroughTransitions(t *testing.T) {
	svc, _, _ := newTestService()
	req := createRequest(t, svc)

	updated, err := svc.UpdateStatus(context.Background(), req.ID, &model.UpdateRequestStatusRequest{
		Status: model.RequestStatusMatching,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusMatching, updated.Status)

	// REQUESTED is never a transition target.
	_, err = svc.UpdateStatus(context.Background(), req.ID, &model.UpdateRequestStatusRequest{
		Status: model.RequestStatusRequested,
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}
