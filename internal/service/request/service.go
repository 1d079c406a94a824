package request

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/repository"
	apperrors "github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/errors"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/pkg/logger"
)

// EventEmitter stages lifecycle events for asynchronous delivery.
type EventEmitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

type Service struct {
	repo   repository.RequestRepository
	events EventEmitter
	logger *logger.Logger
}

func NewService(repo repository.RequestRepository, events EventEmitter, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		events: events,
		logger: logger,
	}
}

func (s *Service) CreateRequest(ctx context.Context, requesterID uuid.UUID, in *model.CreateBloodRequestRequest) (*model.BloodRequest, error) {
	req := &model.BloodRequest{
		RequesterID:   requesterID,
		Urgency:       in.Urgency,
		BloodTypeID:   in.BloodTypeID,
		ComponentID:   in.ComponentID,
		QuantityUnits: in.QuantityUnits,
		NeedBefore:    in.NeedBefore,
		Lat:           in.Lat,
		Lng:           in.Lng,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.emit(ctx, req.ID, model.EventRequestCreated)
	return req, nil
}

func (s *Service) GetRequest(ctx context.Context, id uuid.UUID) (*model.BloodRequest, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListRequests(ctx context.Context, filters *model.RequestFilters) ([]*model.BloodRequest, error) {
	return s.repo.List(ctx, filters)
}

// StartMatching moves the request into active matching. Only legal from
// REQUESTED.
func (s *Service) StartMatching(ctx context.Context, id uuid.UUID) (*model.BloodRequest, error) {
	return s.transitionTo(ctx, id, model.RequestStatusMatching, nil, model.EventRequestMatching)
}

// Fulfill closes the request after a confirmed donation. Only legal
// from MATCHING.
func (s *Service) Fulfill(ctx context.Context, id uuid.UUID) (*model.BloodRequest, error) {
	return s.transitionTo(ctx, id, model.RequestStatusFulfilled, nil, model.EventRequestFulfilled)
}

// Cancel terminates the request. Legal from any state but FULFILLED.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.BloodRequest, error) {
	return s.transitionTo(ctx, id, model.RequestStatusCancelled, &reason, model.EventRequestCancelled)
}

// UpdateStatus is the staff escape hatch; it routes through the same
// transition table as the named operations.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, in *model.UpdateRequestStatusRequest) (*model.BloodRequest, error) {
	switch in.Status {
	case model.RequestStatusMatching:
		return s.StartMatching(ctx, id)
	case model.RequestStatusFulfilled:
		return s.Fulfill(ctx, id)
	case model.RequestStatusCancelled:
		return s.Cancel(ctx, id, in.Reason)
	default:
		return nil, fmt.Errorf("status %s is not a transition target: %w",
			in.Status, apperrors.ErrInvalidTransition)
	}
}

func (s *Service) transitionTo(ctx context.Context, id uuid.UUID, to model.RequestStatus, cancelReason *string, eventType string) (*model.BloodRequest, error) {
	from := model.RequestStatusesAllowing(to)

	ok, err := s.repo.UpdateStatusFrom(ctx, id, from, to, cancelReason)
	if err != nil {
		return nil, err
	}
	if !ok {
		req, getErr := s.repo.Get(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("request %s in status %s cannot move to %s: %w",
			id, req.Status, to, apperrors.ErrInvalidTransition)
	}

	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, id, eventType)
	s.logger.Info("request transitioned", "request_id", id.String(), "status", string(to))
	return req, nil
}

func (s *Service) emit(ctx context.Context, requestID uuid.UUID, eventType string) {
	evt := model.RequestEvent{RequestID: requestID, Event: eventType}
	if err := s.events.Emit(ctx, eventType, evt); err != nil {
		s.logger.Error(err, "failed to stage request event",
			"request_id", requestID.String(), "event_type", eventType)
	}
}
