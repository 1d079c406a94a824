package model

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusRequested RequestStatus = "REQUESTED"
	RequestStatusMatching  RequestStatus = "MATCHING"
	RequestStatusFulfilled RequestStatus = "FULFILLED"
	RequestStatusCancelled RequestStatus = "CANCELLED"
)

type RequestUrgency string

const (
	UrgencyLow    RequestUrgency = "LOW"
	UrgencyNormal RequestUrgency = "NORMAL"
	UrgencyHigh   RequestUrgency = "HIGH"
)

// requestTransitions is the full request lifecycle: REQUESTED may start
// matching or be cancelled, MATCHING may be fulfilled or cancelled, and
// FULFILLED/CANCELLED are terminal.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusRequested: {RequestStatusMatching, RequestStatusCancelled},
	RequestStatusMatching:  {RequestStatusFulfilled, RequestStatusCancelled},
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range requestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RequestStatusesAllowing lists the statuses from which next is reachable.
// Repositories use it to build conditional status updates.
func RequestStatusesAllowing(next RequestStatus) []RequestStatus {
	var from []RequestStatus
	for s, targets := range requestTransitions {
		for _, t := range targets {
			if t == next {
				from = append(from, s)
			}
		}
	}
	return from
}

// IsTerminal reports whether no further transitions are possible.
func (s RequestStatus) IsTerminal() bool {
	return len(requestTransitions[s]) == 0
}

type BloodRequest struct {
	Base
	RequesterID   uuid.UUID      `db:"requester_id" json:"requester_id"`
	Urgency       RequestUrgency `db:"urgency" json:"urgency"`
	BloodTypeID   int            `db:"blood_type_id" json:"blood_type_id"`
	ComponentID   int            `db:"component_id" json:"component_id"`
	QuantityUnits int            `db:"quantity_units" json:"quantity_units"`
	NeedBefore    *time.Time     `db:"need_before" json:"need_before,omitempty"`
	Lat           *float64       `db:"lat" json:"lat,omitempty"`
	Lng           *float64       `db:"lng" json:"lng,omitempty"`
	Status        RequestStatus  `db:"status" json:"status"`
	CancelReason  *string        `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

// HasLocation reports whether candidates can be ranked for this request.
func (r *BloodRequest) HasLocation() bool {
	return r.Lat != nil && r.Lng != nil
}

type CreateBloodRequestRequest struct {
	Urgency       RequestUrgency `json:"urgency" binding:"required,oneof=LOW NORMAL HIGH"`
	BloodTypeID   int            `json:"blood_type_id" binding:"required"`
	ComponentID   int            `json:"component_id" binding:"required"`
	QuantityUnits int            `json:"quantity_units" binding:"required,gt=0"`
	NeedBefore    *time.Time     `json:"need_before"`
	Lat           *float64       `json:"lat" binding:"omitempty,min=-90,max=90"`
	Lng           *float64       `json:"lng" binding:"omitempty,min=-180,max=180"`
}

type CancelRequestRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type UpdateRequestStatusRequest struct {
	Status RequestStatus `json:"status" binding:"required,oneof=REQUESTED MATCHING FULFILLED CANCELLED"`
	Reason string        `json:"reason"`
}

type RequestFilters struct {
	RequesterID *uuid.UUID
	Status      RequestStatus
	Urgency     RequestUrgency
}

// Request lifecycle event types.
const (
	EventRequestCreated   = "REQUEST_CREATED"
	EventRequestMatching  = "REQUEST_MATCHING"
	EventRequestFulfilled = "REQUEST_FULFILLED"
	EventRequestCancelled = "REQUEST_CANCELLED"
)

// RequestEvent is the wire payload for request lifecycle events.
type RequestEvent struct {
	RequestID uuid.UUID `json:"requestId"`
	Event     string    `json:"event"`
}
