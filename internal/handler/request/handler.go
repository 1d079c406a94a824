package request

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/handler"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/middleware"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/matching"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/request"
)

type Handler struct {
	service  *request.Service
	matching *matching.Service
}

func NewHandler(service *request.Service, matchingSvc *matching.Service) *Handler {
	return &Handler{service: service, matching: matchingSvc}
}

func (h *Handler) CreateRequest(c *gin.Context) {
	var req model.CreateBloodRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	requesterID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "missing identity"})
		return
	}

	created, err := h.service.CreateRequest(c.Request.Context(), requesterID, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": created})
}

func (h *Handler) GetRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request ID"})
		return
	}

	req, err := h.service.GetRequest(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": req})
}

func (h *Handler) ListRequests(c *gin.Context) {
	filters := &model.RequestFilters{}

	if status := c.Query("status"); status != "" {
		filters.Status = model.RequestStatus(status)
	}
	if urgency := c.Query("urgency"); urgency != "" {
		filters.Urgency = model.RequestUrgency(urgency)
	}

	requests, err := h.service.ListRequests(c.Request.Context(), filters)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": requests})
}

func (h *Handler) StartMatching(c *gin.Context) {
	h.transition(c, func(id uuid.UUID) (*model.BloodRequest, error) {
		return h.service.StartMatching(c.Request.Context(), id)
	})
}

func (h *Handler) Fulfill(c *gin.Context) {
	h.transition(c, func(id uuid.UUID) (*model.BloodRequest, error) {
		return h.service.Fulfill(c.Request.Context(), id)
	})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request ID"})
		return
	}

	var req model.CancelRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	updated, err := h.service.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": updated})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request ID"})
		return
	}

	var req model.UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": updated})
}

// GetCandidates returns the ranked compatible donor list for a request.
func (h *Handler) GetCandidates(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request ID"})
		return
	}

	ranked, err := h.matching.GetCompatibleDonors(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": ranked})
}

// ListMatches returns the match history of a request.
func (h *Handler) ListMatches(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request ID"})
		return
	}

	matches, err := h.matching.ListMatches(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": matches})
}

func (h *Handler) transition(c *gin.Context, fn func(uuid.UUID) (*model.BloodRequest, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request ID"})
		return
	}

	updated, err := fn(id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": updated})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	requests := r.Group("/requests")
	{
		requests.POST("", h.CreateRequest)
		requests.GET("", h.ListRequests)
		requests.GET("/:id", h.GetRequest)
		requests.POST("/:id/start-matching", h.StartMatching)
		requests.POST("/:id/fulfill", h.Fulfill)
		requests.POST("/:id/cancel", h.Cancel)
		requests.PATCH("/:id/status", h.UpdateStatus)
		requests.GET("/:id/candidates", h.GetCandidates)
		requests.GET("/:id/matches", h.ListMatches)
	}
}
