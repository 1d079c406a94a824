package match

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/handler"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/matching"
)

type Handler struct {
	service *matching.Service
}

func NewHandler(service *matching.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateMatch(c *gin.Context) {
	var req model.CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	created, err := h.service.CreateMatch(c.Request.Context(), req.RequestID, req.DonorID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": created})
}

func (h *Handler) GetMatch(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid match ID"})
		return
	}

	m, err := h.service.GetMatch(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": m})
}

func (h *Handler) ContactMatch(c *gin.Context) {
	h.transition(c, h.service.ContactMatch)
}

func (h *Handler) AcceptMatch(c *gin.Context) {
	h.transition(c, h.service.AcceptMatch)
}

func (h *Handler) DeclineMatch(c *gin.Context) {
	h.transition(c, h.service.DeclineMatch)
}

func (h *Handler) MarkNoAnswer(c *gin.Context) {
	h.transition(c, h.service.MarkNoAnswer)
}

func (h *Handler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*model.Match, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid match ID"})
		return
	}

	m, err := fn(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": m})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	matches := r.Group("/matches")
	{
		matches.POST("", h.CreateMatch)
		matches.GET("/:id", h.GetMatch)
		matches.POST("/:id/contact", h.ContactMatch)
		matches.POST("/:id/accept", h.AcceptMatch)
		matches.POST("/:id/decline", h.DeclineMatch)
		matches.POST("/:id/no-answer", h.MarkNoAnswer)
	}
}
