package donor

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/handler"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/model"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/donor"
)

type Handler struct {
	service *donor.Service
}

func NewHandler(service *donor.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateDonor(c *gin.Context) {
	var req model.CreateDonorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	d, err := h.service.CreateDonor(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": d})
}

func (h *Handler) GetDonor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid donor ID"})
		return
	}

	d, err := h.service.GetDonor(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": d})
}

func (h *Handler) ListDonors(c *gin.Context) {
	filters := &model.DonorFilters{}

	if ready := c.Query("is_ready"); ready != "" {
		isReady := ready == "true"
		filters.IsReady = &isReady
	}

	donors, err := h.service.ListDonors(c.Request.Context(), filters)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": donors})
}

func (h *Handler) UpdateDonor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid donor ID"})
		return
	}

	var req model.UpdateDonorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	d, err := h.service.UpdateDonor(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": d})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	donors := r.Group("/donors")
	{
		donors.POST("", h.CreateDonor)
		donors.GET("", h.ListDonors)
		donors.GET("/:id", h.GetDonor)
		donors.PUT("/:id", h.UpdateDonor)
	}
}
