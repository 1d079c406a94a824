package blood

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/handler"
	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/service/blood"
)

type Handler struct {
	service *blood.Service
}

func NewHandler(service *blood.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListBloodTypes(c *gin.Context) {
	types, err := h.service.ListBloodTypes(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": types})
}

func (h *Handler) GetBloodType(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid blood type ID"})
		return
	}

	bt, err := h.service.GetBloodType(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": bt})
}

func (h *Handler) ListComponents(c *gin.Context) {
	components, err := h.service.ListComponents(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": components})
}

// ListCompatibility answers which donor types can supply a recipient.
// Both query parameters are required.
func (h *Handler) ListCompatibility(c *gin.Context) {
	recipientID, err := strconv.Atoi(c.Query("recipient_blood_type_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid recipient_blood_type_id"})
		return
	}
	componentID, err := strconv.Atoi(c.Query("component_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid component_id"})
		return
	}

	rules, err := h.service.ListCompatibilityRules(c.Request.Context(), recipientID, componentID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": rules})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	blood := r.Group("/blood")
	{
		blood.GET("/types", h.ListBloodTypes)
		blood.GET("/types/:id", h.GetBloodType)
		blood.GET("/components", h.ListComponents)
		blood.GET("/compatibility", h.ListCompatibility)
	}
}
