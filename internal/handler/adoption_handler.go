package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/application"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/response"
)

// AdoptionHandler handles a customer's own adoption requests.
type AdoptionHandler struct {
	service *application.AdoptionService
}

// NewAdoptionHandler creates a new AdoptionHandler.
func NewAdoptionHandler(service *application.AdoptionService) *AdoptionHandler {
	return &AdoptionHandler{service: service}
}

// RegisterRoutes registers all customer adoption routes on the given router group.
func (h *AdoptionHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	adoptions := r.Group("/api/v1/adoptions")
	adoptions.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleCustomer))
	{
		adoptions.GET("", h.ListMine)
		adoptions.POST("", h.RequestAdoption)
		adoptions.DELETE("/:petId", h.CancelRequest)
	}
}

// ListMine handles GET /api/v1/adoptions.
func (h *AdoptionHandler) ListMine(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	response.Success(c, h.service.ListMyRequests(c.Request.Context(), customerID))
}

// RequestAdoption handles POST /api/v1/adoptions.
func (h *AdoptionHandler) RequestAdoption(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.CreateAdoptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.RequestAdoption(c.Request.Context(), customerID, req.PetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// CancelRequest handles DELETE /api/v1/adoptions/:petId. Pending and denied
// requests are withdrawn; an approved adoption answers 409 with code
// INVALID_STATE and the message "adoption of pet '<id>' is already approved
// and cannot be cancelled".
func (h *AdoptionHandler) CancelRequest(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.service.CancelAdoptionRequest(c.Request.Context(), customerID, c.Param("petId")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "adoption request cancelled"})
}
