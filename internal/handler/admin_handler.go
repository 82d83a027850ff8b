package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/application"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/response"
)

// AdminAdoptionHandler handles admin HTTP requests for reviewing adoptions.
type AdminAdoptionHandler struct {
	service *application.AdoptionService
}

// NewAdminAdoptionHandler creates a new AdminAdoptionHandler.
func NewAdminAdoptionHandler(service *application.AdoptionService) *AdminAdoptionHandler {
	return &AdminAdoptionHandler{service: service}
}

// RegisterRoutes registers admin adoption routes.
func (h *AdminAdoptionHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/adoptions", h.ListRequests)
		admin.GET("/adoptions/details", h.GetDetails)
		admin.POST("/adoptions/approve", h.Approve)
		admin.POST("/adoptions/deny", h.Deny)
		admin.DELETE("/adoptions", h.RemoveRecord)
		admin.GET("/stats/adoptions", h.AdoptionStats)
	}
}

// ListRequests handles GET /api/v1/admin/adoptions?status=.
func (h *AdminAdoptionHandler) ListRequests(c *gin.Context) {
	result, err := h.service.ListRequests(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetDetails handles GET /api/v1/admin/adoptions/details?customer_id=&pet_id=.
func (h *AdminAdoptionHandler) GetDetails(c *gin.Context) {
	customerID, petID := c.Query("customer_id"), c.Query("pet_id")
	if customerID == "" || petID == "" {
		response.BadRequest(c, "customer_id and pet_id are required")
		return
	}

	result, err := h.service.GetRequestDetails(c.Request.Context(), customerID, petID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Approve handles POST /api/v1/admin/adoptions/approve.
func (h *AdminAdoptionHandler) Approve(c *gin.Context) {
	var req application.AdoptionDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ApproveAdoption(c.Request.Context(), req.CustomerID, req.PetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Deny handles POST /api/v1/admin/adoptions/deny.
func (h *AdminAdoptionHandler) Deny(c *gin.Context) {
	var req application.AdoptionDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.DenyAdoption(c.Request.Context(), req.CustomerID, req.PetID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RemoveRecord handles DELETE /api/v1/admin/adoptions.
func (h *AdminAdoptionHandler) RemoveRecord(c *gin.Context) {
	var req application.AdoptionDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.RemoveRequestRecord(c.Request.Context(), req.CustomerID, req.PetID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "adoption request removed"})
}

// AdoptionStats handles GET /api/v1/admin/stats/adoptions.
func (h *AdminAdoptionHandler) AdoptionStats(c *gin.Context) {
	response.Success(c, h.service.Stats(c.Request.Context()))
}
