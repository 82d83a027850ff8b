package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Pet-Delivery/service-adoption/internal/application"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/auth"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-adoption/internal/platform/response"
)

// PetHandler handles HTTP requests for the pet catalog.
type PetHandler struct {
	service *application.PetService
}

// NewPetHandler creates a new PetHandler.
func NewPetHandler(service *application.PetService) *PetHandler {
	return &PetHandler{service: service}
}

// RegisterRoutes registers the public catalog routes and the admin catalog routes.
func (h *PetHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	pets := r.Group("/api/v1/pets")
	{
		pets.GET("", h.ListAvailable)
		pets.GET("/:id", h.GetPet)
	}

	admin := r.Group("/api/v1/admin/pets")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("", h.ListPets)
		admin.POST("", h.AddPet)
		admin.POST("/sort", h.SortCatalog)
		admin.PUT("/:id", h.UpdatePet)
		admin.DELETE("/:id", h.RemovePet)
	}
}

// ListAvailable handles GET /api/v1/pets.
func (h *PetHandler) ListAvailable(c *gin.Context) {
	result, err := h.service.ListAvailablePets(c.Request.Context(), application.ListPetsQuery{
		Breed:  c.Query("breed"),
		Gender: c.Query("gender"),
		Sort:   c.Query("sort"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetPet handles GET /api/v1/pets/:id.
func (h *PetHandler) GetPet(c *gin.Context) {
	result, err := h.service.GetPet(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListPets handles GET /api/v1/admin/pets.
func (h *PetHandler) ListPets(c *gin.Context) {
	q := application.ListPetsQuery{
		Breed:  c.Query("breed"),
		Gender: c.Query("gender"),
		Sort:   c.Query("sort"),
	}
	if raw, ok := c.GetQuery("adopted"); ok {
		adopted, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "adopted must be true or false")
			return
		}
		q.Adopted = &adopted
	}

	result, err := h.service.ListPets(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AddPet handles POST /api/v1/admin/pets.
func (h *PetHandler) AddPet(c *gin.Context) {
	var req application.CreatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AddPet(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdatePet handles PUT /api/v1/admin/pets/:id.
func (h *PetHandler) UpdatePet(c *gin.Context) {
	var req application.UpdatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdatePet(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RemovePet handles DELETE /api/v1/admin/pets/:id.
func (h *PetHandler) RemovePet(c *gin.Context) {
	if err := h.service.RemovePet(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"message": "pet removed"})
}

// SortCatalog handles POST /api/v1/admin/pets/sort?by=age|id.
func (h *PetHandler) SortCatalog(c *gin.Context) {
	by := c.Query("by")
	if by == "" {
		response.BadRequest(c, "query parameter 'by' is required")
		return
	}

	result, err := h.service.SortCatalog(c.Request.Context(), by)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
