package controllers

import (
	"net/http"
	"strconv"

	"compass/internal/services"
	"compass/pkg/utils"

	"github.com/gin-gonic/gin"
)

type DiscoveryController struct {
	discoveryService services.DiscoveryServiceInterface
}

func NewDiscoveryController(discoveryService services.DiscoveryServiceInterface) *DiscoveryController {
	return &DiscoveryController{
		discoveryService: discoveryService,
	}
}

// ListPublic godoc
// @Summary Browse published community itineraries
// @Tags Community
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.APIResponse
// @Router /community/itineraries [get]
func (d *DiscoveryController) ListPublic(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	itineraries, err := d.discoveryService.ListPublic(c.Request.Context(), page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, itineraries, "Public itineraries fetched successfully")
}

// GetItinerary godoc
// @Summary Fetch one published itinerary in full
// @Tags Community
// @Produce json
// @Param id path string true "Itinerary ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Router /community/itineraries/{id} [get]
func (d *DiscoveryController) GetItinerary(c *gin.Context) {
	detail, err := d.discoveryService.GetPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, detail, "Itinerary fetched successfully")
}

// FindSimilar godoc
// @Summary Find published itineraries similar to a free-text query
// @Tags Community
// @Produce json
// @Param q query string true "Search text"
// @Param limit query int false "Max results"
// @Success 200 {object} utils.APIResponse
// @Router /community/itineraries/similar [get]
func (d *DiscoveryController) FindSimilar(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.RespondError(c, http.StatusBadRequest, "Query parameter q is required")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	itineraries, err := d.discoveryService.FindSimilar(c.Request.Context(), query, limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, itineraries, "Similar itineraries fetched successfully")
}
