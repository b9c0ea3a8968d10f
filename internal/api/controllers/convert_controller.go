package controllers

import (
	"net/http"

	"compass/internal/models/request_models"
	"compass/internal/services"
	"compass/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ConvertController struct {
	conversionService services.ConversionServiceInterface
}

func NewConvertController(conversionService services.ConversionServiceInterface) *ConvertController {
	return &ConvertController{
		conversionService: conversionService,
	}
}

// Convert godoc
// @Summary Convert a trip narrative into a structured itinerary
// @Description Long narratives are converted week by week; the merged result covers the full trip or the call fails, never a silent partial.
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param request body request_models.ConvertRequest true "Conversion payload"
// @Success 200 {object} utils.APIResponse
// @Failure 422 {object} utils.APIResponse
// @Failure 503 {object} utils.APIResponse
// @Security BearerAuth
// @Router /itineraries/convert [post]
func (cc *ConvertController) Convert(c *gin.Context) {
	var req request_models.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	doc, err := cc.conversionService.ConvertItinerary(c.Request.Context(), req.ItineraryText)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, doc, "Itinerary converted successfully")
}
