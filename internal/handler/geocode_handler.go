package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sigapbencana/rambu_api/internal/service"
	"github.com/sigapbencana/rambu_api/internal/utils"
)

// GeocodeHandler serves reverse geocoding of clicked coordinates.
type GeocodeHandler struct {
	geocode *service.GeocodeService
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(geocode *service.GeocodeService) *GeocodeHandler {
	return &GeocodeHandler{geocode: geocode}
}

type geocodeRequest struct {
	Lat  float64 `json:"lat" binding:"required"`
	Long float64 `json:"long" binding:"required"`
}

// Resolve maps a coordinate to province, city, district and village names.
// POST /v1/ref/geografis
func (h *GeocodeHandler) Resolve(c *gin.Context) {
	var req geocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "lat and long are required")
		return
	}

	result, err := h.geocode.Resolve(c.Request.Context(), req.Lat, req.Long)
	if err != nil {
		switch {
		case errors.Is(err, utils.ErrInvalidCoordinate):
			utils.Error(c, http.StatusBadRequest, "INVALID_COORDINATE", "Coordinate is out of range")
		case errors.Is(err, utils.ErrRegionNotFound):
			utils.Error(c, http.StatusNotFound, "REGION_NOT_FOUND", "No province contains this coordinate")
		default:
			log.Error().Err(err).Float64("lat", req.Lat).Float64("long", req.Long).Msg("Reverse geocoding failed")
			utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Reverse geocoding failed")
		}
		return
	}

	utils.Success(c, http.StatusOK, "Successfully resolved coordinate", result)
}
