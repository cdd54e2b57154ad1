package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sigapbencana/rambu_api/internal/repository"
	"github.com/sigapbencana/rambu_api/internal/utils"
)

// LocationHandler serves the administrative region hierarchy consumed by the
// cascading select boxes and the province map overlay.
type LocationHandler struct {
	repo *repository.LocationRepository
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(repo *repository.LocationRepository) *LocationHandler {
	return &LocationHandler{repo: repo}
}

// GetProvinces returns all provinces.
// GET /v1/locations/provinces
func (h *LocationHandler) GetProvinces(c *gin.Context) {
	provinces, err := h.repo.GetProvinces(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to retrieve provinces")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve provinces")
		return
	}
	utils.Success(c, http.StatusOK, "Successfully retrieved provinces", provinces)
}

// GetCities returns all cities of one province.
// GET /v1/locations/cities/:prov_id
func (h *LocationHandler) GetCities(c *gin.Context) {
	provID, err := strconv.Atoi(c.Param("prov_id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Province id must be numeric")
		return
	}

	cities, err := h.repo.GetCitiesByProvince(c.Request.Context(), provID)
	if err != nil {
		log.Error().Err(err).Int("prov_id", provID).Msg("Failed to retrieve cities")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve cities")
		return
	}
	utils.Success(c, http.StatusOK, "Successfully retrieved cities", cities)
}

// GetDistricts returns all districts of one city.
// GET /v1/locations/districts/:city_id
func (h *LocationHandler) GetDistricts(c *gin.Context) {
	cityID, err := strconv.Atoi(c.Param("city_id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "City id must be numeric")
		return
	}

	districts, err := h.repo.GetDistrictsByCity(c.Request.Context(), cityID)
	if err != nil {
		log.Error().Err(err).Int("city_id", cityID).Msg("Failed to retrieve districts")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve districts")
		return
	}
	utils.Success(c, http.StatusOK, "Successfully retrieved districts", districts)
}

// GetSubDistricts returns all sub-districts of one district.
// GET /v1/locations/subdistricts/:district_id
func (h *LocationHandler) GetSubDistricts(c *gin.Context) {
	districtID, err := strconv.Atoi(c.Param("district_id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "District id must be numeric")
		return
	}

	subDistricts, err := h.repo.GetSubDistrictsByDistrict(c.Request.Context(), districtID)
	if err != nil {
		log.Error().Err(err).Int("district_id", districtID).Msg("Failed to retrieve sub-districts")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve sub-districts")
		return
	}
	utils.Success(c, http.StatusOK, "Successfully retrieved sub-districts", subDistricts)
}

// GetProvinceBoundary returns the raw GeoJSON boundary of one province.
// GET /v1/locations/province-geojson/:prov_id
func (h *LocationHandler) GetProvinceBoundary(c *gin.Context) {
	provID, err := strconv.Atoi(c.Param("prov_id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Province id must be numeric")
		return
	}

	boundary, err := h.repo.GetProvinceBoundary(c.Request.Context(), provID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.Error(c, http.StatusNotFound, "NOT_FOUND", "Province boundary not available")
			return
		}
		log.Error().Err(err).Int("prov_id", provID).Msg("Failed to retrieve province boundary")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve province boundary")
		return
	}

	c.Data(http.StatusOK, "application/geo+json", []byte(boundary))
}
