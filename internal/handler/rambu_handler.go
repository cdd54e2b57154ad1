package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sigapbencana/rambu_api/internal/models"
	"github.com/sigapbencana/rambu_api/internal/service"
	"github.com/sigapbencana/rambu_api/internal/utils"
)

// RambuHandler serves the rambu collection: map listing, paged table,
// create/update/status/trash and the simulation flow.
type RambuHandler struct {
	rambu *service.RambuService
}

// NewRambuHandler creates a new RambuHandler.
func NewRambuHandler(rambu *service.RambuService) *RambuHandler {
	return &RambuHandler{rambu: rambu}
}

// List returns all non-trashed rambu matching the query filters. This is the
// unpaged feed the map layers are built from.
// GET /v1/rambu
func (h *RambuHandler) List(c *gin.Context) {
	filter := filterFromQuery(c)

	result, err := h.rambu.List(c.Request.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list rambu")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list rambu")
		return
	}
	utils.Success(c, http.StatusOK, "Successfully retrieved rambu", result)
}

// ListPaged returns one page of rambu plus the total matching count.
// GET /v1/rambu-crud
func (h *RambuHandler) ListPaged(c *gin.Context) {
	filter := filterFromQuery(c)
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "pageSize", 10)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	result, total, err := h.rambu.ListPage(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list rambu page")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list rambu")
		return
	}
	utils.SuccessWithTotal(c, http.StatusOK, "Successfully retrieved rambu", result, page, pageSize, total)
}

// GetDetail returns one rambu with its photos.
// GET /v1/rambu-detail/:id
func (h *RambuHandler) GetDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Rambu id must be numeric")
		return
	}

	rambu, err := h.rambu.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, utils.ErrRambuNotFound) {
			utils.Error(c, http.StatusNotFound, "NOT_FOUND", "Rambu not found")
			return
		}
		log.Error().Err(err).Int("id", id).Msg("Failed to get rambu")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get rambu")
		return
	}
	utils.Success(c, http.StatusOK, "Successfully retrieved rambu", rambu)
}

// Create stores a new rambu from a multipart form. The form carries the
// GPS-tagged photo as photo_gps and up to three photo_additional_N files.
// POST /v1/rambu
func (h *RambuHandler) Create(c *gin.Context) {
	rambu, photos, files, err := h.parseForm(c)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	defer closeAll(files)

	if err := h.rambu.Create(c.Request.Context(), rambu, photos); err != nil {
		h.writeMutationError(c, err, "Failed to create rambu")
		return
	}
	utils.Success(c, http.StatusCreated, "Rambu created", rambu)
}

// CreateSimulation stores a simulation point. Simulation points are excluded
// from reports and can be created without photos.
// POST /v1/rambu-simulasi
func (h *RambuHandler) CreateSimulation(c *gin.Context) {
	rambu, photos, files, err := h.parseForm(c)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	defer closeAll(files)
	rambu.IsSimulation = true

	if err := h.rambu.Create(c.Request.Context(), rambu, photos); err != nil {
		h.writeMutationError(c, err, "Failed to create simulation point")
		return
	}
	utils.Success(c, http.StatusCreated, "Simulation point created", rambu)
}

// Update overwrites the mutable fields of a rambu.
// PATCH /v1/rambu/:id
func (h *RambuHandler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Rambu id must be numeric")
		return
	}

	var rambu models.Rambu
	if err := c.ShouldBindJSON(&rambu); err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	rambu.ID = id

	if err := h.rambu.Update(c.Request.Context(), &rambu); err != nil {
		h.writeMutationError(c, err, "Failed to update rambu")
		return
	}
	utils.Success(c, http.StatusOK, "Rambu updated", rambu)
}

// UpdateStatus transitions a rambu to a new status.
// PUT /v1/rambu-status/:id
func (h *RambuHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Rambu id must be numeric")
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "status is required")
		return
	}

	if err := h.rambu.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		h.writeMutationError(c, err, "Failed to update rambu status")
		return
	}
	utils.Success(c, http.StatusOK, "Rambu status updated", gin.H{"id": id, "status": req.Status})
}

// Trash soft-deletes a rambu.
// PUT /v1/rambu-trash/:id
func (h *RambuHandler) Trash(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Rambu id must be numeric")
		return
	}

	if err := h.rambu.Trash(c.Request.Context(), id); err != nil {
		h.writeMutationError(c, err, "Failed to trash rambu")
		return
	}
	utils.Success(c, http.StatusOK, "Rambu moved to trash", gin.H{"id": id})
}

// Delete permanently removes a rambu and its stored photos.
// DELETE /v1/rambu/:id
func (h *RambuHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Rambu id must be numeric")
		return
	}

	if err := h.rambu.Delete(c.Request.Context(), id); err != nil {
		h.writeMutationError(c, err, "Failed to delete rambu")
		return
	}
	utils.Success(c, http.StatusOK, "Rambu deleted", gin.H{"id": id})
}

func (h *RambuHandler) writeMutationError(c *gin.Context, err error, internalMsg string) {
	switch {
	case errors.Is(err, utils.ErrRambuNotFound):
		utils.Error(c, http.StatusNotFound, "NOT_FOUND", "Rambu not found")
	case errors.Is(err, utils.ErrInvalidCoordinate):
		utils.Error(c, http.StatusBadRequest, "INVALID_COORDINATE", "Coordinate is out of range")
	case errors.Is(err, utils.ErrInvalidStatus):
		utils.Error(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown status value")
	case errors.Is(err, utils.ErrPhotoRequired):
		utils.Error(c, http.StatusBadRequest, "PHOTO_REQUIRED", "A GPS-tagged photo is required")
	case errors.Is(err, utils.ErrTooManyPhotos):
		utils.Error(c, http.StatusBadRequest, "TOO_MANY_PHOTOS", "Too many photo attachments")
	default:
		log.Error().Err(err).Msg(internalMsg)
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", internalMsg)
	}
}

// parseForm builds a rambu and its photo uploads from a multipart form.
// The returned files must be closed by the caller.
func (h *RambuHandler) parseForm(c *gin.Context) (*models.Rambu, []service.PhotoUpload, []multipart.File, error) {
	lat, err := strconv.ParseFloat(c.PostForm("lat"), 64)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("lat must be numeric")
	}
	lon, err := strconv.ParseFloat(c.PostForm("lon"), 64)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("lon must be numeric")
	}

	rambu := &models.Rambu{
		Name:           c.PostForm("name"),
		Description:    c.PostForm("description"),
		Lat:            lat,
		Lon:            lon,
		Status:         c.PostForm("status"),
		CategoryID:     formIntPtr(c, "categoryId"),
		ModelID:        formIntPtr(c, "modelId"),
		CostSourceID:   formIntPtr(c, "costsourceId"),
		DisasterTypeID: formIntPtr(c, "disasterTypeId"),
		SatkerID:       formIntPtr(c, "satkerId"),
		ProvID:         formIntPtr(c, "provId"),
		CityID:         formIntPtr(c, "cityId"),
		DistrictID:     formIntPtr(c, "districtId"),
		SubdistrictID:  formIntPtr(c, "subdistrictId"),
		Year:           formIntPtr(c, "year"),
	}

	var photos []service.PhotoUpload
	var files []multipart.File

	names := []string{"photo_gps", "photo_additional_1", "photo_additional_2", "photo_additional_3"}
	for _, field := range names {
		header, err := c.FormFile(field)
		if err != nil {
			continue
		}
		f, err := header.Open()
		if err != nil {
			closeAll(files)
			return nil, nil, nil, fmt.Errorf("cannot read upload %s", field)
		}
		files = append(files, f)
		photos = append(photos, service.PhotoUpload{Filename: header.Filename, Reader: f})
	}

	return rambu, photos, files, nil
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		f.Close()
	}
}

func formIntPtr(c *gin.Context, field string) *int {
	v := c.PostForm(field)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func queryInt(c *gin.Context, name string, def int) int {
	v := c.Query(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func queryIntPtr(c *gin.Context, name string) *int {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}

func filterFromQuery(c *gin.Context) *models.RambuFilter {
	f := &models.RambuFilter{
		ProvID:         queryIntPtr(c, "provId"),
		CityID:         queryIntPtr(c, "cityId"),
		DistrictID:     queryIntPtr(c, "districtId"),
		SubdistrictID:  queryIntPtr(c, "subdistrictId"),
		CategoryID:     queryIntPtr(c, "categoryId"),
		ModelID:        queryIntPtr(c, "modelId"),
		CostSourceID:   queryIntPtr(c, "costsourceId"),
		DisasterTypeID: queryIntPtr(c, "disasterTypeId"),
		SatkerID:       queryIntPtr(c, "satkerId"),
	}
	if s := c.Query("status"); s != "" {
		f.Status = &s
	}
	return f
}
