package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sigapbencana/rambu_api/internal/models"
	"github.com/sigapbencana/rambu_api/internal/repository"
	"github.com/sigapbencana/rambu_api/internal/utils"
)

// RefHandler serves the flat reference lists used by the console forms.
type RefHandler struct {
	repo *repository.RefRepository
}

// NewRefHandler creates a new RefHandler.
func NewRefHandler(repo *repository.RefRepository) *RefHandler {
	return &RefHandler{repo: repo}
}

// GetCategories returns all sign categories.
// GET /v1/ref/categories
func (h *RefHandler) GetCategories(c *gin.Context) {
	h.list(c, models.RefCategories, "categories")
}

// GetModels returns all sign models.
// GET /v1/ref/model
func (h *RefHandler) GetModels(c *gin.Context) {
	h.list(c, models.RefModels, "models")
}

// GetCostSources returns all funding sources.
// GET /v1/ref/costsource
func (h *RefHandler) GetCostSources(c *gin.Context) {
	h.list(c, models.RefCostSources, "cost sources")
}

// GetDisasterTypes returns all disaster types.
// GET /v1/ref/disaster-types
func (h *RefHandler) GetDisasterTypes(c *gin.Context) {
	h.list(c, models.RefDisasterTypes, "disaster types")
}

// GetSatuanKerja returns all work units.
// GET /v1/users/satuan-kerja
func (h *RefHandler) GetSatuanKerja(c *gin.Context) {
	h.list(c, models.RefSatuanKerja, "work units")
}

func (h *RefHandler) list(c *gin.Context, kind, label string) {
	items, err := h.repo.List(c.Request.Context(), kind)
	if err != nil {
		log.Error().Err(err).Str("kind", kind).Msg("Failed to retrieve reference list")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to retrieve "+label)
		return
	}
	utils.Success(c, http.StatusOK, "Successfully retrieved "+label, items)
}
