package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sigapbencana/rambu_api/internal/service"
	"github.com/sigapbencana/rambu_api/internal/utils"
)

// ReportHandler serves the aggregate counts behind the dashboard widgets.
type ReportHandler struct {
	rambu *service.RambuService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rambu *service.RambuService) *ReportHandler {
	return &ReportHandler{rambu: rambu}
}

// GetSummary returns rambu totals grouped by status, category and province.
// GET /v1/report/summary
func (h *ReportHandler) GetSummary(c *gin.Context) {
	ctx := c.Request.Context()

	byStatus, err := h.rambu.StatusCounts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count by status")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build report")
		return
	}
	byCategory, err := h.rambu.CategoryCounts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count by category")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build report")
		return
	}
	byProvince, err := h.rambu.ProvinceCounts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to count by province")
		utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to build report")
		return
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}

	utils.Success(c, http.StatusOK, "Successfully built report", gin.H{
		"total":      total,
		"byStatus":   byStatus,
		"byCategory": byCategory,
		"byProvince": byProvince,
	})
}
