package api

import (
	"net/http"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) ListKpiDefinitions(c *gin.Context) {
	defs, err := h.Workflow.ListKpiDefinitions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, defs)
}

func (h *Handler) GetKpiSummary(c *gin.Context) {
	fy, err := fiscalYearParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	asOf := time.Now().UTC()
	if c.Query("as_of") != "" {
		if asOf, err = dateParam(c, "as_of"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	segments := c.QueryArray("segment_id")
	summary, err := h.Workflow.GetKpiSummary(c.Request.Context(), fy, asOf, segments)
	if err != nil {
		respondError(c, err)
		return
	}
	ids := make([]string, 0, len(summary.Rows))
	for i := range summary.Rows {
		ids = append(ids, summary.Rows[i].SegmentId)
	}
	names := segmentNames(c.Request.Context(), ids)
	for i := range summary.Rows {
		summary.Rows[i].SegmentName = names[summary.Rows[i].SegmentId]
		summary.Rows[i].KpiName = kpiName(c.Request.Context(), summary.Rows[i].KpiId)
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetKpiRanking(c *gin.Context) {
	fy, err := fiscalYearParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	kpiId := c.Query("kpi_id")
	if kpiId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kpi_id is required"})
		return
	}
	asOf := time.Now().UTC()
	if c.Query("as_of") != "" {
		if asOf, err = dateParam(c, "as_of"); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	ranking, err := h.Workflow.GetKpiRanking(c.Request.Context(), fy, kpiId, asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	ids := make([]string, 0, len(ranking))
	for i := range ranking {
		ids = append(ids, ranking[i].SegmentId)
	}
	names := segmentNames(c.Request.Context(), ids)
	for i := range ranking {
		ranking[i].SegmentName = names[ranking[i].SegmentId]
	}
	c.JSON(http.StatusOK, ranking)
}

type kpiValueRequest struct {
	SegmentId string           `json:"segment_id" validate:"required"`
	KpiId     string           `json:"kpi_id" validate:"required"`
	Date      time.Time        `json:"date" validate:"required"`
	IsTarget  bool             `json:"is_target"`
	Value     *decimal.Decimal `json:"value"`
}

func (h *Handler) UpsertKpiValue(c *gin.Context) {
	var req kpiValueRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	row, err := h.Workflow.UpsertKpiValue(c.Request.Context(), models.KpiValue{
		SegmentId: req.SegmentId,
		KpiId:     req.KpiId,
		Date:      req.Date,
		IsTarget:  req.IsTarget,
		Value:     req.Value,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
