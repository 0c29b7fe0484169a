package api

import (
	"net/http"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) GetStorePLOverview(c *gin.Context) {
	fy, err := fiscalYearParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	segments := c.QueryArray("segment_id")
	overview, err := h.Workflow.GetStorePLOverview(c.Request.Context(), fy, segments)
	if err != nil {
		respondError(c, err)
		return
	}
	ids := make([]string, 0, len(overview.Rows))
	for i := range overview.Rows {
		ids = append(ids, overview.Rows[i].SegmentId)
	}
	names := segmentNames(c.Request.Context(), ids)
	for i := range overview.Rows {
		overview.Rows[i].SegmentName = names[overview.Rows[i].SegmentId]
	}
	c.JSON(http.StatusOK, overview)
}

func (h *Handler) GetRegionalSummary(c *gin.Context) {
	fy, err := fiscalYearParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summary, err := h.Workflow.GetRegionalSummary(c.Request.Context(), fy)
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range summary.Regions {
		summary.Regions[i].RegionName = regionName(c.Request.Context(), summary.Regions[i].RegionId)
	}
	c.JSON(http.StatusOK, summary)
}

type storeSgaDetailRequest struct {
	PersonnelCost *decimal.Decimal `json:"personnel_cost"`
	LandRent      *decimal.Decimal `json:"land_rent"`
	LeaseCost     *decimal.Decimal `json:"lease_cost"`
	Utilities     *decimal.Decimal `json:"utilities"`
}

type storePLUpsertRequest struct {
	SegmentId string    `json:"segment_id" validate:"required"`
	Month     time.Time `json:"month" validate:"required"`
	IsTarget  bool      `json:"is_target"`

	Sales           *decimal.Decimal `json:"sales"`
	CostOfSales     *decimal.Decimal `json:"cost_of_sales"`
	GrossProfit     *decimal.Decimal `json:"gross_profit"`
	SgaTotal        *decimal.Decimal `json:"sga_total"`
	OperatingProfit *decimal.Decimal `json:"operating_profit"`

	SgaDetail *storeSgaDetailRequest `json:"sga_detail"`
	Strict    bool                   `json:"strict"`
}

func (h *Handler) UpsertStorePL(c *gin.Context) {
	var req storePLUpsertRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	in := workflow.StorePLUpsertInput{
		Data: models.StorePL{
			SegmentId:       req.SegmentId,
			Month:           req.Month,
			IsTarget:        req.IsTarget,
			Sales:           req.Sales,
			CostOfSales:     req.CostOfSales,
			GrossProfit:     req.GrossProfit,
			SgaTotal:        req.SgaTotal,
			OperatingProfit: req.OperatingProfit,
		},
		Strict: req.Strict,
	}
	if req.SgaDetail != nil {
		in.SgaDetail = &models.StorePLSgaDetail{
			PersonnelCost: req.SgaDetail.PersonnelCost,
			LandRent:      req.SgaDetail.LandRent,
			LeaseCost:     req.SgaDetail.LeaseCost,
			Utilities:     req.SgaDetail.Utilities,
		}
	}
	row, err := h.Workflow.UpsertStorePL(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Handler) DeleteStorePL(c *gin.Context) {
	segmentId := c.Query("segment_id")
	if segmentId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "segment_id is required"})
		return
	}
	month, err := monthParam(c, "month")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Workflow.DeleteStorePL(c.Request.Context(), segmentId, month, boolQuery(c, "is_target")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
