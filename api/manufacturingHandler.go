package api

import (
	"net/http"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) GetManufacturingMonthly(c *gin.Context) {
	fy, err := fiscalYearParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := h.Workflow.GetManufacturingMonthly(c.Request.Context(), fy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type manufacturingDailyRequest struct {
	Date     time.Time `json:"date" validate:"required"`
	IsTarget bool      `json:"is_target"`

	ProductionBatts  *int             `json:"production_batts" validate:"omitempty,gte=0"`
	ProductionPieces *int             `json:"production_pieces" validate:"omitempty,gte=0"`
	WorkersCount     *int             `json:"workers_count" validate:"omitempty,gte=0"`
	PaidLeaveHours   *decimal.Decimal `json:"paid_leave_hours"`
}

func (h *Handler) UpsertManufacturingDaily(c *gin.Context) {
	var req manufacturingDailyRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	row, err := h.Workflow.UpsertManufacturingDaily(c.Request.Context(), models.ManufacturingData{
		Date:             req.Date,
		IsTarget:         req.IsTarget,
		ProductionBatts:  req.ProductionBatts,
		ProductionPieces: req.ProductionPieces,
		WorkersCount:     req.WorkersCount,
		PaidLeaveHours:   req.PaidLeaveHours,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Handler) DeleteManufacturingDaily(c *gin.Context) {
	date, err := dateParam(c, "date")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Workflow.DeleteManufacturingDaily(c.Request.Context(), date, boolQuery(c, "is_target")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
