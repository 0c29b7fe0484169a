package api

import (
	"net/http"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) GetFinancialOverview(c *gin.Context) {
	fy, err := fiscalYearParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	overview, err := h.Workflow.GetFinancialOverview(c.Request.Context(), fy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

type financialUpsertRequest struct {
	Month    time.Time `json:"month" validate:"required"`
	IsTarget bool      `json:"is_target"`

	SalesTotal      *decimal.Decimal `json:"sales_total"`
	SalesStore      *decimal.Decimal `json:"sales_store"`
	SalesOnline     *decimal.Decimal `json:"sales_online"`
	CostOfSales     *decimal.Decimal `json:"cost_of_sales"`
	GrossProfit     *decimal.Decimal `json:"gross_profit"`
	SgAndATotal     *decimal.Decimal `json:"sg_and_a_total"`
	LaborCost       *decimal.Decimal `json:"labor_cost"`
	OtherExpenses   *decimal.Decimal `json:"other_expenses"`
	OperatingProfit *decimal.Decimal `json:"operating_profit"`
	CfOperating     *decimal.Decimal `json:"cf_operating"`
	CfInvesting     *decimal.Decimal `json:"cf_investing"`
	CfFinancing     *decimal.Decimal `json:"cf_financing"`
	CfFree          *decimal.Decimal `json:"cf_free"`

	CostDetail *models.FinancialCostDetail `json:"cost_detail"`
	SgaDetail  *models.FinancialSgaDetail  `json:"sga_detail"`
	Strict     bool                        `json:"strict"`
}

func (r financialUpsertRequest) toModel() models.FinancialData {
	return models.FinancialData{
		Month:           r.Month,
		IsTarget:        r.IsTarget,
		SalesTotal:      r.SalesTotal,
		SalesStore:      r.SalesStore,
		SalesOnline:     r.SalesOnline,
		CostOfSales:     r.CostOfSales,
		GrossProfit:     r.GrossProfit,
		SgAndATotal:     r.SgAndATotal,
		LaborCost:       r.LaborCost,
		OtherExpenses:   r.OtherExpenses,
		OperatingProfit: r.OperatingProfit,
		CfOperating:     r.CfOperating,
		CfInvesting:     r.CfInvesting,
		CfFinancing:     r.CfFinancing,
		CfFree:          r.CfFree,
	}
}

func (h *Handler) UpsertFinancialData(c *gin.Context) {
	var req financialUpsertRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	row, err := h.Workflow.UpsertFinancialData(c.Request.Context(), workflow.FinancialUpsertInput{
		Data:       req.toModel(),
		CostDetail: req.CostDetail,
		SgaDetail:  req.SgaDetail,
		Strict:     req.Strict,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

type costDetailRequest struct {
	Month    time.Time                  `json:"month" validate:"required"`
	IsTarget bool                       `json:"is_target"`
	Detail   models.FinancialCostDetail `json:"detail" validate:"required"`
	Strict   bool                       `json:"strict"`
}

func (h *Handler) UpsertFinancialCostDetail(c *gin.Context) {
	var req costDetailRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	if err := h.Workflow.UpsertFinancialCostDetail(c.Request.Context(), req.Month, req.IsTarget, &req.Detail, req.Strict); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type sgaDetailRequest struct {
	Month    time.Time                 `json:"month" validate:"required"`
	IsTarget bool                      `json:"is_target"`
	Detail   models.FinancialSgaDetail `json:"detail" validate:"required"`
	Strict   bool                      `json:"strict"`
}

func (h *Handler) UpsertFinancialSgaDetail(c *gin.Context) {
	var req sgaDetailRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	if err := h.Workflow.UpsertFinancialSgaDetail(c.Request.Context(), req.Month, req.IsTarget, &req.Detail, req.Strict); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) DeleteFinancialData(c *gin.Context) {
	month, err := monthParam(c, "month")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Workflow.DeleteFinancialData(c.Request.Context(), month, boolQuery(c, "is_target")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) UpsertFinancialTarget(c *gin.Context) {
	var req financialUpsertRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	row, err := h.Workflow.UpsertFinancialTarget(c.Request.Context(), req.toModel())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
