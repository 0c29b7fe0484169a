package api

import (
	"errors"
	"net/http"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/engine"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/middlewares"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/utils"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Handler owns the REST surface. All business behavior lives in workflow; the
// handlers parse, validate, dispatch and translate errors to status codes.
type Handler struct {
	Workflow *workflow.Workflow
	validate *validator.Validate
}

func NewHandler(w *workflow.Workflow) *Handler {
	return &Handler{Workflow: w, validate: validator.New()}
}

// RegisterRoutes mounts the API under /api/v1.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	v1.POST("/auth/login", h.Login)

	authed := v1.Group("")
	authed.Use(middlewares.RequireAuth())
	{
		authed.GET("/dashboard/company", h.GetCompanyDashboard)

		authed.GET("/finance/overview", h.GetFinancialOverview)
		authed.POST("/finance/monthly", h.UpsertFinancialData)
		authed.POST("/finance/monthly/cost-detail", h.UpsertFinancialCostDetail)
		authed.POST("/finance/monthly/sga-detail", h.UpsertFinancialSgaDetail)
		authed.DELETE("/finance/monthly", h.DeleteFinancialData)

		authed.GET("/manufacturing/monthly", h.GetManufacturingMonthly)
		authed.POST("/manufacturing/daily", h.UpsertManufacturingDaily)
		authed.DELETE("/manufacturing/daily", h.DeleteManufacturingDaily)

		authed.GET("/ecommerce/channels", h.GetEcommerceChannelSummary)
		authed.GET("/ecommerce/products", h.GetEcommerceProductMatrix)
		authed.GET("/ecommerce/customers", h.GetEcommerceCustomerStats)
		authed.GET("/ecommerce/website", h.GetEcommerceWebsiteStats)
		authed.POST("/ecommerce/channels", h.UpsertChannelSales)
		authed.POST("/ecommerce/products", h.UpsertProductSales)
		authed.POST("/ecommerce/customers", h.UpsertCustomerStats)
		authed.POST("/ecommerce/website", h.UpsertWebsiteStats)

		authed.GET("/kpi/definitions", h.ListKpiDefinitions)
		authed.GET("/kpi/summary", h.GetKpiSummary)
		authed.GET("/kpi/ranking", h.GetKpiRanking)
		authed.POST("/kpi/values", h.UpsertKpiValue)

		authed.GET("/stores/pl", h.GetStorePLOverview)
		authed.POST("/stores/pl", h.UpsertStorePL)
		authed.DELETE("/stores/pl", h.DeleteStorePL)
		authed.GET("/regions/summary", h.GetRegionalSummary)

		targets := authed.Group("/targets")
		targets.Use(middlewares.RequireAdmin())
		{
			targets.POST("/store-pl", h.BulkUpsertStorePLTargets)
			targets.POST("/kpi", h.BulkUpsertKpiTargets)
			targets.POST("/finance", h.UpsertFinancialTarget)
		}

		authed.GET("/complaints", h.ListComplaints)
		authed.GET("/complaints/monthly-counts", h.GetComplaintMonthlyCounts)
		authed.GET("/complaints/:id", h.GetComplaint)
		authed.POST("/complaints", h.CreateComplaint)
		authed.PUT("/complaints/:id", h.UpdateComplaint)
		authed.DELETE("/complaints/:id", h.DeleteComplaint)

		authed.POST("/imports/financial", h.ImportFinancialWorkbook)
		authed.POST("/imports/manufacturing", h.ImportManufacturingWorkbook)
		authed.POST("/imports/store-pl", h.ImportStorePLWorkbook)
	}
}

// respondError maps the error taxonomy to HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, engine.ErrConstraintViolation), errors.Is(err, engine.ErrInvalidPeriod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) bindAndValidate(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if err := h.validate.Struct(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return false
	}
	return true
}
