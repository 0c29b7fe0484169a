package api

import (
	"net/http"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func (h *Handler) GetEcommerceChannelSummary(c *gin.Context) {
	fy, err := fiscalYearParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	summary, err := h.Workflow.GetEcommerceChannelSummary(c.Request.Context(), fy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetEcommerceProductMatrix(c *gin.Context) {
	fy, err := fiscalYearParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	matrix, err := h.Workflow.GetEcommerceProductMatrix(c.Request.Context(), fy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matrix)
}

func (h *Handler) GetEcommerceCustomerStats(c *gin.Context) {
	fy, err := fiscalYearParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stats, err := h.Workflow.GetEcommerceCustomerStats(c.Request.Context(), fy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetEcommerceWebsiteStats(c *gin.Context) {
	fy, err := fiscalYearParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	stats, err := h.Workflow.GetEcommerceWebsiteStats(c.Request.Context(), fy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type channelSalesRequest struct {
	Month    time.Time        `json:"month" validate:"required"`
	Channel  models.Channel   `json:"channel" validate:"required"`
	IsTarget bool             `json:"is_target"`
	Sales    *decimal.Decimal `json:"sales"`
	Buyers   *int             `json:"buyers" validate:"omitempty,gte=0"`
}

func (h *Handler) UpsertChannelSales(c *gin.Context) {
	var req channelSalesRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	row, err := h.Workflow.UpsertChannelSales(c.Request.Context(), models.EcommerceChannelSales{
		Month:    req.Month,
		Channel:  req.Channel,
		IsTarget: req.IsTarget,
		Sales:    req.Sales,
		Buyers:   req.Buyers,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

type productSalesRequest struct {
	Month           time.Time        `json:"month" validate:"required"`
	ProductName     string           `json:"product_name" validate:"required,max=100"`
	ProductCategory string           `json:"product_category" validate:"max=64"`
	IsTarget        bool             `json:"is_target"`
	Sales           *decimal.Decimal `json:"sales"`
	Quantity        *int             `json:"quantity" validate:"omitempty,gte=0"`
}

func (h *Handler) UpsertProductSales(c *gin.Context) {
	var req productSalesRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	row, err := h.Workflow.UpsertProductSales(c.Request.Context(), models.EcommerceProductSales{
		Month:           req.Month,
		ProductName:     req.ProductName,
		ProductCategory: req.ProductCategory,
		IsTarget:        req.IsTarget,
		Sales:           req.Sales,
		Quantity:        req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

type customerStatsRequest struct {
	Month           time.Time `json:"month" validate:"required"`
	IsTarget        bool      `json:"is_target"`
	NewCustomers    *int      `json:"new_customers" validate:"omitempty,gte=0"`
	RepeatCustomers *int      `json:"repeat_customers" validate:"omitempty,gte=0"`
	TotalCustomers  *int      `json:"total_customers" validate:"omitempty,gte=0"`
}

func (h *Handler) UpsertCustomerStats(c *gin.Context) {
	var req customerStatsRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	row, err := h.Workflow.UpsertCustomerStats(c.Request.Context(), models.EcommerceCustomerStats{
		Month:           req.Month,
		IsTarget:        req.IsTarget,
		NewCustomers:    req.NewCustomers,
		RepeatCustomers: req.RepeatCustomers,
		TotalCustomers:  req.TotalCustomers,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

type websiteStatsRequest struct {
	Month          time.Time `json:"month" validate:"required"`
	IsTarget       bool      `json:"is_target"`
	PageViews      *int      `json:"page_views" validate:"omitempty,gte=0"`
	UniqueVisitors *int      `json:"unique_visitors" validate:"omitempty,gte=0"`
	Sessions       *int      `json:"sessions" validate:"omitempty,gte=0"`
}

func (h *Handler) UpsertWebsiteStats(c *gin.Context) {
	var req websiteStatsRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	row, err := h.Workflow.UpsertWebsiteStats(c.Request.Context(), models.EcommerceWebsiteStats{
		Month:          req.Month,
		IsTarget:       req.IsTarget,
		PageViews:      req.PageViews,
		UniqueVisitors: req.UniqueVisitors,
		Sessions:       req.Sessions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}
