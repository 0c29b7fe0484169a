package api

import (
	"net/http"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/engine"
	"github.com/gin-gonic/gin"
)

func (h *Handler) GetCompanyDashboard(c *gin.Context) {
	asOf := engine.MonthStart(time.Now().UTC())
	if c.Query("month") != "" {
		m, err := monthParam(c, "month")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		asOf = m
	}
	dashboard, err := h.Workflow.GetCompanyDashboard(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
