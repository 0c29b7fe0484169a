package api

import (
	"net/http"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/workflow"
	"github.com/gin-gonic/gin"
)

type storePLTargetBatch struct {
	Items []workflow.TargetBulkItem `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) BulkUpsertStorePLTargets(c *gin.Context) {
	var req storePLTargetBatch
	if !h.bindAndValidate(c, &req) {
		return
	}
	result, err := h.Workflow.BulkUpsertStorePLTargets(c.Request.Context(), req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type kpiTargetBatch struct {
	Items []workflow.KpiTargetItem `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) BulkUpsertKpiTargets(c *gin.Context) {
	var req kpiTargetBatch
	if !h.bindAndValidate(c, &req) {
		return
	}
	result, err := h.Workflow.BulkUpsertKpiTargets(c.Request.Context(), req.Items)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
