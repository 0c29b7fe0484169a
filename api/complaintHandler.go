package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/utils"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/workflow"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ListComplaints(c *gin.Context) {
	var filter workflow.ComplaintFilter
	if raw := c.Query("from"); raw != "" {
		t, err := dateParam(c, "from")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := dateParam(c, "to")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.To = &t
	}
	if raw := c.Query("department"); raw != "" {
		d := models.DepartmentType(raw)
		filter.Department = &d
	}
	if raw := c.Query("segment_id"); raw != "" {
		filter.SegmentId = &raw
	}
	if raw := c.Query("complaint_type"); raw != "" {
		t := models.ComplaintType(raw)
		filter.ComplaintType = &t
	}
	if raw := c.Query("status"); raw != "" {
		s := models.ComplaintStatus(raw)
		filter.Status = &s
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.Limit = n
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filter.Offset = n
		}
	}

	rows, total, err := h.Workflow.ListComplaints(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total, "complaints": rows})
}

func (h *Handler) GetComplaint(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	row, err := h.Workflow.GetComplaint(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

type complaintRequest struct {
	IncidentDate time.Time             `json:"incident_date" validate:"required"`
	Department   models.DepartmentType `json:"department_type" validate:"required,oneof=store manufacturing ecommerce head_office"`
	SegmentId    *string               `json:"segment_id"`

	CustomerType models.CustomerType `json:"customer_type" validate:"required,oneof=new repeat wholesale other"`
	CustomerName string              `json:"customer_name"`
	ContactInfo  string              `json:"contact_info"`

	ComplaintType    models.ComplaintType   `json:"complaint_type" validate:"required,oneof=product service delivery other"`
	ComplaintContent string                 `json:"complaint_content" validate:"required"`
	Response         string                 `json:"response"`
	Status           models.ComplaintStatus `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
}

func (r complaintRequest) toModel() models.Complaint {
	return models.Complaint{
		IncidentDate:     r.IncidentDate,
		Department:       r.Department,
		SegmentId:        r.SegmentId,
		CustomerType:     r.CustomerType,
		CustomerName:     r.CustomerName,
		ContactInfo:      r.ContactInfo,
		ComplaintType:    r.ComplaintType,
		ComplaintContent: r.ComplaintContent,
		Response:         r.Response,
		Status:           r.Status,
	}
}

func (h *Handler) CreateComplaint(c *gin.Context) {
	var req complaintRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	row := req.toModel()
	row.CreatedBy = utils.UserId(c.Request.Context())
	created, err := h.Workflow.CreateComplaint(c.Request.Context(), row)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateComplaint(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req complaintRequest
	if !h.bindAndValidate(c, &req) {
		return
	}
	updated, err := h.Workflow.UpdateComplaint(c.Request.Context(), id, req.toModel())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteComplaint(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.Workflow.DeleteComplaint(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) GetComplaintMonthlyCounts(c *gin.Context) {
	fy, err := fiscalYearParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	counts, err := h.Workflow.GetComplaintMonthlyCounts(c.Request.Context(), fy)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}
