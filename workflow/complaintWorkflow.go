package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/config"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/engine"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"gorm.io/gorm"
)

// ComplaintFilter narrows the complaint listing.
type ComplaintFilter struct {
	From          *time.Time
	To            *time.Time
	Department    *models.DepartmentType
	SegmentId     *string
	ComplaintType *models.ComplaintType
	Status        *models.ComplaintStatus
	Limit         int
	Offset        int
}

// ListComplaints returns complaint records, newest incident first.
func (w *Workflow) ListComplaints(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, int64, error) {
	var (
		rows  []models.Complaint
		total int64
	)
	err := w.Store.WithRetry(ctx, "ListComplaints", func(ctx context.Context) error {
		q := w.Store.DB().WithContext(ctx).Model(&models.Complaint{})
		if filter.From != nil {
			q = q.Where("incident_date >= ?", *filter.From)
		}
		if filter.To != nil {
			q = q.Where("incident_date <= ?", *filter.To)
		}
		if filter.Department != nil {
			q = q.Where("department = ?", *filter.Department)
		}
		if filter.SegmentId != nil {
			q = q.Where("segment_id = ?", *filter.SegmentId)
		}
		if filter.ComplaintType != nil {
			q = q.Where("complaint_type = ?", *filter.ComplaintType)
		}
		if filter.Status != nil {
			q = q.Where("status = ?", *filter.Status)
		}
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		limit := filter.Limit
		if limit <= 0 || limit > 200 {
			limit = 50
		}
		return q.Order("incident_date desc, id desc").Limit(limit).Offset(filter.Offset).Find(&rows).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// GetComplaint returns one complaint by id.
func (w *Workflow) GetComplaint(ctx context.Context, id int) (*models.Complaint, error) {
	var row models.Complaint
	err := w.Store.WithRetry(ctx, "GetComplaint", func(ctx context.Context) error {
		return w.Store.DB().WithContext(ctx).Where("id = ?", id).First(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateComplaint records a new complaint.
func (w *Workflow) CreateComplaint(ctx context.Context, row models.Complaint) (*models.Complaint, error) {
	if strings.TrimSpace(row.ComplaintContent) == "" {
		return nil, fmt.Errorf("%w: complaint_content is required", engine.ErrConstraintViolation)
	}
	if row.Status == "" {
		row.Status = models.ComplaintStatusOpen
	}
	row.IncidentDate = engine.DayStart(row.IncidentDate)

	err := w.Store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return models.RecordAudit(ctx, tx, models.Complaint{}.TableName(),
			complaintEntityId(&row), row.IncidentDate, false, models.AuditActionCreate, nil, &row)
	})
	if err != nil {
		config.LogError(w.Logger, "complaintWorkflow.go", "CreateComplaint", "creating complaint", row, err)
		return nil, err
	}
	cacheInvalidate(dashboardCachePrefix)
	return &row, nil
}

// UpdateComplaint replaces an existing complaint record.
func (w *Workflow) UpdateComplaint(ctx context.Context, id int, row models.Complaint) (*models.Complaint, error) {
	var existing models.Complaint
	err := w.Store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return engine.ErrNotFound
			}
			return err
		}
		prev := existing
		row.ID = id
		row.IncidentDate = engine.DayStart(row.IncidentDate)
		if err := tx.Model(&existing).Select("*").Omit("id", "created_at", "created_by").Updates(&row).Error; err != nil {
			return err
		}
		return models.RecordAudit(ctx, tx, models.Complaint{}.TableName(),
			complaintEntityId(&row), row.IncidentDate, false, models.AuditActionUpdate, &prev, &row)
	})
	if err != nil {
		config.LogError(w.Logger, "complaintWorkflow.go", "UpdateComplaint", "updating complaint", id, err)
		return nil, err
	}
	cacheInvalidate(dashboardCachePrefix)
	return &row, nil
}

// DeleteComplaint removes one complaint record.
func (w *Workflow) DeleteComplaint(ctx context.Context, id int) error {
	err := w.Store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Complaint
		if err := tx.Where("id = ?", id).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return engine.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(&models.Complaint{}, id).Error; err != nil {
			return err
		}
		return models.RecordAudit(ctx, tx, models.Complaint{}.TableName(),
			complaintEntityId(&existing), existing.IncidentDate, false, models.AuditActionDelete, &existing, nil)
	})
	if err != nil {
		config.LogError(w.Logger, "complaintWorkflow.go", "DeleteComplaint", "deleting complaint", id, err)
		return err
	}
	cacheInvalidate(dashboardCachePrefix)
	return nil
}

func complaintEntityId(c *models.Complaint) string {
	if c.SegmentId != nil {
		return *c.SegmentId
	}
	return string(c.Department)
}

// ComplaintMonthCount is one month of complaint volume, split by type.
type ComplaintMonthCount struct {
	Month  time.Time                    `json:"month"`
	Total  int                          `json:"total"`
	ByType map[models.ComplaintType]int `json:"by_type"`
}

// GetComplaintMonthlyCounts rolls event-grained complaints up to monthly
// volumes for one fiscal year.
func (w *Workflow) GetComplaintMonthlyCounts(ctx context.Context, fiscalYear int) ([]ComplaintMonthCount, error) {
	rng := engine.FiscalYearPeriodRange(fiscalYear)
	from, to := rng.From, rng.To.AddDate(0, 1, -1)

	var rows []models.Complaint
	err := w.Store.WithRetry(ctx, "GetComplaintMonthlyCounts", func(ctx context.Context) error {
		return w.Store.DB().WithContext(ctx).
			Where("incident_date >= ? AND incident_date <= ?", from, to).
			Order("incident_date asc").
			Find(&rows).Error
	})
	if err != nil {
		config.LogError(w.Logger, "complaintWorkflow.go", "GetComplaintMonthlyCounts", "fetching complaints", fiscalYear, err)
		return nil, err
	}
	return ComposeComplaintMonthlyCounts(rows), nil
}

// ComposeComplaintMonthlyCounts is the pure monthly count rollup.
func ComposeComplaintMonthlyCounts(rows []models.Complaint) []ComplaintMonthCount {
	byMonth := map[string]*ComplaintMonthCount{}
	order := []string{}
	for i := range rows {
		m := engine.MonthStart(rows[i].IncidentDate)
		k := m.Format("2006-01")
		entry, ok := byMonth[k]
		if !ok {
			entry = &ComplaintMonthCount{Month: m, ByType: map[models.ComplaintType]int{}}
			byMonth[k] = entry
			order = append(order, k)
		}
		entry.Total++
		entry.ByType[rows[i].ComplaintType]++
	}

	out := make([]ComplaintMonthCount, 0, len(order))
	for _, k := range order {
		out = append(out, *byMonth[k])
	}
	return out
}
