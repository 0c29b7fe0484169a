package middlewares

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
)

type ctxKey string

const loadersKey = ctxKey("dataloaders")

// Loaders batch catalog lookups so list endpoints resolve names without one
// query per row.
type Loaders struct {
	SegmentLoader       *dataloader.Loader[string, *models.Segment]
	RegionLoader        *dataloader.Loader[string, *models.Region]
	DepartmentLoader    *dataloader.Loader[string, *models.Department]
	KpiDefinitionLoader *dataloader.Loader[string, *models.KpiDefinition]
}

func NewLoaders(conn *gorm.DB) *Loaders {
	segmentReader := &catalogReader[models.Segment]{db: conn}
	regionReader := &catalogReader[models.Region]{db: conn}
	departmentReader := &catalogReader[models.Department]{db: conn}
	kpiReader := &catalogReader[models.KpiDefinition]{db: conn}

	return &Loaders{
		SegmentLoader:       dataloader.NewBatchedLoader(segmentReader.get, dataloader.WithWait[string, *models.Segment](time.Millisecond)),
		RegionLoader:        dataloader.NewBatchedLoader(regionReader.get, dataloader.WithWait[string, *models.Region](time.Millisecond)),
		DepartmentLoader:    dataloader.NewBatchedLoader(departmentReader.get, dataloader.WithWait[string, *models.Department](time.Millisecond)),
		KpiDefinitionLoader: dataloader.NewBatchedLoader(kpiReader.get, dataloader.WithWait[string, *models.KpiDefinition](time.Millisecond)),
	}
}

func LoaderMiddleware(conn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithLoaders(c.Request.Context(), NewLoaders(conn)))
		c.Next()
	}
}

func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, l)
}

// For returns the request's loaders, nil outside the middleware chain
// (background jobs, tests). The Get helpers treat nil as "name unknown".
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// catalogReader batches id lookups for one catalog table. Missing ids resolve
// to nil rather than failing the whole batch.
type catalogReader[T catalogRow] struct {
	db *gorm.DB
}

type catalogRow interface {
	models.Segment | models.Region | models.Department | models.KpiDefinition
}

func (r *catalogReader[T]) get(ctx context.Context, ids []string) []*dataloader.Result[*T] {
	var rows []T
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	if err != nil {
		return handleError[*T](len(ids), err)
	}
	return generateLoaderResults(rows, ids)
}

// handleError repeats one error for every requested key.
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

func generateLoaderResults[T catalogRow](rows []T, ids []string) []*dataloader.Result[*T] {
	resultMap := make(map[string]*T, len(rows))
	for i := range rows {
		resultMap[catalogId(&rows[i])] = &rows[i]
	}
	out := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		out = append(out, &dataloader.Result[*T]{Data: resultMap[id]})
	}
	return out
}

func catalogId[T catalogRow](row *T) string {
	switch v := any(row).(type) {
	case *models.Segment:
		return v.ID
	case *models.Region:
		return v.ID
	case *models.Department:
		return v.ID
	case *models.KpiDefinition:
		return v.ID
	}
	return ""
}

func GetSegment(ctx context.Context, id string) (*models.Segment, error) {
	l := For(ctx)
	if l == nil {
		return nil, nil
	}
	return l.SegmentLoader.Load(ctx, id)()
}

func GetSegments(ctx context.Context, ids []string) ([]*models.Segment, []error) {
	l := For(ctx)
	if l == nil {
		return nil, nil
	}
	return l.SegmentLoader.LoadMany(ctx, ids)()
}

func GetRegion(ctx context.Context, id string) (*models.Region, error) {
	l := For(ctx)
	if l == nil {
		return nil, nil
	}
	return l.RegionLoader.Load(ctx, id)()
}

func GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	l := For(ctx)
	if l == nil {
		return nil, nil
	}
	return l.DepartmentLoader.Load(ctx, id)()
}

func GetKpiDefinition(ctx context.Context, id string) (*models.KpiDefinition, error) {
	l := For(ctx)
	if l == nil {
		return nil, nil
	}
	return l.KpiDefinitionLoader.Load(ctx, id)()
}
