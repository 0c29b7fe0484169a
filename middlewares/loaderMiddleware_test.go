package middlewares

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/graph-gophers/dataloader/v7"
)

func stubSegmentLoader(batches *int32, known map[string]string) *dataloader.Loader[string, *models.Segment] {
	return dataloader.NewBatchedLoader(
		func(ctx context.Context, ids []string) []*dataloader.Result[*models.Segment] {
			atomic.AddInt32(batches, 1)
			out := make([]*dataloader.Result[*models.Segment], 0, len(ids))
			for _, id := range ids {
				name, ok := known[id]
				if !ok {
					out = append(out, &dataloader.Result[*models.Segment]{})
					continue
				}
				out = append(out, &dataloader.Result[*models.Segment]{Data: &models.Segment{ID: id, Name: name}})
			}
			return out
		},
		dataloader.WithWait[string, *models.Segment](time.Millisecond),
	)
}

func TestGetSegmentsBatchesOneQuery(t *testing.T) {
	var batches int32
	loaders := &Loaders{SegmentLoader: stubSegmentLoader(&batches, map[string]string{
		"store_001": "Main Street Store",
		"store_002": "Station Front Store",
	})}
	ctx := WithLoaders(context.Background(), loaders)

	segments, errs := GetSegments(ctx, []string{"store_001", "store_002"})
	for _, err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0] == nil || segments[0].Name != "Main Street Store" {
		t.Errorf("segments[0] = %+v", segments[0])
	}
	if segments[1] == nil || segments[1].Name != "Station Front Store" {
		t.Errorf("segments[1] = %+v", segments[1])
	}
	if got := atomic.LoadInt32(&batches); got != 1 {
		t.Errorf("expected one batch, got %d", got)
	}
}

func TestGetSegmentMissingIdResolvesNil(t *testing.T) {
	var batches int32
	loaders := &Loaders{SegmentLoader: stubSegmentLoader(&batches, nil)}
	ctx := WithLoaders(context.Background(), loaders)

	segment, err := GetSegment(ctx, "store_999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if segment != nil {
		t.Errorf("expected nil for unknown id, got %+v", segment)
	}
}

func TestGetHelpersWithoutLoaders(t *testing.T) {
	ctx := context.Background()
	if seg, err := GetSegment(ctx, "store_001"); seg != nil || err != nil {
		t.Errorf("GetSegment = %v, %v", seg, err)
	}
	if segs, errs := GetSegments(ctx, []string{"store_001"}); segs != nil || errs != nil {
		t.Errorf("GetSegments = %v, %v", segs, errs)
	}
	if region, err := GetRegion(ctx, "region_east"); region != nil || err != nil {
		t.Errorf("GetRegion = %v, %v", region, err)
	}
	if def, err := GetKpiDefinition(ctx, "kpi_customer_count"); def != nil || err != nil {
		t.Errorf("GetKpiDefinition = %v, %v", def, err)
	}
}

func TestGenerateLoaderResultsPreservesOrder(t *testing.T) {
	rows := []models.Segment{
		{ID: "store_002", Name: "Station Front Store"},
		{ID: "store_001", Name: "Main Street Store"},
	}
	results := generateLoaderResults(rows, []string{"store_001", "store_003", "store_002"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Data == nil || (*results[0].Data).Name != "Main Street Store" {
		t.Errorf("results[0] = %+v", results[0].Data)
	}
	if results[1].Data != nil {
		t.Errorf("missing id should resolve to nil, got %+v", results[1].Data)
	}
	if results[2].Data == nil || (*results[2].Data).Name != "Station Front Store" {
		t.Errorf("results[2] = %+v", results[2].Data)
	}
}
