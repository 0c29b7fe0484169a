package api

import (
	"context"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/middlewares"
)

// Catalog names are presentation data, resolved through the request's batch
// loaders after the workflow has composed the figures. A missing catalog row
// leaves the name empty rather than failing the response.

func segmentNames(ctx context.Context, ids []string) map[string]string {
	distinct := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		distinct = append(distinct, id)
	}
	names := make(map[string]string, len(distinct))
	segments, _ := middlewares.GetSegments(ctx, distinct)
	for _, s := range segments {
		if s != nil {
			names[s.ID] = s.Name
		}
	}
	return names
}

func regionName(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	region, err := middlewares.GetRegion(ctx, id)
	if err != nil || region == nil {
		return ""
	}
	return region.Name
}

func kpiName(ctx context.Context, id string) string {
	def, err := middlewares.GetKpiDefinition(ctx, id)
	if err != nil || def == nil {
		return ""
	}
	return def.Name
}
