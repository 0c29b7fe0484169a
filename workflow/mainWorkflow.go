package workflow

import (
	"context"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/appctx"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/config"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/engine"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/utils"
	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Workflow bundles the fact store and logger shared by the department
// workflows. One instance is built at startup and handed to the API layer.
type Workflow struct {
	Store  *engine.Store
	Logger *logrus.Logger
}

func NewWorkflow(db *gorm.DB, locker *redislock.Client, logger *logrus.Logger) *Workflow {
	store := engine.NewStore(db, locker, logger).WithAudit(auditToOutbox)
	return &Workflow{Store: store, Logger: logger}
}

// auditToOutbox bridges the store's audit hook to the transactional outbox so
// every fact mutation leaves an audit event in the same transaction.
func auditToOutbox(ctx context.Context, tx *gorm.DB, table string, entityId string, period time.Time, isTarget bool, action string, oldObj any, newObj any) error {
	return models.RecordAudit(ctx, tx, table, entityId, period, isTarget, models.AuditAction(action), oldObj, newObj)
}

// logWarnings records the data quality warnings that reconciliation attached
// to a response. Warnings are returned to the caller as well; the log entry is
// what operations watches for.
func (w *Workflow) logWarnings(ctx context.Context, moduleName string, funcName string, warnings []engine.Warning) {
	if len(warnings) == 0 {
		return
	}
	config.LogWarn(w.Logger, moduleName, funcName, "data quality warnings", map[string]any{
		"correlationId": utils.CorrelationId(ctx),
		"warnings":      warnings,
	})
}

// MonthlyValue is one point of a per-month response series.
type MonthlyValue struct {
	Month    time.Time        `json:"month"`
	Actual   *decimal.Decimal `json:"actual"`
	Target   *decimal.Decimal `json:"target"`
	Variance *decimal.Decimal `json:"variance"`

	// AchievementRate is nil when the target is missing or zero.
	AchievementRate *decimal.Decimal `json:"achievement_rate"`
}

// segmentScopeAllows checks whether the caller may read data for segmentId.
// An unset scope (admin, company-level user) allows everything.
func segmentScopeAllows(ctx context.Context, segmentId string) bool {
	scope, ok := appctx.GetStringSlice(ctx, appctx.ContextKeySegmentScope)
	if !ok || scope == nil {
		return true
	}
	for _, s := range scope {
		if s == segmentId {
			return true
		}
	}
	return false
}

// filterScopedSegments drops the segments the caller may not see.
func filterScopedSegments(ctx context.Context, segmentIds []string) []string {
	out := make([]string, 0, len(segmentIds))
	for _, id := range segmentIds {
		if segmentScopeAllows(ctx, id) {
			out = append(out, id)
		}
	}
	return out
}

// Cached dashboard responses are short-lived; any fact upsert in the same
// domain invalidates the whole domain prefix.
const dashboardCacheTTL = 5 * time.Minute

func cacheGet(key string, dest any) bool {
	found, err := config.GetRedisObject(key, dest)
	if err != nil {
		return false
	}
	return found
}

func cacheSet(key string, obj any) {
	_ = config.SetRedisObject(key, obj, dashboardCacheTTL)
}

func cacheInvalidate(prefix string) {
	_ = config.DeleteRedisKeys(prefix + "*")
}

func boolPtr(b bool) *bool { return &b }
