package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/appctx"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/engine"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestLogWarningsEmitsWarnEntry(t *testing.T) {
	logger, hook := test.NewNullLogger()
	w := &Workflow{Logger: logger}

	ctx := appctx.Set(context.Background(), appctx.ContextKeyCorrelationId, "corr-42")
	warnings := []engine.Warning{{
		Kind:     engine.WarnDataQuality,
		Table:    models.FinancialData{}.TableName(),
		EntityId: models.CompanyEntityId,
		Period:   fyMonth(2024, time.October),
		Detail:   "detail items exceed parent total; residual is negative",
	}}

	w.logWarnings(ctx, "financialWorkflow.go", "GetFinancialOverview", warnings)

	if len(hook.Entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(hook.Entries))
	}
	entry := hook.LastEntry()
	if entry.Level != logrus.WarnLevel {
		t.Errorf("level = %s, want warning", entry.Level)
	}
	data, ok := entry.Data["data"].(map[string]any)
	if !ok {
		t.Fatalf("data field missing or wrong type: %#v", entry.Data["data"])
	}
	if data["correlationId"] != "corr-42" {
		t.Errorf("correlationId = %v, want corr-42", data["correlationId"])
	}
	got, ok := data["warnings"].([]engine.Warning)
	if !ok || len(got) != 1 || got[0].Detail != warnings[0].Detail {
		t.Errorf("warnings payload = %#v, want the reconciliation warning", data["warnings"])
	}
}

func TestLogWarningsSkipsCleanResponses(t *testing.T) {
	logger, hook := test.NewNullLogger()
	w := &Workflow{Logger: logger}

	w.logWarnings(context.Background(), "kpiWorkflow.go", "GetKpiSummary", nil)

	if len(hook.Entries) != 0 {
		t.Fatalf("expected no log entries, got %d", len(hook.Entries))
	}
}
