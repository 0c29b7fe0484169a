// rebuild-monthly-summary recomputes the persisted manufacturing monthly
// summary rows from the raw daily facts. Run after bulk backfills or manual
// corrections of manufacturing_data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/config"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/workflow"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	config.ConnectRedis()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	w := workflow.NewWorkflow(db, config.GetRedisLock(), config.GetLogger())
	rebuilt, err := w.RebuildMonthlySummaries(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rebuild failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Rebuilt %d monthly summary rows\n", rebuilt)
}
