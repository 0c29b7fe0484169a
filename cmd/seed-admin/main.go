// seed-admin creates or updates the dashboard admin user and the entity
// catalog master data (departments, segments, regions, store-region mapping,
// KPI definitions).
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/config"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	adminEmail = "admin@kpidash.local"
	adminName  = "KPI Dashboard Admin"
)

func seedAdminUser(ctx context.Context, db *gorm.DB) error {
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		return errors.New("SEED_ADMIN_PASSWORD is required")
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	active := true
	var existing models.UserProfile
	err = db.WithContext(ctx).Where("email = ?", adminEmail).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u := models.UserProfile{
			ID:           uuid.NewString(),
			Email:        adminEmail,
			PasswordHash: string(hashed),
			DisplayName:  adminName,
			Role:         models.UserRoleAdmin,
			IsActive:     &active,
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
		fmt.Printf("Created admin user: email=%q\n", adminEmail)
		return nil
	case err != nil:
		return fmt.Errorf("failed to lookup admin user: %w", err)
	}

	if err := db.WithContext(ctx).Model(&models.UserProfile{}).Where("email = ?", adminEmail).Updates(map[string]any{
		"password_hash": string(hashed),
		"display_name":  adminName,
		"role":          models.UserRoleAdmin,
		"is_active":     true,
	}).Error; err != nil {
		return fmt.Errorf("failed to update admin user: %w", err)
	}
	fmt.Printf("Updated admin user: email=%q\n", adminEmail)
	return nil
}

func seedCatalog(ctx context.Context, db *gorm.DB) error {
	departments := []models.Department{
		{ID: "dept_head_office", Name: "Head Office", Code: "HQ", Type: models.DepartmentTypeHeadOffice, DisplayOrder: 1},
		{ID: "dept_manufacturing", Name: "Manufacturing", Code: "MFG", Type: models.DepartmentTypeManufacturing, DisplayOrder: 2},
		{ID: "dept_ecommerce", Name: "E-Commerce", Code: "EC", Type: models.DepartmentTypeEcommerce, DisplayOrder: 3},
		{ID: "dept_store", Name: "Retail Stores", Code: "ST", Type: models.DepartmentTypeStore, DisplayOrder: 4},
	}
	regions := []models.Region{
		{ID: "region_east", Name: "East", Code: "E", DisplayOrder: 1},
		{ID: "region_west", Name: "West", Code: "W", DisplayOrder: 2},
	}
	active := true
	segments := []models.Segment{
		{ID: "store_001", DepartmentId: "dept_store", Name: "Main Street Store", Code: "S001", DisplayOrder: 1, IsActive: &active},
		{ID: "store_002", DepartmentId: "dept_store", Name: "Station Front Store", Code: "S002", DisplayOrder: 2, IsActive: &active},
		{ID: "store_003", DepartmentId: "dept_store", Name: "Harbor Store", Code: "S003", DisplayOrder: 3, IsActive: &active},
	}
	mappings := []models.StoreRegionMapping{
		{SegmentId: "store_001", RegionId: "region_east"},
		{SegmentId: "store_002", RegionId: "region_east"},
		{SegmentId: "store_003", RegionId: "region_west"},
	}
	visible := true
	kpis := []models.KpiDefinition{
		{ID: "kpi_customer_count", Name: "Customer Count", Category: "store", Unit: "pax", IsVisible: &visible, DisplayOrder: 1},
		{ID: "kpi_avg_spend", Name: "Average Spend", Category: "store", Unit: "yen", IsVisible: &visible, DisplayOrder: 2},
		{ID: "kpi_units_per_tx", Name: "Units per Transaction", Category: "store", Unit: "pcs", IsVisible: &visible, DisplayOrder: 3},
	}

	upsert := clause.OnConflict{UpdateAll: true}
	for _, batch := range []any{&departments, &regions, &segments, &mappings, &kpis} {
		if err := db.WithContext(ctx).Clauses(upsert).Create(batch).Error; err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}
	fmt.Printf("Seeded catalog: %d departments, %d regions, %d segments, %d mappings, %d KPI definitions\n",
		len(departments), len(regions), len(segments), len(mappings), len(kpis))
	return nil
}

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	if err := seedCatalog(ctx, db); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if err := seedAdminUser(ctx, db); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
