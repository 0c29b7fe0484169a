package models

import (
	"log"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Department{}, &Segment{}, &Region{}, &StoreRegionMapping{}, &KpiDefinition{},
		&FinancialData{}, &FinancialCostDetail{}, &FinancialSgaDetail{},
		&ManufacturingData{}, &ManufacturingMonthlySummary{},
		&EcommerceChannelSales{}, &EcommerceProductSales{}, &EcommerceCustomerStats{}, &EcommerceWebsiteStats{},
		&StorePL{}, &StorePLSgaDetail{},
		&KpiValue{},
		&Complaint{},
		&UserProfile{},
		&AuditOutboxRecord{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
