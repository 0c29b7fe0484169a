package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MeasureSales          = "sales"
	MeasureBuyers         = "buyers"
	MeasureQuantity       = "quantity"
	MeasureNewCustomers   = "new_customers"
	MeasureRepeatCusts    = "repeat_customers"
	MeasureTotalCustomers = "total_customers"
	MeasurePageViews      = "page_views"
	MeasureUniqueVisitors = "unique_visitors"
	MeasureSessions       = "sessions"
)

// EcommerceChannelSales is the monthly per-channel sales fact for the
// e-commerce department. Grain: (month, channel, is_target).
type EcommerceChannelSales struct {
	ID       int       `gorm:"primary_key" json:"id"`
	Month    time.Time `gorm:"not null;uniqueIndex:idx_ecs_key,priority:1" json:"month"`
	Channel  Channel   `gorm:"size:32;not null;uniqueIndex:idx_ecs_key,priority:2" json:"channel"`
	IsTarget bool      `gorm:"not null;default:false;uniqueIndex:idx_ecs_key,priority:3" json:"is_target"`

	Sales  *decimal.Decimal `gorm:"type:decimal(20,4)" json:"sales"`
	Buyers *int             `json:"buyers"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EcommerceChannelSales) TableName() string { return "ecommerce_channel_sales" }

func (e *EcommerceChannelSales) EntityKey() string      { return string(e.Channel) }
func (e *EcommerceChannelSales) PeriodDate() time.Time  { return e.Month }
func (e *EcommerceChannelSales) TargetFlag() bool       { return e.IsTarget }
func (e *EcommerceChannelSales) LastUpdated() time.Time { return e.UpdatedAt }

func (e *EcommerceChannelSales) MeasureValues() map[string]*decimal.Decimal {
	return map[string]*decimal.Decimal{
		MeasureSales:  e.Sales,
		MeasureBuyers: decimalFromInt(e.Buyers),
	}
}

// EcommerceProductSales is the monthly per-product sales fact.
// Grain: (month, product_name, is_target).
type EcommerceProductSales struct {
	ID              int       `gorm:"primary_key" json:"id"`
	Month           time.Time `gorm:"not null;uniqueIndex:idx_eps_key,priority:1" json:"month"`
	ProductName     string    `gorm:"size:100;not null;uniqueIndex:idx_eps_key,priority:2" json:"product_name"`
	ProductCategory string    `gorm:"size:64;index" json:"product_category"`
	IsTarget        bool      `gorm:"not null;default:false;uniqueIndex:idx_eps_key,priority:3" json:"is_target"`

	Sales    *decimal.Decimal `gorm:"type:decimal(20,4)" json:"sales"`
	Quantity *int             `json:"quantity"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EcommerceProductSales) TableName() string { return "ecommerce_product_sales" }

func (e *EcommerceProductSales) EntityKey() string      { return e.ProductName }
func (e *EcommerceProductSales) PeriodDate() time.Time  { return e.Month }
func (e *EcommerceProductSales) TargetFlag() bool       { return e.IsTarget }
func (e *EcommerceProductSales) LastUpdated() time.Time { return e.UpdatedAt }

func (e *EcommerceProductSales) MeasureValues() map[string]*decimal.Decimal {
	return map[string]*decimal.Decimal{
		MeasureSales:    e.Sales,
		MeasureQuantity: decimalFromInt(e.Quantity),
	}
}

// EcommerceCustomerStats is the monthly customer composition fact.
// Grain: (month, is_target); company-level within the e-commerce department.
type EcommerceCustomerStats struct {
	ID       int       `gorm:"primary_key" json:"id"`
	Month    time.Time `gorm:"not null;uniqueIndex:idx_ecust_key,priority:1" json:"month"`
	IsTarget bool      `gorm:"not null;default:false;uniqueIndex:idx_ecust_key,priority:2" json:"is_target"`

	NewCustomers    *int `json:"new_customers"`
	RepeatCustomers *int `json:"repeat_customers"`
	TotalCustomers  *int `json:"total_customers"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EcommerceCustomerStats) TableName() string { return "ecommerce_customer_stats" }

func (e *EcommerceCustomerStats) EntityKey() string      { return CompanyEntityId }
func (e *EcommerceCustomerStats) PeriodDate() time.Time  { return e.Month }
func (e *EcommerceCustomerStats) TargetFlag() bool       { return e.IsTarget }
func (e *EcommerceCustomerStats) LastUpdated() time.Time { return e.UpdatedAt }

func (e *EcommerceCustomerStats) MeasureValues() map[string]*decimal.Decimal {
	return map[string]*decimal.Decimal{
		MeasureNewCustomers:   decimalFromInt(e.NewCustomers),
		MeasureRepeatCusts:    decimalFromInt(e.RepeatCustomers),
		MeasureTotalCustomers: decimalFromInt(e.TotalCustomers),
	}
}

// EcommerceWebsiteStats is the monthly website traffic fact.
// Grain: (month, is_target).
type EcommerceWebsiteStats struct {
	ID       int       `gorm:"primary_key" json:"id"`
	Month    time.Time `gorm:"not null;uniqueIndex:idx_eweb_key,priority:1" json:"month"`
	IsTarget bool      `gorm:"not null;default:false;uniqueIndex:idx_eweb_key,priority:2" json:"is_target"`

	PageViews      *int `json:"page_views"`
	UniqueVisitors *int `json:"unique_visitors"`
	Sessions       *int `json:"sessions"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (EcommerceWebsiteStats) TableName() string { return "ecommerce_website_stats" }

func (e *EcommerceWebsiteStats) EntityKey() string      { return CompanyEntityId }
func (e *EcommerceWebsiteStats) PeriodDate() time.Time  { return e.Month }
func (e *EcommerceWebsiteStats) TargetFlag() bool       { return e.IsTarget }
func (e *EcommerceWebsiteStats) LastUpdated() time.Time { return e.UpdatedAt }

func (e *EcommerceWebsiteStats) MeasureValues() map[string]*decimal.Decimal {
	return map[string]*decimal.Decimal{
		MeasurePageViews:      decimalFromInt(e.PageViews),
		MeasureUniqueVisitors: decimalFromInt(e.UniqueVisitors),
		MeasureSessions:       decimalFromInt(e.Sessions),
	}
}

// ValidChannel reports whether ch is one of the four configured sales channels.
func ValidChannel(ch Channel) error {
	for _, c := range AllChannels {
		if c == ch {
			return nil
		}
	}
	return fmt.Errorf("unknown channel %q", ch)
}
