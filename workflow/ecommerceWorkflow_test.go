package workflow

import (
	"testing"
	"time"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/shopspring/decimal"
)

func channelRow(ch models.Channel, m time.Time, target bool, sales string, buyers *int) models.EcommerceChannelSales {
	return models.EcommerceChannelSales{
		Channel:  ch,
		Month:    m,
		IsTarget: target,
		Sales:    decPtr(sales),
		Buyers:   buyers,
	}
}

func TestComposeChannelSummaryUnitPrice(t *testing.T) {
	month := fyMonth(2024, time.October)
	rows := []models.EcommerceChannelSales{
		channelRow(models.ChannelEC, month, false, "30000", intPtr(100)),
		channelRow(models.ChannelPhone, month, false, "5000", intPtr(0)),
		channelRow(models.ChannelFax, month, false, "2000", nil),
	}

	summary := ComposeChannelSummary(2024, rows)
	if len(summary.Cells) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(summary.Cells))
	}

	byChannel := map[models.Channel]ChannelMonth{}
	for _, c := range summary.Cells {
		byChannel[c.Channel] = c
	}
	ec := byChannel[models.ChannelEC]
	if ec.UnitPrice == nil || !ec.UnitPrice.Equal(decimal.RequireFromString("300")) {
		t.Errorf("ec unit price = %v, want 300", ec.UnitPrice)
	}
	// Zero or unknown buyers: no unit price, not a zero price.
	if byChannel[models.ChannelPhone].UnitPrice != nil {
		t.Error("phone unit price must be nil on zero buyers")
	}
	if byChannel[models.ChannelFax].UnitPrice != nil {
		t.Error("fax unit price must be nil on unknown buyers")
	}
}

func TestComposeChannelSummaryOrdersByDisplayOrder(t *testing.T) {
	month := fyMonth(2024, time.October)
	rows := []models.EcommerceChannelSales{
		channelRow(models.ChannelStoreCounter, month, false, "1", nil),
		channelRow(models.ChannelEC, month, false, "1", nil),
		channelRow(models.ChannelFax, month, false, "1", nil),
		channelRow(models.ChannelPhone, month, false, "1", nil),
	}
	summary := ComposeChannelSummary(2024, rows)
	for i, c := range summary.Cells {
		if c.Channel != models.AllChannels[i] {
			t.Errorf("cell %d channel = %s, want %s", i, c.Channel, models.AllChannels[i])
		}
	}
}

func TestComposeChannelSummaryVarianceAndAchievement(t *testing.T) {
	month := fyMonth(2024, time.October)
	rows := []models.EcommerceChannelSales{
		channelRow(models.ChannelEC, month, false, "900", intPtr(10)),
		channelRow(models.ChannelEC, month, true, "1000", nil),
	}
	summary := ComposeChannelSummary(2024, rows)
	cell := summary.Cells[0]
	if cell.Variance == nil || !cell.Variance.Equal(decimal.RequireFromString("-100")) {
		t.Errorf("variance = %v, want -100", cell.Variance)
	}
	if cell.AchievementRate == nil || !cell.AchievementRate.Equal(decimal.RequireFromString("0.9")) {
		t.Errorf("achievement = %v, want 0.9", cell.AchievementRate)
	}
}
