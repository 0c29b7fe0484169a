package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Column order of the financial monthly template. Header row is row 1, data
// starts at row 2.
const (
	finColMonth = iota
	finColIsTarget
	finColSalesTotal
	finColSalesStore
	finColSalesOnline
	finColCostOfSales
	finColGrossProfit
	finColSgAndATotal
	finColLaborCost
	finColOtherExpenses
	finColOperatingProfit
	finColCfOperating
	finColCfInvesting
	finColCfFinancing
	finColCfFree
)

// FinancialRow is one parsed template row paired with its Excel row number.
type FinancialRow struct {
	RowNo int
	Input workflow.FinancialUpsertInput
}

// ParseFinancialRows maps the financial monthly sheet to upsert inputs
// without touching the database.
func ParseFinancialRows(rows [][]string) ([]FinancialRow, []RowError) {
	var (
		parsed []FinancialRow
		errs   []RowError
	)
	for idx, row := range rows {
		if idx == 0 {
			continue
		}
		rowNo := idx + 1

		month, err := parseMonthCell(cell(row, finColMonth))
		if err != nil {
			errs = append(errs, RowError{Row: rowNo, Column: "month", Reason: err.Error()})
			continue
		}
		data := models.FinancialData{
			Month:    month,
			IsTarget: parseBoolCell(cell(row, finColIsTarget)),
		}

		ok := true
		for _, field := range []struct {
			col  int
			name string
			dest **decimal.Decimal
		}{
			{finColSalesTotal, "sales_total", &data.SalesTotal},
			{finColSalesStore, "sales_store", &data.SalesStore},
			{finColSalesOnline, "sales_online", &data.SalesOnline},
			{finColCostOfSales, "cost_of_sales", &data.CostOfSales},
			{finColGrossProfit, "gross_profit", &data.GrossProfit},
			{finColSgAndATotal, "sg_and_a_total", &data.SgAndATotal},
			{finColLaborCost, "labor_cost", &data.LaborCost},
			{finColOtherExpenses, "other_expenses", &data.OtherExpenses},
			{finColOperatingProfit, "operating_profit", &data.OperatingProfit},
			{finColCfOperating, "cf_operating", &data.CfOperating},
			{finColCfInvesting, "cf_investing", &data.CfInvesting},
			{finColCfFinancing, "cf_financing", &data.CfFinancing},
			{finColCfFree, "cf_free", &data.CfFree},
		} {
			v, err := parseDecimalCell(cell(row, field.col))
			if err != nil {
				errs = append(errs, RowError{Row: rowNo, Column: field.name, Reason: err.Error()})
				ok = false
				continue
			}
			*field.dest = v
		}
		if !ok {
			continue
		}
		parsed = append(parsed, FinancialRow{RowNo: rowNo, Input: workflow.FinancialUpsertInput{Data: data}})
	}
	return parsed, errs
}

// ImportFinancialWorkbook parses an uploaded financial monthly workbook and
// upserts every valid row.
func (im *Importer) ImportFinancialWorkbook(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet: %w", err)
	}

	parsed, parseErrs := ParseFinancialRows(rows)
	result := &ImportResult{Errors: parseErrs}
	for _, p := range parsed {
		if _, err := im.Workflow.UpsertFinancialData(ctx, p.Input); err != nil {
			result.reject(p.RowNo, "month", err.Error())
			continue
		}
		result.Applied++
	}
	return result, nil
}
