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

// Column order of the store P&L template.
const (
	splColSegment = iota
	splColMonth
	splColIsTarget
	splColSales
	splColCostOfSales
	splColGrossProfit
	splColSgaTotal
	splColOperatingProfit
)

// StorePLRow is one parsed store P&L row with its Excel row number.
type StorePLRow struct {
	RowNo int
	Input workflow.StorePLUpsertInput
}

// ParseStorePLRows maps the store P&L sheet to upsert inputs.
func ParseStorePLRows(rows [][]string) ([]StorePLRow, []RowError) {
	var (
		parsed []StorePLRow
		errs   []RowError
	)
	for idx, row := range rows {
		if idx == 0 {
			continue
		}
		rowNo := idx + 1

		segmentId := cell(row, splColSegment)
		if segmentId == "" {
			errs = append(errs, RowError{Row: rowNo, Column: "segment_id", Reason: "segment_id is required"})
			continue
		}
		month, err := parseMonthCell(cell(row, splColMonth))
		if err != nil {
			errs = append(errs, RowError{Row: rowNo, Column: "month", Reason: err.Error()})
			continue
		}
		data := models.StorePL{
			SegmentId: segmentId,
			Month:     month,
			IsTarget:  parseBoolCell(cell(row, splColIsTarget)),
		}

		ok := true
		for _, field := range []struct {
			col  int
			name string
			dest **decimal.Decimal
		}{
			{splColSales, "sales", &data.Sales},
			{splColCostOfSales, "cost_of_sales", &data.CostOfSales},
			{splColGrossProfit, "gross_profit", &data.GrossProfit},
			{splColSgaTotal, "sga_total", &data.SgaTotal},
			{splColOperatingProfit, "operating_profit", &data.OperatingProfit},
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
		parsed = append(parsed, StorePLRow{RowNo: rowNo, Input: workflow.StorePLUpsertInput{Data: data}})
	}
	return parsed, errs
}

// ImportStorePLWorkbook parses an uploaded store P&L workbook and upserts
// every valid row. Rows for segments outside the caller's scope are rejected
// individually, not the whole file.
func (im *Importer) ImportStorePLWorkbook(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet: %w", err)
	}

	parsed, parseErrs := ParseStorePLRows(rows)
	result := &ImportResult{Errors: parseErrs}
	for _, p := range parsed {
		if _, err := im.Workflow.UpsertStorePL(ctx, p.Input); err != nil {
			result.reject(p.RowNo, "segment_id", err.Error())
			continue
		}
		result.Applied++
	}
	return result, nil
}
