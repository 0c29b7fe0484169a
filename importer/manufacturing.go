package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/TanakaTsuyoshi-10/kpidash-backend/engine"
	"github.com/TanakaTsuyoshi-10/kpidash-backend/models"
	"github.com/xuri/excelize/v2"
)

// Column order of the manufacturing daily template.
const (
	mfgColDate = iota
	mfgColIsTarget
	mfgColBatts
	mfgColPieces
	mfgColWorkers
	mfgColPaidLeave
)

// ManufacturingRow is one parsed daily production row with its Excel row
// number.
type ManufacturingRow struct {
	RowNo int
	Data  models.ManufacturingData
}

// ParseManufacturingRows maps the daily production sheet to fact rows.
// Pieces left empty stay nil so the workflow can derive them from batts.
func ParseManufacturingRows(rows [][]string) ([]ManufacturingRow, []RowError) {
	var (
		parsed []ManufacturingRow
		errs   []RowError
	)
	for idx, row := range rows {
		if idx == 0 {
			continue
		}
		rowNo := idx + 1

		date, err := parseTimeCell(cell(row, mfgColDate))
		if err != nil {
			errs = append(errs, RowError{Row: rowNo, Column: "date", Reason: err.Error()})
			continue
		}
		data := models.ManufacturingData{
			Date:     engine.DayStart(date),
			IsTarget: parseBoolCell(cell(row, mfgColIsTarget)),
		}

		ok := true
		for _, field := range []struct {
			col  int
			name string
			dest **int
		}{
			{mfgColBatts, "production_batts", &data.ProductionBatts},
			{mfgColPieces, "production_pieces", &data.ProductionPieces},
			{mfgColWorkers, "workers_count", &data.WorkersCount},
		} {
			v, err := parseIntCell(cell(row, field.col))
			if err != nil {
				errs = append(errs, RowError{Row: rowNo, Column: field.name, Reason: err.Error()})
				ok = false
				continue
			}
			if v != nil && *v < 0 {
				errs = append(errs, RowError{Row: rowNo, Column: field.name, Reason: "must not be negative"})
				ok = false
				continue
			}
			*field.dest = v
		}
		paidLeave, err := parseDecimalCell(cell(row, mfgColPaidLeave))
		if err != nil {
			errs = append(errs, RowError{Row: rowNo, Column: "paid_leave_hours", Reason: err.Error()})
			ok = false
		}
		if !ok {
			continue
		}
		data.PaidLeaveHours = paidLeave
		parsed = append(parsed, ManufacturingRow{RowNo: rowNo, Data: data})
	}
	return parsed, errs
}

// ImportManufacturingWorkbook parses an uploaded daily production workbook
// and upserts every valid row.
func (im *Importer) ImportManufacturingWorkbook(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet: %w", err)
	}

	parsed, parseErrs := ParseManufacturingRows(rows)
	result := &ImportResult{Errors: parseErrs}
	for _, p := range parsed {
		if _, err := im.Workflow.UpsertManufacturingDaily(ctx, p.Data); err != nil {
			result.reject(p.RowNo, "date", err.Error())
			continue
		}
		result.Applied++
	}
	return result, nil
}
