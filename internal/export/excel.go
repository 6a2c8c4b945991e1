// Package export writes lookup results to an Excel workbook.
package export

import (
	"fmt"
	"io"

	"electricity-price/internal/models"
	"electricity-price/internal/presenter"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const SheetName = "电价"

// Build returns a workbook with a header row and one row per record, in
// input order. Missing prices are left blank; present ones are numeric.
func Build(records []models.ElectricityPrice) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, err
	}

	header := make([]interface{}, len(presenter.Headers))
	for i, h := range presenter.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	f.SetRowStyle(SheetName, 1, 1, headerStyle)

	priceFmt := "0.0000"
	priceStyle, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &priceFmt})

	for i, r := range records {
		row := []interface{}{
			r.RegionName,
			r.PriceDate,
			r.TypeDescription(),
			r.VoltageLevelDesc,
			priceCell(r.PeakPrice),
			priceCell(r.SharpPeakPrice),
			priceCell(r.ValleyPrice),
			priceCell(r.NormalPrice),
			priceCell(r.DeepValleyPrice),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if len(records) > 0 {
		last := len(records) + 1
		f.SetCellStyle(SheetName, "E2", fmt.Sprintf("I%d", last), priceStyle)
	}

	f.SetColWidth(SheetName, "A", "B", 14)
	f.SetColWidth(SheetName, "C", "C", 28)
	f.SetColWidth(SheetName, "D", "D", 16)
	f.SetColWidth(SheetName, "E", "I", 12)

	return f, nil
}

// Write streams the workbook for records to w.
func Write(records []models.ElectricityPrice, w io.Writer) error {
	f, err := Build(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func priceCell(p *decimal.Decimal) interface{} {
	if p == nil {
		return nil
	}
	v, _ := p.Float64()
	return v
}
