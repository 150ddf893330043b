// Package spreadsheet reads and writes the xlsx interchange files used
// for bulk import and inventory export.
package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"expirytrack-api/internal/model"

	"github.com/xuri/excelize/v2"
)

// Import column headers, matched as they literally appear in supplier
// sheets.
const (
	colBarcode     = "Barcode"
	colItemName    = "item name"
	colDescription = "Description"
)

// ExportSheet is the name of the sheet export writes.
const ExportSheet = "Inventory"

// ExportHeader is the fixed export column order.
var ExportHeader = []string{"Name", "Barcode", "Description", "Expiry", "Quantity"}

// ContentType is the MIME type for xlsx downloads.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReadImportRows parses the first sheet of an xlsx workbook into
// import rows. The first row is the header; columns other than
// Barcode, item name and Description are ignored. Cells are returned
// as found, missing ones as empty strings; filtering incomplete rows
// is the importer's job, not the parser's.
func ReadImportRows(r io.Reader) ([]model.ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.TrimSpace(name)] = i
	}
	cell := func(row []string, column string) string {
		i, ok := columns[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]model.ImportRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, model.ImportRow{
			Barcode:     cell(row, colBarcode),
			Name:        cell(row, colItemName),
			Description: cell(row, colDescription),
		})
	}
	return out, nil
}

// WriteExport writes export rows (any trailing TOTAL row included by
// the caller) to a single-sheet xlsx workbook.
func WriteExport(w io.Writer, rows []model.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ExportSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := f.SetSheetRow(ExportSheet, "A1", &ExportHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell name: %w", err)
		}
		values := []interface{}{row.Name, row.Barcode, row.Description, row.Expiry, row.Quantity}
		if err := f.SetSheetRow(ExportSheet, axis, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
