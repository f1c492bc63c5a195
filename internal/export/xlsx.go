// Package export writes extracted notices to spreadsheet formats.
package export

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/remates-cli/internal/ingest"
	"github.com/sells-group/remates-cli/internal/model"
)

// SheetName is the worksheet holding the exported notices.
const SheetName = "Remates"

// numericColumns are written as numeric cells.
var numericColumns = map[string]func(*model.Remate) *float64{
	"area_numeric":        func(r *model.Remate) *float64 { return r.AreaNumeric },
	"base_price_numeric":  func(r *model.Remate) *float64 { return r.BasePriceNumeric },
	"second_auction_base": func(r *model.Remate) *float64 { return r.SecondAuctionBase },
	"third_auction_base":  func(r *model.Remate) *float64 { return r.ThirdAuctionBase },
}

// Workbook builds a workbook with one sheet of records in the CSV column
// order.
func Workbook(records []model.Remate) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range ingest.CSVColumns {
		header.AddCell().SetString(col)
	}

	for i := range records {
		r := &records[i]
		row := sheet.AddRow()
		for j, v := range ingest.Row(r) {
			cell := row.AddCell()
			if get, ok := numericColumns[ingest.CSVColumns[j]]; ok {
				if n := get(r); n != nil {
					cell.SetFloat(*n)
				} else {
					cell.SetString("")
				}
				continue
			}
			cell.SetString(v)
		}
	}
	return f, nil
}

// WriteXLSX writes records as an XLSX workbook to w.
func WriteXLSX(w io.Writer, records []model.Remate) error {
	f, err := Workbook(records)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "xlsx: write")
	}
	return nil
}

// SaveXLSX writes records as an XLSX workbook at path.
func SaveXLSX(path string, records []model.Remate) error {
	f, err := Workbook(records)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}
