package ingest

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/remates-cli/internal/model"
)

// CSVColumns is the fixed export column order.
var CSVColumns = []string{
	"matricula", "finca_id", "provincia", "canton", "distrito", "naturaleza",
	"area_text", "area_numeric", "base_price_text", "base_price_numeric",
	"currency", "first_auction_date", "first_auction_time",
	"second_auction_date", "second_auction_base", "third_auction_date",
	"third_auction_base", "case_type", "case_number", "plaintiff", "defendant",
	"court", "judge", "raw_text",
}

// Row returns r's values in CSVColumns order. Unknown values are "".
func Row(r *model.Remate) []string {
	var cur string
	if r.Currency != nil {
		cur = string(*r.Currency)
	}
	return []string{
		r.Matricula, s(r.FincaID), s(r.Provincia), s(r.Canton), s(r.Distrito),
		s(r.Naturaleza), s(r.AreaText), f(r.AreaNumeric), s(r.BasePriceText),
		f(r.BasePriceNumeric), cur, s(r.FirstAuctionDate), s(r.FirstAuctionTime),
		s(r.SecondAuctionDate), f(r.SecondAuctionBase), s(r.ThirdAuctionDate),
		f(r.ThirdAuctionBase), s(r.CaseType), s(r.CaseNumber), s(r.Plaintiff),
		s(r.Defendant), s(r.Court), s(r.Judge), r.RawText,
	}
}

// ExportCSV renders records with a header row.
func ExportCSV(records []model.Remate) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVColumns); err != nil {
		return "", eris.Wrap(err, "ingest: csv header")
	}
	for i := range records {
		if err := w.Write(Row(&records[i])); err != nil {
			return "", eris.Wrapf(err, "ingest: csv row %s", records[i].Matricula)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", eris.Wrap(err, "ingest: csv flush")
	}
	return buf.String(), nil
}

func s(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func f(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
