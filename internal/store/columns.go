package store

import (
	"strings"

	"github.com/sells-group/remates-cli/internal/model"
)

// remateColumns is the column order shared by inserts and selects.
var remateColumns = []string{
	"matricula", "finca_id", "provincia", "canton", "distrito", "cadastral_code",
	"naturaleza", "colindancias", "area_text", "area_numeric",
	"base_price_text", "base_price_numeric", "currency",
	"first_auction_date", "first_auction_time",
	"second_auction_date", "second_auction_time", "second_auction_base_text", "second_auction_base",
	"third_auction_date", "third_auction_time", "third_auction_base_text", "third_auction_base",
	"case_type", "case_number", "plaintiff", "defendant", "court", "judge",
	"raw_text", "bulletin_number", "status", "is_active", "extraction_date",
	"created_at", "updated_at",
}

var remateSelectList = strings.Join(remateColumns, ", ")

var failureColumns = []string{
	"id", "bulletin_number", "reference", "matricula", "error_kind", "error", "raw_text", "created_at",
}

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func remateArgs(r *model.Remate) []any {
	var currency *string
	if r.Currency != nil {
		c := string(*r.Currency)
		currency = &c
	}
	return []any{
		r.Matricula, r.FincaID, r.Provincia, r.Canton, r.Distrito, r.CadastralCode,
		r.Naturaleza, r.Colindancias, r.AreaText, r.AreaNumeric,
		r.BasePriceText, r.BasePriceNumeric, currency,
		r.FirstAuctionDate, r.FirstAuctionTime,
		r.SecondAuctionDate, r.SecondAuctionTime, r.SecondAuctionBaseText, r.SecondAuctionBase,
		r.ThirdAuctionDate, r.ThirdAuctionTime, r.ThirdAuctionBaseText, r.ThirdAuctionBase,
		r.CaseType, r.CaseNumber, r.Plaintiff, r.Defendant, r.Court, r.Judge,
		r.RawText, r.BulletinNumber, string(r.Status), r.IsActive, r.ExtractionDate,
		r.CreatedAt, r.UpdatedAt,
	}
}

func scanRemate(row rowScanner) (*model.Remate, error) {
	var r model.Remate
	var currency *string
	var status string
	err := row.Scan(
		&r.Matricula, &r.FincaID, &r.Provincia, &r.Canton, &r.Distrito, &r.CadastralCode,
		&r.Naturaleza, &r.Colindancias, &r.AreaText, &r.AreaNumeric,
		&r.BasePriceText, &r.BasePriceNumeric, &currency,
		&r.FirstAuctionDate, &r.FirstAuctionTime,
		&r.SecondAuctionDate, &r.SecondAuctionTime, &r.SecondAuctionBaseText, &r.SecondAuctionBase,
		&r.ThirdAuctionDate, &r.ThirdAuctionTime, &r.ThirdAuctionBaseText, &r.ThirdAuctionBase,
		&r.CaseType, &r.CaseNumber, &r.Plaintiff, &r.Defendant, &r.Court, &r.Judge,
		&r.RawText, &r.BulletinNumber, &status, &r.IsActive, &r.ExtractionDate,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if currency != nil {
		c := model.Currency(*currency)
		r.Currency = &c
	}
	r.Status = model.Status(status)
	return &r, nil
}

// updateAssignments returns the columns and values an update writes. Tiers
// are written whole, or not at all.
func updateAssignments(u model.RemateUpdate) ([]string, []any) {
	cols := []string{"raw_text", "updated_at"}
	args := []any{u.RawText, u.UpdatedAt}
	if t := u.Second; t != nil {
		cols = append(cols, "second_auction_date", "second_auction_time", "second_auction_base_text", "second_auction_base")
		args = append(args, t.Date, t.Time, t.BaseText, t.Base)
	}
	if t := u.Third; t != nil {
		cols = append(cols, "third_auction_date", "third_auction_time", "third_auction_base_text", "third_auction_base")
		args = append(args, t.Date, t.Time, t.BaseText, t.Base)
	}
	return cols, args
}

func failureArgs(f model.FailedRecord) []any {
	return []any{f.ID, f.BulletinNumber, f.Reference, f.Matricula, f.ErrorKind, f.Error, f.RawText, f.CreatedAt}
}

func scanFailure(row rowScanner) (model.FailedRecord, error) {
	var f model.FailedRecord
	err := row.Scan(&f.ID, &f.BulletinNumber, &f.Reference, &f.Matricula, &f.ErrorKind, &f.Error, &f.RawText, &f.CreatedAt)
	return f, err
}

const summaryColumns = `id, bulletin_number, file_name, total_entries, total_properties, deduplicated, inserted, updated, failed, status, notes, processed_by, processed_at`

func summaryArgs(s *model.RunSummary) []any {
	return []any{
		s.ID, s.BulletinNumber, s.FileName, s.TotalEntries, s.TotalProperties, s.Deduplicated,
		s.Inserted, s.Updated, s.Failed, string(s.Status), s.Notes, s.ProcessedBy, s.ProcessedAt,
	}
}

func scanSummary(row rowScanner) (model.RunSummary, error) {
	var s model.RunSummary
	var status string
	err := row.Scan(
		&s.ID, &s.BulletinNumber, &s.FileName, &s.TotalEntries, &s.TotalProperties, &s.Deduplicated,
		&s.Inserted, &s.Updated, &s.Failed, &status, &s.Notes, &s.ProcessedBy, &s.ProcessedAt,
	)
	s.Status = model.RunOutcome(status)
	return s, err
}

// statsQuery is portable between Postgres and SQLite.
const statsQuery = `SELECT
	count(*),
	COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN status = 'active' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN status = 'segunda_subasta' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN status = 'tercera_subasta' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(CASE WHEN status = 'finalizado' THEN 1 ELSE 0 END), 0)
FROM remates`

const provinceStatsQuery = `SELECT provincia, count(*) FROM remates
WHERE is_active AND provincia IS NOT NULL
GROUP BY provincia ORDER BY provincia`

func scanStats(row rowScanner) (*model.Stats, error) {
	st := &model.Stats{ByProvince: map[string]int{}}
	err := row.Scan(&st.Total, &st.Active, &st.FirstAuction, &st.SecondAuction, &st.ThirdAuction, &st.Finalized)
	return st, err
}
