package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/remates-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS remates (
	matricula                TEXT PRIMARY KEY,
	finca_id                 TEXT,
	provincia                TEXT,
	canton                   TEXT,
	distrito                 TEXT,
	cadastral_code           TEXT,
	naturaleza               TEXT,
	colindancias             TEXT,
	area_text                TEXT,
	area_numeric             REAL,
	base_price_text          TEXT,
	base_price_numeric       REAL,
	currency                 TEXT,
	first_auction_date       TEXT,
	first_auction_time       TEXT,
	second_auction_date      TEXT,
	second_auction_time      TEXT,
	second_auction_base_text TEXT,
	second_auction_base      REAL,
	third_auction_date       TEXT,
	third_auction_time       TEXT,
	third_auction_base_text  TEXT,
	third_auction_base       REAL,
	case_type                TEXT,
	case_number              TEXT,
	plaintiff                TEXT,
	defendant                TEXT,
	court                    TEXT,
	judge                    TEXT,
	raw_text                 TEXT NOT NULL,
	bulletin_number          TEXT,
	status                   TEXT NOT NULL DEFAULT 'active',
	is_active                BOOLEAN NOT NULL DEFAULT 1,
	extraction_date          DATETIME,
	created_at               DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at               DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_remates_finca_id ON remates(finca_id);
CREATE INDEX IF NOT EXISTS idx_remates_status ON remates(status);

CREATE TABLE IF NOT EXISTS run_summaries (
	id               TEXT PRIMARY KEY,
	bulletin_number  TEXT NOT NULL DEFAULT '',
	file_name        TEXT NOT NULL DEFAULT '',
	total_entries    INTEGER NOT NULL DEFAULT 0,
	total_properties INTEGER NOT NULL DEFAULT 0,
	deduplicated     INTEGER NOT NULL DEFAULT 0,
	inserted         INTEGER NOT NULL DEFAULT 0,
	updated          INTEGER NOT NULL DEFAULT 0,
	failed           INTEGER NOT NULL DEFAULT 0,
	status           TEXT NOT NULL,
	notes            TEXT NOT NULL DEFAULT '',
	processed_by     TEXT NOT NULL DEFAULT '',
	processed_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_run_summaries_processed_at ON run_summaries(processed_at);

CREATE TABLE IF NOT EXISTS failed_remates (
	id              TEXT PRIMARY KEY,
	bulletin_number TEXT NOT NULL DEFAULT '',
	reference       TEXT NOT NULL DEFAULT '',
	matricula       TEXT NOT NULL DEFAULT '',
	error_kind      TEXT NOT NULL,
	error           TEXT NOT NULL,
	raw_text        TEXT NOT NULL,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func qmarks(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func (s *SQLiteStore) FindExisting(ctx context.Context, matriculas []string) (map[string]*model.Remate, error) {
	out := make(map[string]*model.Remate)
	if len(matriculas) == 0 {
		return out, nil
	}

	args := make([]any, len(matriculas))
	for i, m := range matriculas {
		args[i] = m
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+remateSelectList+` FROM remates WHERE matricula IN (`+qmarks(len(args))+`)`,
		args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: find existing")
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		r, err := scanRemate(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan remate")
		}
		out[r.Matricula] = r
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate remates")
}

func (s *SQLiteStore) GetByMatricula(ctx context.Context, matricula string) (*model.Remate, error) {
	r, err := scanRemate(s.db.QueryRowContext(ctx,
		`SELECT `+remateSelectList+` FROM remates WHERE matricula = ?`,
		matricula,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get remate %s", matricula)
	}
	return r, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, r *model.Remate) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO remates (`+remateSelectList+`) VALUES (`+qmarks(len(remateColumns))+`)`,
		remateArgs(r)...,
	)
	return eris.Wrapf(err, "sqlite: insert remate %s", r.Matricula)
}

func (s *SQLiteStore) Update(ctx context.Context, matricula string, u model.RemateUpdate) error {
	cols, args := updateAssignments(u)
	args = append(args, matricula)

	res, err := s.db.ExecContext(ctx,
		`UPDATE remates SET `+strings.Join(cols, " = ?, ")+` = ? WHERE matricula = ?`,
		args...,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update remate %s", matricula)
	}
	return checkRowsAffected(res, "remate", matricula)
}

func (s *SQLiteStore) Stats(ctx context.Context) (*model.Stats, error) {
	st, err := scanStats(s.db.QueryRowContext(ctx, statsQuery))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats")
	}

	rows, err := s.db.QueryContext(ctx, provinceStatsQuery)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: stats by province")
	}
	defer rows.Close() //nolint:errcheck
	for rows.Next() {
		var prov string
		var n int
		if err := rows.Scan(&prov, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan province stats")
		}
		st.ByProvince[prov] = n
	}
	return st, eris.Wrap(rows.Err(), "sqlite: iterate province stats")
}

func (s *SQLiteStore) CreateRunSummary(ctx context.Context, sum *model.RunSummary) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_summaries (`+summaryColumns+`) VALUES (`+qmarks(13)+`)`,
		summaryArgs(sum)...,
	)
	return eris.Wrap(err, "sqlite: insert run summary")
}

func (s *SQLiteStore) ListRunSummaries(ctx context.Context, limit, offset int) ([]model.RunSummary, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM run_summaries`).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: count run summaries")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+summaryColumns+` FROM run_summaries ORDER BY processed_at DESC LIMIT ? OFFSET ?`,
		listLimit(limit), max(offset, 0),
	)
	if err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: list run summaries")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.RunSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, 0, eris.Wrap(err, "sqlite: scan run summary")
		}
		out = append(out, sum)
	}
	return out, total, eris.Wrap(rows.Err(), "sqlite: iterate run summaries")
}

// AddFailures writes all dead letters in one transaction.
func (s *SQLiteStore) AddFailures(ctx context.Context, failures []model.FailedRecord) error {
	if len(failures) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin failures tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO failed_remates (`+strings.Join(failureColumns, ", ")+`) VALUES (`+qmarks(len(failureColumns))+`)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare failure insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, f := range failures {
		if _, err := stmt.ExecContext(ctx, failureArgs(f)...); err != nil {
			return eris.Wrapf(err, "sqlite: insert failure %s", f.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit failures")
}

func (s *SQLiteStore) ListFailures(ctx context.Context, limit int) ([]model.FailedRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+strings.Join(failureColumns, ", ")+` FROM failed_remates ORDER BY created_at DESC LIMIT ?`,
		listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list failures")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.FailedRecord
	for rows.Next() {
		f, err := scanFailure(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan failure")
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate failures")
}

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: %s not found: %s", entity, id)
	}
	return nil
}
