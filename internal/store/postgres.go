package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/remates-cli/internal/db"
	"github.com/sells-group/remates-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres connects a pool and pings it.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			pgxCfg.MaxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			pgxCfg.MinConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
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
	area_numeric             DOUBLE PRECISION,
	base_price_text          TEXT,
	base_price_numeric       DOUBLE PRECISION,
	currency                 TEXT,
	first_auction_date       TEXT,
	first_auction_time       TEXT,
	second_auction_date      TEXT,
	second_auction_time      TEXT,
	second_auction_base_text TEXT,
	second_auction_base      DOUBLE PRECISION,
	third_auction_date       TEXT,
	third_auction_time       TEXT,
	third_auction_base_text  TEXT,
	third_auction_base       DOUBLE PRECISION,
	case_type                TEXT,
	case_number              TEXT,
	plaintiff                TEXT,
	defendant                TEXT,
	court                    TEXT,
	judge                    TEXT,
	raw_text                 TEXT NOT NULL,
	bulletin_number          TEXT,
	status                   TEXT NOT NULL DEFAULT 'active',
	is_active                BOOLEAN NOT NULL DEFAULT true,
	extraction_date          TIMESTAMPTZ,
	created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at               TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_remates_finca_id ON remates(finca_id);
CREATE INDEX IF NOT EXISTS idx_remates_status ON remates(status);
CREATE INDEX IF NOT EXISTS idx_remates_provincia ON remates(provincia) WHERE is_active;

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
	processed_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_run_summaries_processed_at ON run_summaries(processed_at DESC);

CREATE TABLE IF NOT EXISTS failed_remates (
	id              TEXT PRIMARY KEY,
	bulletin_number TEXT NOT NULL DEFAULT '',
	reference       TEXT NOT NULL DEFAULT '',
	matricula       TEXT NOT NULL DEFAULT '',
	error_kind      TEXT NOT NULL,
	error           TEXT NOT NULL,
	raw_text        TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_failed_remates_created_at ON failed_remates(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// placeholders returns "$from, $from+1, ..." for n values.
func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ps, ", ")
}

func (s *PostgresStore) FindExisting(ctx context.Context, matriculas []string) (map[string]*model.Remate, error) {
	out := make(map[string]*model.Remate)
	if len(matriculas) == 0 {
		return out, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+remateSelectList+` FROM remates WHERE matricula = ANY($1)`,
		matriculas,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: find existing")
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanRemate(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan remate")
		}
		out[r.Matricula] = r
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate remates")
}

func (s *PostgresStore) GetByMatricula(ctx context.Context, matricula string) (*model.Remate, error) {
	r, err := scanRemate(s.pool.QueryRow(ctx,
		`SELECT `+remateSelectList+` FROM remates WHERE matricula = $1`,
		matricula,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get remate %s", matricula)
	}
	return r, nil
}

func (s *PostgresStore) Insert(ctx context.Context, r *model.Remate) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO remates (`+remateSelectList+`) VALUES (`+placeholders(1, len(remateColumns))+`)`,
		remateArgs(r)...,
	)
	return eris.Wrapf(err, "postgres: insert remate %s", r.Matricula)
}

func (s *PostgresStore) Update(ctx context.Context, matricula string, u model.RemateUpdate) error {
	cols, args := updateAssignments(u)
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+1)
	}
	args = append(args, matricula)

	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE remates SET %s WHERE matricula = $%d`, strings.Join(sets, ", "), len(args)),
		args...,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update remate %s", matricula)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: remate not found: %s", matricula)
	}
	return nil
}

func (s *PostgresStore) Stats(ctx context.Context) (*model.Stats, error) {
	st, err := scanStats(s.pool.QueryRow(ctx, statsQuery))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats")
	}

	rows, err := s.pool.Query(ctx, provinceStatsQuery)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: stats by province")
	}
	defer rows.Close()
	for rows.Next() {
		var prov string
		var n int
		if err := rows.Scan(&prov, &n); err != nil {
			return nil, eris.Wrap(err, "postgres: scan province stats")
		}
		st.ByProvince[prov] = n
	}
	return st, eris.Wrap(rows.Err(), "postgres: iterate province stats")
}

func (s *PostgresStore) CreateRunSummary(ctx context.Context, sum *model.RunSummary) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO run_summaries (`+summaryColumns+`) VALUES (`+placeholders(1, 13)+`)`,
		summaryArgs(sum)...,
	)
	return eris.Wrap(err, "postgres: insert run summary")
}

func (s *PostgresStore) ListRunSummaries(ctx context.Context, limit, offset int) ([]model.RunSummary, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM run_summaries`).Scan(&total); err != nil {
		return nil, 0, eris.Wrap(err, "postgres: count run summaries")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+summaryColumns+` FROM run_summaries ORDER BY processed_at DESC LIMIT $1 OFFSET $2`,
		listLimit(limit), max(offset, 0),
	)
	if err != nil {
		return nil, 0, eris.Wrap(err, "postgres: list run summaries")
	}
	defer rows.Close()

	var out []model.RunSummary
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, 0, eris.Wrap(err, "postgres: scan run summary")
		}
		out = append(out, sum)
	}
	return out, total, eris.Wrap(rows.Err(), "postgres: iterate run summaries")
}

// AddFailures loads dead letters with COPY.
func (s *PostgresStore) AddFailures(ctx context.Context, failures []model.FailedRecord) error {
	rows := make([][]any, len(failures))
	for i, f := range failures {
		rows[i] = failureArgs(f)
	}
	_, err := db.CopyFrom(ctx, s.pool, "failed_remates", failureColumns, rows)
	return eris.Wrap(err, "postgres: add failures")
}

func (s *PostgresStore) ListFailures(ctx context.Context, limit int) ([]model.FailedRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+strings.Join(failureColumns, ", ")+` FROM failed_remates ORDER BY created_at DESC LIMIT $1`,
		listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list failures")
	}
	defer rows.Close()

	var out []model.FailedRecord
	for rows.Next() {
		f, err := scanFailure(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan failure")
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate failures")
}
