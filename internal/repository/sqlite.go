package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/awb-extractor/internal/common"
	"github.com/joseph-ayodele/awb-extractor/internal/entity"
)

type sqliteRecordRepository struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// OpenSQLite opens dsn with the pure-Go driver and bootstraps the schema.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (RecordRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database", "driver", "sqlite")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer avoids SQLITE_BUSY under the batch worker pool
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := InitSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("successfully connected to database")
	return &sqliteRecordRepository{db: db, logger: logger, now: time.Now}, nil
}

// InitSchema creates the awb_records table and its indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRecordsQuery := `
	CREATE TABLE IF NOT EXISTS awb_records (
		id               TEXT PRIMARY KEY,
		fingerprint      TEXT NOT NULL UNIQUE,
		platform         TEXT NOT NULL,
		order_id         TEXT NOT NULL,
		ship_date        TEXT NOT NULL,
		ship_time        TEXT NOT NULL,
		tracking_number  TEXT NOT NULL,
		courier          TEXT NOT NULL,
		payment_status   TEXT NOT NULL,
		cod_amount       TEXT NOT NULL,
		customer_name    TEXT NOT NULL,
		customer_phone   TEXT NOT NULL,
		customer_address TEXT NOT NULL,
		product_name     TEXT NOT NULL,
		sku              TEXT NOT NULL,
		quantity         INTEGER NOT NULL CHECK (quantity > 0),
		seller           TEXT NOT NULL,
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_awb_records_platform_ship_date
	ON awb_records(platform, ship_date);
	`

	statements := []string{
		createRecordsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

func sqlitePlaceholder(int) string { return "?" }

func sqliteUpsert() string {
	ph := strings.TrimSuffix(strings.Repeat("?, ", len(recordColumns)), ", ")
	return fmt.Sprintf("INSERT INTO awb_records (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		strings.Join(recordColumns, ", "), ph, upsertAssignments())
}

func (r *sqliteRecordRepository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339Nano)
}

func (r *sqliteRecordRepository) Save(ctx context.Context, fingerprint string, rec entity.AWBRecord) error {
	if _, err := r.db.ExecContext(ctx, sqliteUpsert(), recordArgs(fingerprint, rec, r.timestamp())...); err != nil {
		r.logger.Error("failed to save record", "record_id", rec.ID, "error", err)
		return fmt.Errorf("%w: save record: %w", common.ErrDatabase, err)
	}
	return nil
}

func (r *sqliteRecordRepository) SaveBatch(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: save batch: begin tx: %w", common.ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, sqliteUpsert())
	if err != nil {
		return fmt.Errorf("%w: save batch: prepare: %w", common.ErrDatabase, err)
	}
	defer stmt.Close()

	now := r.timestamp()
	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, recordArgs(it.Fingerprint, it.Record, now)...); err != nil {
			r.logger.Error("failed to save record batch", "record_id", it.Record.ID, "error", err)
			return fmt.Errorf("%w: save batch record_id=%s: %w", common.ErrDatabase, it.Record.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: save batch: commit: %w", common.ErrDatabase, err)
	}
	return nil
}

func (r *sqliteRecordRepository) Get(ctx context.Context, id uuid.UUID) (*entity.StoredRecord, error) {
	q := fmt.Sprintf("SELECT %s FROM awb_records WHERE id = ?", strings.Join(recordColumns, ", "))
	var created, updated string
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, id.String()), &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get record: %w", common.ErrDatabase, err)
	}
	if err := setTimestamps(rec, created, updated); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *sqliteRecordRepository) List(ctx context.Context, filter Filter) ([]*entity.StoredRecord, error) {
	where, args := listWhere(filter, sqlitePlaceholder)
	args = append(args, filter.limit(), max(filter.Offset, 0))
	q := fmt.Sprintf("SELECT %s FROM awb_records%s ORDER BY ship_date DESC, ship_time DESC, id LIMIT ? OFFSET ?",
		strings.Join(recordColumns, ", "), where)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list records: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	out := make([]*entity.StoredRecord, 0, 16)
	for rows.Next() {
		var created, updated string
		rec, err := scanRecord(rows, &created, &updated)
		if err != nil {
			return nil, fmt.Errorf("%w: scan record: %w", common.ErrDatabase, err)
		}
		if err := setTimestamps(rec, created, updated); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list records: row iteration: %w", common.ErrDatabase, err)
	}
	return out, nil
}

func setTimestamps(rec *entity.StoredRecord, created, updated string) error {
	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return fmt.Errorf("%w: parse created_at: %w", common.ErrDatabase, err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return fmt.Errorf("%w: parse updated_at: %w", common.ErrDatabase, err)
	}
	return nil
}

func (r *sqliteRecordRepository) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func (r *sqliteRecordRepository) Close() error {
	r.logger.Info("closing database connections")
	return r.db.Close()
}
