package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/awb-extractor/internal/common"
	"github.com/joseph-ayodele/awb-extractor/internal/entity"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS awb_records (
	id               UUID PRIMARY KEY,
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
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_awb_records_platform_ship_date ON awb_records (platform, ship_date);
`

type postgresRecordRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresRecordRepository bootstraps the table and returns the repository.
// The repository owns pool and closes it on Close.
func NewPostgresRecordRepository(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (RecordRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &postgresRecordRepository{pool: pool, logger: logger, now: time.Now}, nil
}

func pgPlaceholder(n int) string { return "$" + strconv.Itoa(n) }

func postgresUpsert() string {
	ph := make([]string, len(recordColumns))
	for i := range recordColumns {
		ph[i] = pgPlaceholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO awb_records (%s) VALUES (%s) ON CONFLICT (id) DO UPDATE SET %s",
		strings.Join(recordColumns, ", "), strings.Join(ph, ", "), upsertAssignments())
}

func (r *postgresRecordRepository) Save(ctx context.Context, fingerprint string, rec entity.AWBRecord) error {
	if _, err := r.pool.Exec(ctx, postgresUpsert(), recordArgs(fingerprint, rec, r.now().UTC())...); err != nil {
		r.logger.Error("failed to save record", "record_id", rec.ID, "error", err)
		return fmt.Errorf("%w: save record: %w", common.ErrDatabase, err)
	}
	return nil
}

func (r *postgresRecordRepository) SaveBatch(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	now := r.now().UTC()
	q := postgresUpsert()
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(q, recordArgs(it.Fingerprint, it.Record, now)...)
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		r.logger.Error("failed to save record batch", "count", len(items), "error", err)
		return fmt.Errorf("%w: save batch: %w", common.ErrDatabase, err)
	}
	return nil
}

func (r *postgresRecordRepository) Get(ctx context.Context, id uuid.UUID) (*entity.StoredRecord, error) {
	q := fmt.Sprintf("SELECT %s FROM awb_records WHERE id = $1", strings.Join(recordColumns, ", "))
	var created, updated time.Time
	rec, err := scanRecord(r.pool.QueryRow(ctx, q, id.String()), &created, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get record: %w", common.ErrDatabase, err)
	}
	rec.CreatedAt, rec.UpdatedAt = created, updated
	return rec, nil
}

func (r *postgresRecordRepository) List(ctx context.Context, filter Filter) ([]*entity.StoredRecord, error) {
	where, args := listWhere(filter, pgPlaceholder)
	args = append(args, filter.limit(), max(filter.Offset, 0))
	q := fmt.Sprintf("SELECT %s FROM awb_records%s ORDER BY ship_date DESC, ship_time DESC, id LIMIT %s OFFSET %s",
		strings.Join(recordColumns, ", "), where, pgPlaceholder(len(args)-1), pgPlaceholder(len(args)))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list records: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.StoredRecord
	for rows.Next() {
		var created, updated time.Time
		rec, err := scanRecord(rows, &created, &updated)
		if err != nil {
			return nil, fmt.Errorf("%w: scan record: %w", common.ErrDatabase, err)
		}
		rec.CreatedAt, rec.UpdatedAt = created, updated
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list records: %w", common.ErrDatabase, err)
	}
	return out, nil
}

func (r *postgresRecordRepository) Ping(ctx context.Context) error { return r.pool.Ping(ctx) }

func (r *postgresRecordRepository) Close() error {
	r.logger.Info("closing database connections")
	r.pool.Close()
	return nil
}
