// Package repository persists extracted AWB records. SQLite (modernc, pure Go)
// is the default store; Postgres through pgx is used when DB_DRIVER=postgres.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/entity"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Platform constants.Platform
	From     *time.Time // inclusive, compared on ship_date
	To       *time.Time // inclusive
	Limit    int
	Offset   int
}

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return defaultListLimit
	case f.Limit > maxListLimit:
		return maxListLimit
	default:
		return f.Limit
	}
}

// RecordRepository stores records keyed by their deterministic ID. Saving the
// same label twice updates the existing row.
type RecordRepository interface {
	Save(ctx context.Context, fingerprint string, rec entity.AWBRecord) error
	SaveBatch(ctx context.Context, items []Item) error
	Get(ctx context.Context, id uuid.UUID) (*entity.StoredRecord, error)
	List(ctx context.Context, filter Filter) ([]*entity.StoredRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

// Item is one record to persist in a batch.
type Item struct {
	Fingerprint string
	Record      entity.AWBRecord
}

// Supported values of Config.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open selects the backend for cfg.Driver.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (RecordRepository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch strings.ToLower(cfg.Driver) {
	case "", DriverSQLite:
		return OpenSQLite(ctx, cfg.DSN, logger)
	case DriverPostgres, "postgresql":
		pool, err := OpenPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewPostgresRecordRepository(ctx, pool, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// recordColumns is the column order used by every INSERT and SELECT.
var recordColumns = []string{
	"id", "fingerprint", "platform", "order_id", "ship_date", "ship_time",
	"tracking_number", "courier", "payment_status", "cod_amount",
	"customer_name", "customer_phone", "customer_address",
	"product_name", "sku", "quantity", "seller",
	"created_at", "updated_at",
}

// upsertAssignments excludes id, fingerprint and created_at.
func upsertAssignments() string {
	var parts []string
	for _, c := range recordColumns {
		switch c {
		case "id", "fingerprint", "created_at":
			continue
		}
		parts = append(parts, c+" = excluded."+c)
	}
	return strings.Join(parts, ", ")
}

func recordArgs(fingerprint string, rec entity.AWBRecord, now any) []any {
	return []any{
		rec.ID.String(), fingerprint, string(rec.Platform), rec.OrderID, rec.ShipDate, rec.ShipTime,
		rec.TrackingNumber, rec.Courier, string(rec.PaymentStatus), rec.CODAmount,
		rec.CustomerName, rec.CustomerPhone, rec.CustomerAddress,
		rec.ProductName, rec.SKU, rec.Quantity, rec.Seller,
		now, now,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads recordColumns except the two timestamps, which the caller
// handles because the drivers return them differently.
func scanRecord(row rowScanner, created, updated any) (*entity.StoredRecord, error) {
	var (
		out      entity.StoredRecord
		id       string
		platform string
		payment  string
	)
	r := &out.AWBRecord
	err := row.Scan(
		&id, &out.Fingerprint, &platform, &r.OrderID, &r.ShipDate, &r.ShipTime,
		&r.TrackingNumber, &r.Courier, &payment, &r.CODAmount,
		&r.CustomerName, &r.CustomerPhone, &r.CustomerAddress,
		&r.ProductName, &r.SKU, &r.Quantity, &r.Seller,
		created, updated,
	)
	if err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse record id %q: %w", id, err)
	}
	r.ID = parsed
	r.Platform = constants.Platform(platform)
	r.PaymentStatus = constants.PaymentStatus(payment)
	return &out, nil
}

// listWhere builds the WHERE clause for f. ph renders the n-th placeholder.
func listWhere(f Filter, ph func(n int) string) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Platform != "" {
		args = append(args, string(f.Platform))
		conds = append(conds, "platform = "+ph(len(args)))
	}
	if f.From != nil {
		args = append(args, f.From.Format(time.DateOnly))
		conds = append(conds, "ship_date >= "+ph(len(args)))
	}
	if f.To != nil {
		args = append(args, f.To.Format(time.DateOnly))
		conds = append(conds, "ship_date <= "+ph(len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
