// Package app wires the extraction components from configuration.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/awb-extractor/internal/cache"
	"github.com/joseph-ayodele/awb-extractor/internal/common"
	"github.com/joseph-ayodele/awb-extractor/internal/export"
	"github.com/joseph-ayodele/awb-extractor/internal/extract"
	"github.com/joseph-ayodele/awb-extractor/internal/metrics"
	"github.com/joseph-ayodele/awb-extractor/internal/pipeline"
	"github.com/joseph-ayodele/awb-extractor/internal/repository"
	"github.com/joseph-ayodele/awb-extractor/internal/schema"
)

// Options adjust what New opens.
type Options struct {
	// NoStore skips the database; records can still be extracted but not saved.
	NoStore bool
	// InMemory replaces the configured database with a private SQLite memory store.
	InMemory bool
}

// App holds the wired components. Repo and Export are nil when NoStore is set.
type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	Metrics   *metrics.Registry
	Assembler *extract.Assembler
	Processor *pipeline.Processor
	Repo      repository.RecordRepository
	Cache     cache.RecordCache
	Export    *export.Service
}

// New builds the component graph. The caller must Close the result.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger, opts Options) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.NewRegistry(),
		Cache:   cache.Noop{},
	}

	a.Assembler = extract.NewAssembler(
		extract.WithLogger(logger),
		extract.WithLocation(cfg.Location()),
		extract.WithOrderYearPrefixes(cfg.Extraction.OrderYearPrefixes),
	)

	validator, err := schema.NewRecordValidator()
	if err != nil {
		return nil, common.WrapError(err, "compile record schema")
	}
	procOpts := []pipeline.Option{
		pipeline.WithMetrics(a.Metrics),
		pipeline.WithSchemaValidator(validator),
	}

	if !opts.NoStore {
		dbCfg := repository.Config{
			Driver:           cfg.Database.Driver,
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}
		if opts.InMemory {
			dbCfg.Driver, dbCfg.DSN = repository.DriverSQLite, ":memory:"
		}
		repo, err := repository.Open(ctx, dbCfg, logger)
		if err != nil {
			return nil, err
		}
		a.Repo = repo
		a.Export = export.NewService(repo, cfg.Export.SheetName, logger)
		procOpts = append(procOpts, pipeline.WithRepository(repo))
	}

	if cfg.Cache.Addr != "" {
		c, err := cache.Dial(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.TTL, logger)
		if err != nil {
			// The cache is an optimisation; run without it.
			logger.Warn("cache unavailable, continuing without it", "addr", cfg.Cache.Addr, "error", err)
		} else {
			a.Cache = c
		}
	}
	procOpts = append(procOpts, pipeline.WithCache(a.Cache))

	a.Processor = pipeline.NewProcessor(logger, a.Assembler, procOpts...)
	return a, nil
}

// Close releases the store and cache connections.
func (a *App) Close() error {
	var errs []error
	if a.Repo != nil {
		errs = append(errs, a.Repo.Close())
	}
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.Logger.Error("closing resources", "error", err)
		return err
	}
	return nil
}
