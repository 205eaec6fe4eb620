// Package pipeline runs one label document through cache lookup, rule-engine
// assembly, schema validation and persistence.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/cache"
	"github.com/joseph-ayodele/awb-extractor/internal/common"
	"github.com/joseph-ayodele/awb-extractor/internal/extract"
	"github.com/joseph-ayodele/awb-extractor/internal/metrics"
	"github.com/joseph-ayodele/awb-extractor/internal/normalize"
	"github.com/joseph-ayodele/awb-extractor/internal/repository"
	"github.com/joseph-ayodele/awb-extractor/internal/schema"
)

// Document is one label text and where it came from (file path, request id).
type Document struct {
	Source string
	Text   string
}

// Outcome is the processing result for one Document.
type Outcome struct {
	Source    string
	Result    extract.Result
	Status    constants.DocumentStatus
	Cached    bool
	Persisted bool
	Err       error
}

// Processor coordinates the stages for a single document. Only the assembler
// is required; the other collaborators are optional.
type Processor struct {
	logger    *slog.Logger
	assembler *extract.Assembler
	validator *schema.Validator
	repo      repository.RecordRepository
	cache     cache.RecordCache
	metrics   *metrics.Registry
}

type Option func(*Processor)

func WithRepository(repo repository.RecordRepository) Option {
	return func(p *Processor) { p.repo = repo }
}

func WithCache(c cache.RecordCache) Option {
	return func(p *Processor) {
		if c != nil {
			p.cache = c
		}
	}
}

func WithMetrics(m *metrics.Registry) Option {
	return func(p *Processor) { p.metrics = m }
}

func WithSchemaValidator(v *schema.Validator) Option {
	return func(p *Processor) { p.validator = v }
}

func NewProcessor(logger *slog.Logger, assembler *extract.Assembler, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:    logger,
		assembler: assembler,
		cache:     cache.Noop{},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// HasRepository reports whether persistence is configured.
func (p *Processor) HasRepository() bool { return p.repo != nil }

// Process assembles doc. When persist is set and a repository is configured
// the record is upserted. The returned error is also stored in Outcome.Err.
func (p *Processor) Process(ctx context.Context, doc Document, persist bool) (Outcome, error) {
	out := Outcome{Source: doc.Source, Status: constants.DocumentFailed}
	logger := common.LoggerFromContext(ctx, p.logger).With("source", doc.Source)

	if err := ctx.Err(); err != nil {
		out.Err = err
		return out, err
	}

	norm := normalize.Text(doc.Text)
	fingerprint := normalize.Fingerprint(norm)
	start := time.Now()

	res, cached := p.lookup(ctx, logger, fingerprint)
	if !cached {
		var err error
		res, err = p.assembler.AssembleDetailed(doc.Text)
		if err != nil {
			p.observe(constants.PlatformUnknown, constants.DocumentFailed, start)
			if common.IsFatal(err) {
				logger.Warn("pipeline.assemble.rejected", "error", err)
			} else {
				logger.Error("pipeline.assemble.failed", "error", err)
			}
			out.Err = err
			return out, err
		}
		if err := p.validate(res); err != nil {
			p.observe(res.Record.Platform, constants.DocumentFailed, start)
			logger.Error("pipeline.schema.failed", "record_id", res.Record.ID, "error", err)
			out.Err = err
			return out, err
		}
		p.store(ctx, logger, res)
	}

	out.Result = res
	out.Cached = cached
	out.Status = res.Status()
	p.observe(res.Record.Platform, out.Status, start)
	if p.metrics != nil && !cached {
		for _, f := range res.DefaultedFields() {
			p.metrics.FieldDefaults.WithLabelValues(string(res.Record.Platform), string(f)).Inc()
		}
	}

	if persist && p.repo != nil {
		if err := p.repo.Save(ctx, res.Fingerprint, res.Record); err != nil {
			logger.Error("pipeline.persist.failed", "record_id", res.Record.ID, "error", err)
			out.Err = err
			return out, err
		}
		out.Persisted = true
		if p.metrics != nil {
			p.metrics.RecordsPersisted.Inc()
		}
	}

	logger.Info("pipeline.process.ok",
		"record_id", res.Record.ID,
		"platform", res.Record.Platform,
		"status", out.Status,
		"cached", cached,
		"persisted", out.Persisted,
	)
	return out, nil
}

// Persist saves already processed outcomes in one transaction.
func (p *Processor) Persist(ctx context.Context, outcomes []Outcome) (int, error) {
	if p.repo == nil {
		return 0, nil
	}
	items := make([]repository.Item, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Err != nil || o.Persisted {
			continue
		}
		items = append(items, repository.Item{Fingerprint: o.Result.Fingerprint, Record: o.Result.Record})
	}
	if err := p.repo.SaveBatch(ctx, items); err != nil {
		return 0, err
	}
	if p.metrics != nil {
		p.metrics.RecordsPersisted.Add(float64(len(items)))
	}
	return len(items), nil
}

// lookup rebuilds a Result from the cache. Rules and Warnings are not cached, so a
// hit carries only the record and its defaulted fields.
func (p *Processor) lookup(ctx context.Context, logger *slog.Logger, fingerprint string) (extract.Result, bool) {
	entry, ok, err := p.cache.Get(ctx, fingerprint)
	if err != nil {
		logger.Warn("pipeline.cache.get.failed", "error", err)
		ok = false
	}
	if p.metrics != nil {
		if ok {
			p.metrics.CacheHits.Inc()
		} else {
			p.metrics.CacheMisses.Inc()
		}
	}
	if !ok {
		return extract.Result{}, false
	}
	res := extract.Result{
		Record:      entry.Record,
		Fingerprint: fingerprint,
		Defaulted:   make(map[constants.Field]bool, len(entry.Defaulted)),
	}
	for _, f := range entry.Defaulted {
		res.Defaulted[f] = true
	}
	return res, true
}

// store caches res unless its ship date was defaulted: that value is the day of
// extraction and would go stale in the cache.
func (p *Processor) store(ctx context.Context, logger *slog.Logger, res extract.Result) {
	if res.Defaulted[constants.FieldShipDate] {
		return
	}
	entry := cache.Entry{Record: res.Record, Defaulted: res.DefaultedFields()}
	if err := p.cache.Set(ctx, res.Fingerprint, entry); err != nil {
		logger.Warn("pipeline.cache.set.failed", "error", err)
	}
}

func (p *Processor) validate(res extract.Result) error {
	if p.validator == nil {
		return nil
	}
	if err := p.validator.ValidateValue(res.Record); err != nil {
		return common.NewAppError("INTERNAL", "record does not match schema", fmt.Errorf("%w: %w", common.ErrInternal, err))
	}
	return nil
}

func (p *Processor) observe(platform constants.Platform, status constants.DocumentStatus, start time.Time) {
	if p.metrics == nil {
		return
	}
	if platform == "" {
		platform = constants.PlatformUnknown
	}
	p.metrics.Extractions.WithLabelValues(string(platform), strings.ToLower(string(status))).Inc()
	p.metrics.ExtractSec.Observe(time.Since(start).Seconds())
}
