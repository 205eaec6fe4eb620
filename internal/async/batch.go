package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/pipeline"
)

// Stats summarises a batch run.
type Stats struct {
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Degraded  int           `json:"degraded"`
	Failed    int           `json:"failed"`
	Cached    int           `json:"cached"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

func (s *Stats) add(o pipeline.Outcome) {
	s.Total++
	switch o.Status {
	case constants.DocumentSucceeded:
		s.Succeeded++
	case constants.DocumentDegraded:
		s.Degraded++
	default:
		s.Failed++
	}
	if o.Cached {
		s.Cached++
	}
}

type BatchOptions struct {
	Workers int
	// Timeout bounds each document; zero means no per-document deadline.
	Timeout time.Duration
	Persist bool
}

// RunBatch processes docs on a bounded worker pool. Outcomes are returned in
// input order, and one document failing never stops the others.
func RunBatch(ctx context.Context, proc Processor, docs []pipeline.Document, opts BatchOptions, logger *slog.Logger) ([]pipeline.Outcome, Stats) {
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(docs) {
		workers = len(docs)
	}

	start := time.Now()
	outcomes := make([]pipeline.Outcome, len(docs))
	idx := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				outcomes[i] = runOne(ctx, proc, docs[i], opts)
			}
		}()
	}

feed:
	for i := range docs {
		select {
		case idx <- i:
		case <-ctx.Done():
			for j := i; j < len(docs); j++ {
				outcomes[j] = pipeline.Outcome{Source: docs[j].Source, Status: constants.DocumentFailed, Err: ctx.Err()}
			}
			break feed
		}
	}
	close(idx)
	wg.Wait()

	var stats Stats
	for _, o := range outcomes {
		stats.add(o)
	}
	stats.Elapsed = time.Since(start)
	logger.Info("batch complete",
		"total", stats.Total,
		"succeeded", stats.Succeeded,
		"degraded", stats.Degraded,
		"failed", stats.Failed,
		"cached", stats.Cached,
		"elapsed", stats.Elapsed,
	)
	return outcomes, stats
}

func runOne(ctx context.Context, proc Processor, doc pipeline.Document, opts BatchOptions) pipeline.Outcome {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	out, err := proc.Process(ctx, doc, opts.Persist)
	if err != nil && out.Err == nil {
		out.Err = err
		out.Status = constants.DocumentFailed
	}
	if out.Source == "" {
		out.Source = doc.Source
	}
	return out
}
