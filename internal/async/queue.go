package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/awb-extractor/internal/pipeline"
)

// ErrQueueClosed is returned by Enqueue after Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one label document waiting for a worker.
type Job struct {
	Document    pipeline.Document
	Persist     bool
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Processor is the unit of work the workers run.
type Processor interface {
	Process(ctx context.Context, doc pipeline.Document, persist bool) (pipeline.Outcome, error)
}
