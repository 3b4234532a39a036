package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"medgate/internal/platform/metrics"
	"medgate/internal/principal"
)

// Publisher forwards recorded events to operational telemetry (e.g. a Kafka
// ops topic). Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Recorder is the write path the orchestrator uses. A failed audit write must
// never fail the surrounding login request: failures are logged and counted,
// nothing is surfaced to the caller.
type Recorder struct {
	store     Store
	logger    *slog.Logger
	metrics   *metrics.Metrics
	publisher Publisher
}

// RecorderOption configures optional Recorder collaborators.
type RecorderOption func(*Recorder)

func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = logger }
}

func WithMetrics(m *metrics.Metrics) RecorderOption {
	return func(r *Recorder) { r.metrics = m }
}

func WithPublisher(p Publisher) RecorderOption {
	return func(r *Recorder) { r.publisher = p }
}

// NewRecorder builds a Recorder around the given store.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: store}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Record appends one event for a terminal pipeline decision. It returns
// nothing: the decision has already been made, and the caller must not
// branch on whether the write stuck.
func (r *Recorder) Record(ctx context.Context, principalID *uuid.UUID, kind Kind, detail string, loc *principal.GeoPoint) {
	event := NewEvent(principalID, kind, detail, loc)

	if err := r.store.Append(ctx, event); err != nil {
		r.logger.ErrorContext(ctx, "audit write failed",
			"error", err,
			"kind", string(kind),
		)
		if r.metrics != nil {
			r.metrics.IncrementAuditWriteErrors()
		}
	}

	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "audit publish failed",
			"error", err,
			"kind", string(kind),
		)
	}
}
