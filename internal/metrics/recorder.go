package metrics

import "time"

// OutcomeLabel enumerates render outcome categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeInvalid OutcomeLabel = "invalid"
	OutcomeFailed  OutcomeLabel = "failed"
)

// DeliveryLabel enumerates the primary delivery channels.
type DeliveryLabel string

const (
	DeliveryStored DeliveryLabel = "stored"
	DeliveryInline DeliveryLabel = "inline"
)

// Recorder defines observability hooks for render and storage metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe for nil receivers when using the NoopRecorder (allowing
// optional injection).
type Recorder interface {
	ObserveRenderDuration(d time.Duration)
	IncRenderOutcome(outcome OutcomeLabel)
	IncDelivery(mode DeliveryLabel)
	IncEmailResult(success bool)
	IncStoreWrite(deduplicated bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveRenderDuration(time.Duration) {}
func (NoopRecorder) IncRenderOutcome(OutcomeLabel)       {}
func (NoopRecorder) IncDelivery(DeliveryLabel)           {}
func (NoopRecorder) IncEmailResult(bool)                 {}
func (NoopRecorder) IncStoreWrite(bool)                  {}
