// Package render orchestrates one rendering request end-to-end: input
// validation, formatter isolation, engine invocation, the optional email
// side channel, and the mutually exclusive primary delivery.
package render

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/rendergate/internal/engine"
	gerrors "git.home.luguber.info/inful/rendergate/internal/errors"
	"git.home.luguber.info/inful/rendergate/internal/events"
	"git.home.luguber.info/inful/rendergate/internal/formatter"
	"git.home.luguber.info/inful/rendergate/internal/history"
	"git.home.luguber.info/inful/rendergate/internal/logfields"
	"git.home.luguber.info/inful/rendergate/internal/mail"
	"git.home.luguber.info/inful/rendergate/internal/metrics"
	"git.home.luguber.info/inful/rendergate/internal/observability"
)

// ArtifactStore is the content-addressed persistence the pipeline
// delivers into when configured.
type ArtifactStore interface {
	Store(content []byte) (hash string, existed bool, err error)
}

// HistoryStore records completed renders.
type HistoryStore interface {
	Append(ctx context.Context, rec history.Record) error
}

// Config wires the pipeline's collaborators. Store, Mailer and History
// are optional (nil disables the capability); Metrics and Events default
// to no-ops.
type Config struct {
	Engine   engine.Engine
	Registry *formatter.Registry
	Store    ArtifactStore
	Mailer   mail.Mailer
	History  HistoryStore
	Events   events.Publisher
	Metrics  metrics.Recorder
	Timeout  time.Duration
}

// Pipeline handles render requests. The mutex serializes the formatter
// arm/render/disarm critical section across concurrent requests: the
// registry is one shared catalog, and two interleaved renders with
// different custom formatters would corrupt each other's set mid-render.
// Correctness over throughput.
type Pipeline struct {
	mu sync.Mutex

	engine   engine.Engine
	registry *formatter.Registry
	store    ArtifactStore
	mailer   mail.Mailer
	history  HistoryStore
	events   events.Publisher
	metrics  metrics.Recorder
	timeout  time.Duration
}

// New constructs a pipeline.
func New(cfg Config) *Pipeline {
	p := &Pipeline{
		engine:   cfg.Engine,
		registry: cfg.Registry,
		store:    cfg.Store,
		mailer:   cfg.Mailer,
		history:  cfg.History,
		events:   cfg.Events,
		metrics:  cfg.Metrics,
		timeout:  cfg.Timeout,
	}
	if p.events == nil {
		p.events = events.NoopPublisher{}
	}
	if p.metrics == nil {
		p.metrics = metrics.NoopRecorder{}
	}
	if p.timeout <= 0 {
		p.timeout = 30 * time.Second
	}
	return p
}

// Handle runs one render request to completion or failure.
func (p *Pipeline) Handle(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()
	ctx = observability.WithRequestID(ctx, req.RequestID)
	ctx = observability.WithTemplate(ctx, req.Filename)

	// Validation. Only the template itself is mandatory; every optional
	// field degrades instead of failing.
	if len(req.Template) == 0 {
		p.metrics.IncRenderOutcome(metrics.OutcomeInvalid)
		return nil, gerrors.MissingTemplate()
	}

	data := parseData(req.RawData)
	opts := resolveOptions(req.RawOptions, req.Filename)
	custom := parseFormatters(req.RawFormatters, p.registry.SnapshotDefaults())

	rendered, err := p.renderIsolated(ctx, req.Template, data, opts, custom)
	if err != nil {
		p.metrics.IncRenderOutcome(metrics.OutcomeFailed)
		p.publish(ctx, req, opts, "", "", false)
		return nil, gerrors.RenderFailed(err)
	}

	outcome := &Outcome{OutputName: opts.OutputName}

	// Email side channel. Failures are logged and swallowed: the primary
	// contract is document delivery, not notification delivery.
	if len(req.RawEmail) > 0 {
		outcome.Emailed = p.sendEmail(ctx, req.RawEmail, opts.OutputName, rendered)
	}

	// Primary delivery, mutually exclusive: stored when a store is
	// configured, inline otherwise.
	if p.store != nil {
		hash, existed, err := p.store.Store(rendered)
		if err != nil {
			p.metrics.IncRenderOutcome(metrics.OutcomeFailed)
			observability.ErrorContext(ctx, "artifact store write failed", logfields.Error(err))
			return nil, err
		}
		p.metrics.IncStoreWrite(existed)
		p.metrics.IncDelivery(metrics.DeliveryStored)
		outcome.Mode = DeliveryStored
		outcome.Hash = hash
	} else {
		p.metrics.IncDelivery(metrics.DeliveryInline)
		outcome.Mode = DeliveryInline
		outcome.Body = rendered
	}

	duration := time.Since(start)
	p.metrics.ObserveRenderDuration(duration)
	p.metrics.IncRenderOutcome(metrics.OutcomeSuccess)

	p.record(ctx, req, opts, outcome, duration)
	p.publish(ctx, req, opts, outcome.Hash, string(outcome.Mode), true)

	observability.InfoContext(ctx, "render complete",
		logfields.OutputName(opts.OutputName),
		logfields.Delivery(string(outcome.Mode)),
		logfields.DurationMS(float64(duration.Milliseconds())),
	)
	return outcome, nil
}

// renderIsolated runs the formatter arm/render/disarm critical section.
// At most one request is inside at a time; nothing else in the design
// prevents concurrent entry, so the exclusion is explicit here.
func (p *Pipeline) renderIsolated(ctx context.Context, template []byte, data map[string]any, opts engine.Options, custom formatter.Set) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx = observability.WithStage(ctx, "rendering")

	// Arm: reduce the live registry to defaults only, then merge this
	// request's custom formatters on top.
	p.registry.ReplaceAll(p.registry.SnapshotDefaults())
	p.registry.AddCustom(custom)

	// Disarm unconditionally: formatter state must never leak between
	// requests, on success or failure.
	defer p.registry.Reset()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.engine.Render(ctx, template, data, opts, p.registry.Live())
}

// sendEmail validates and dispatches the email directive. Returns whether
// a message actually went out; all errors end here.
func (p *Pipeline) sendEmail(ctx context.Context, raw []byte, outputName string, document []byte) bool {
	ctx = observability.WithStage(ctx, "emailing")

	directive, err := mail.ParseDirective(raw)
	if err != nil {
		observability.WarnContext(ctx, "cannot send emails", logfields.Error(gerrors.EmailDirectiveInvalid(err.Error())))
		p.metrics.IncEmailResult(false)
		return false
	}
	if len(directive.To) == 0 {
		observability.InfoContext(ctx, "no email recipients given, won't send any mails")
		return false
	}
	if p.mailer == nil {
		observability.WarnContext(ctx, "email requested but SMTP is not configured")
		return false
	}

	err = p.mailer.Send(ctx, mail.Message{
		To:             directive.To,
		Subject:        directive.Subject,
		Body:           directive.Body,
		AttachmentName: outputName,
		Attachment:     document,
	})
	if err != nil {
		observability.WarnContext(ctx, "cannot send emails", logfields.Error(gerrors.EmailDeliveryFailed(err)))
		p.metrics.IncEmailResult(false)
		return false
	}

	p.metrics.IncEmailResult(true)
	observability.InfoContext(ctx, "email sent", logfields.Recipients(len(directive.To)))
	return true
}

func (p *Pipeline) record(ctx context.Context, req Request, opts engine.Options, outcome *Outcome, duration time.Duration) {
	if p.history == nil {
		return
	}
	err := p.history.Append(ctx, history.Record{
		ID:         req.RequestID,
		Template:   req.Filename,
		OutputName: opts.OutputName,
		ConvertTo:  opts.ConvertTo,
		Hash:       outcome.Hash,
		Delivery:   string(outcome.Mode),
		Emailed:    outcome.Emailed,
		DurationMS: duration.Milliseconds(),
	})
	if err != nil {
		slog.Warn("failed to record render history", logfields.Error(err))
	}
}

func (p *Pipeline) publish(ctx context.Context, req Request, opts engine.Options, hash, delivery string, success bool) {
	err := p.events.RenderCompleted(ctx, events.RenderEvent{
		RequestID:  req.RequestID,
		Template:   req.Filename,
		OutputName: opts.OutputName,
		Hash:       hash,
		Delivery:   delivery,
		Success:    success,
		Timestamp:  time.Now(),
	})
	if err != nil {
		slog.Warn("failed to publish render event", logfields.Error(err))
	}
}
