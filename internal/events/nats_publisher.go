package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// SubjectRenderCompleted is the subject render outcomes are published on.
const SubjectRenderCompleted = "rendergate.render.completed"

// NATSPublisher publishes render events to a NATS broker.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the broker at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("rendergate"))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	slog.Info("NATS event publisher initialized", "url", url, "subject", SubjectRenderCompleted)
	return &NATSPublisher{conn: conn}, nil
}

// RenderCompleted implements Publisher.
func (p *NATSPublisher) RenderCompleted(_ context.Context, ev RenderEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal render event: %w", err)
	}
	if err := p.conn.Publish(SubjectRenderCompleted, payload); err != nil {
		return fmt.Errorf("publish render event: %w", err)
	}
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		slog.Warn("NATS drain failed", "error", err)
	}
}
