// Package events publishes render lifecycle notifications so downstream
// consumers (audit, billing, cache warmers) can react without polling.
// Publishing is fire-and-forget; a slow or absent broker never blocks a
// render.
package events

import (
	"context"
	"time"
)

// RenderEvent describes one completed (or failed) render.
type RenderEvent struct {
	RequestID  string    `json:"requestId"`
	Template   string    `json:"template"`
	OutputName string    `json:"outputName"`
	Hash       string    `json:"hash,omitempty"`
	Delivery   string    `json:"delivery"`
	Success    bool      `json:"success"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher emits render events. A nil-safe NoopPublisher is used when no
// broker is configured.
type Publisher interface {
	RenderCompleted(ctx context.Context, ev RenderEvent) error
	Close()
}

// NoopPublisher drops all events.
type NoopPublisher struct{}

func (NoopPublisher) RenderCompleted(context.Context, RenderEvent) error { return nil }
func (NoopPublisher) Close()                                             {}
