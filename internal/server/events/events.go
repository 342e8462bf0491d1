// Package events publishes report lifecycle notifications for the external
// broadcast layer.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel/propagation"
)

// Subject suffixes appended to the configured prefix.
const (
	KindAnalyzed = "analyzed"
	KindVerified = "verified"
)

// ReportAnalyzed is emitted after a report has been scored and stored.
type ReportAnalyzed struct {
	ReportID        string   `json:"report_id"`
	UserID          string   `json:"user_id"`
	Lat             float64  `json:"lat"`
	Lon             float64  `json:"lon"`
	TextLabel       *string  `json:"text_label"`
	ImageLabel      *string  `json:"image_label"`
	VeracityScore   float64  `json:"veracity_score"`
	ClusterStrength float64  `json:"cluster_strength"`
	Errors          []string `json:"errors,omitempty"`
}

// ReportVerified is emitted when a report moves to verified.
type ReportVerified struct {
	ReportID       string  `json:"report_id"`
	UserID         string  `json:"user_id"`
	UserReputation float64 `json:"user_reputation"`
	VerifiedBy     string  `json:"verified_by,omitempty"`
}

// Envelope wraps every payload on the wire.
type Envelope struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, kind string, payload any) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) error { return nil }
func (Nop) Close() error                               { return nil }

type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

var propagator = propagation.TraceContext{}

// NATSPublisher publishes JSON envelopes to "<prefix>.<kind>", carrying the
// trace context in message headers.
type NATSPublisher struct {
	conn   msgPublisher
	prefix string
	closer func()
	now    func() time.Time
}

// ConnectNATS dials url and returns a publisher bound to the connection.
func ConnectNATS(url, prefix string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("veracity"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	p := newNATSPublisher(nc, prefix)
	p.closer = func() {
		_ = nc.Drain()
	}
	return p, nil
}

func newNATSPublisher(conn msgPublisher, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix, now: time.Now}
}

// Subject returns the subject events of kind are published on.
func (p *NATSPublisher) Subject(kind string) string {
	if p.prefix == "" {
		return kind
	}
	return p.prefix + "." + kind
}

func (p *NATSPublisher) Publish(ctx context.Context, kind string, payload any) error {
	data, err := json.Marshal(Envelope{
		ID:         uuid.NewString(),
		Kind:       kind,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("encode %s event: %w", kind, err)
	}

	hdr := nats.Header{}
	propagator.Inject(ctx, propagation.HeaderCarrier(hdr))

	if err := p.conn.PublishMsg(&nats.Msg{Subject: p.Subject(kind), Data: data, Header: hdr}); err != nil {
		return fmt.Errorf("publish %s event: %w", kind, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.closer != nil {
		p.closer()
	}
	return nil
}
