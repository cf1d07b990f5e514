package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"overbank/events"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// SubjectPrefix is prepended to the event type to build the NATS subject
const SubjectPrefix = "overbank.events."

// Publisher is the slice of *nats.Conn the forwarder needs
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Envelope wraps a forwarded event
type Envelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Payload   json.RawMessage `json:"payload"`
}

// NATSForwarder mirrors committed domain events onto NATS subjects
type NATSForwarder struct {
	publisher Publisher
	source    string
}

// NewNATSForwarder creates a forwarder publishing through publisher
func NewNATSForwarder(publisher Publisher, source string) *NATSForwarder {
	return &NATSForwarder{publisher: publisher, source: source}
}

// Attach subscribes the forwarder to every event on the bus
func (f *NATSForwarder) Attach(bus *events.Bus) {
	bus.SubscribeAll(f.Handle)
}

// Handle forwards one event. Failures are logged; the bus has no one to return them to.
func (f *NATSForwarder) Handle(ctx context.Context, event events.Event) {
	if err := f.Forward(event); err != nil {
		log.WithFields(log.Fields{
			"event_type": event.Type(),
			"error":      err,
		}).Error("Failed to forward event to NATS")
	}
}

// Forward publishes event to overbank.events.<type>
func (f *NATSForwarder) Forward(event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := Envelope{
		EventID:   uuid.NewString(),
		EventType: string(event.Type()),
		Timestamp: time.Now().UTC(),
		Source:    f.source,
		Payload:   payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := SubjectPrefix + string(event.Type())
	if err := f.publisher.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	log.WithFields(log.Fields{
		"event_id": envelope.EventID,
		"subject":  subject,
	}).Debug("Forwarded event to NATS")
	return nil
}

// ConnectNATS opens a reconnecting NATS connection
func ConnectNATS(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.WithField("url", url).Info("Connected to NATS")
	return nc, nil
}
