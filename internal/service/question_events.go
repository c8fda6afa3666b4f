package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/noah-isme/gema-qbank-api/internal/models"
)

// QuestionEvent is broadcast after every committed workflow transition.
type QuestionEvent struct {
	QuestionID uint                  `json:"question_id"`
	Action     models.HistoryAction  `json:"action"`
	From       models.QuestionStatus `json:"from,omitempty"`
	To         models.QuestionStatus `json:"to"`
	ActorID    uint                  `json:"actor_id"`
	ActorRole  models.Role           `json:"actor_role"`
	OccurredAt time.Time             `json:"occurred_at"`

	CorrelationID string `json:"correlation_id,omitempty"`
}

// CorrelationHeader carries QuestionEvent.CorrelationID on published messages.
const CorrelationHeader = "X-Correlation-ID"


// EventPublisher delivers workflow events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event QuestionEvent) error
}

// NATSEventPublisher publishes events on "<subject>.<action>".
type NATSEventPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSEventPublisher builds a publisher. A nil connection makes Publish a no-op.
func NewNATSEventPublisher(conn *nats.Conn, subject string) *NATSEventPublisher {
	subject = strings.Trim(strings.TrimSpace(subject), ".")
	if subject == "" {
		subject = "qbank.questions"
	}
	return &NATSEventPublisher{conn: conn, subject: subject}
}

// Subject returns the subject an event is published on.
func (p *NATSEventPublisher) Subject(action models.HistoryAction) string {
	return p.subject + "." + string(action)
}

func (p *NATSEventPublisher) Publish(_ context.Context, event QuestionEvent) error {
	if p == nil || p.conn == nil {
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.conn.PublishMsg(p.message(event, payload))
}

func (p *NATSEventPublisher) message(event QuestionEvent, payload []byte) *nats.Msg {
	msg := nats.NewMsg(p.Subject(event.Action))
	msg.Data = payload
	if event.CorrelationID != "" {
		msg.Header.Set(CorrelationHeader, event.CorrelationID)
	}
	return msg
}
