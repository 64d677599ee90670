// Package events publishes domain events for the notification pipeline.
// Publishing is best-effort: a broker problem is logged and never fails the
// operation that produced the event.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
)

const (
	TypeMessageCreated   = "message.created"
	TypeRequestCreated   = "request.created"
	TypeRequestResponded = "request.responded"
)

type Event struct {
	Type        string           `json:"type"`
	CompanyID   models.CompanyID `json:"company_id"`
	RecipientID models.CompanyID `json:"recipient_id,omitempty"`
	EntityID    string           `json:"entity_id"`
	At          time.Time        `json:"at"`
}

type Publisher struct {
	writer *kafka.Writer
	log    *zap.SugaredLogger
}

// NewPublisher returns nil when no brokers are configured; a nil publisher
// drops all events.
func NewPublisher(brokers []string, topic string, log *zap.SugaredLogger) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Publisher{writer: w, log: log}
}

func (p *Publisher) Publish(ev Event) {
	if p == nil || p.writer == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, _ := json.Marshal(ev)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(ev.Type), Value: b, Time: ev.At}); err != nil {
			p.log.Warnw("event publish failed", "type", ev.Type, "err", err)
		}
	}()
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
