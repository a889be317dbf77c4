package kafka

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"p2p-backoffice/internal/domain/disbursement"
)

type publisher interface {
	Publish(ctx context.Context, topic string, messages ...Message) error
}

// DisbursementPublisher emits workflow events keyed by disbursement id.
type DisbursementPublisher struct {
	producer publisher
	topic    string
}

func NewDisbursementPublisher(p publisher, topic string) *DisbursementPublisher {
	return &DisbursementPublisher{producer: p, topic: topic}
}

func (p *DisbursementPublisher) PublishDisbursement(ctx context.Context, ev disbursement.Event) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, p.topic, Message{
		Key:   []byte(ev.DisbursementID),
		Value: body,
		Headers: map[string]string{
			"event_id":   ev.EventID,
			"event_type": "disbursement." + ev.Outcome,
		},
	})
}

// Nop drops events; used when no brokers are configured.
type Nop struct{}

func (Nop) PublishDisbursement(context.Context, disbursement.Event) error { return nil }
