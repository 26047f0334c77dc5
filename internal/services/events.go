package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Routing keys of the domain events published after a committed write.
const (
	EventFieldDefined    = "field.defined"
	EventFieldUpdated    = "field.updated"
	EventFieldDeleted    = "field.deleted"
	EventFieldsReordered = "field.reordered"
	EventRecordCreated   = "record.created"
	EventRecordUpdated   = "record.updated"
	EventRecordDeleted   = "record.deleted"
)

// Event is the message body of a domain event.
type Event struct {
	Type       string      `json:"type"`
	OwnerID    string      `json:"owner_id"`
	EntityID   string      `json:"entity_id,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data,omitempty"`
}

// EventPublisher delivers domain events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event interface{}) error
}

// publishEvent is best effort: the write it describes is already committed.
func publishEvent(ctx context.Context, publisher EventPublisher, log logrus.FieldLogger, evt Event) {
	if publisher == nil {
		return
	}
	evt.OccurredAt = time.Now().UTC()
	if err := publisher.Publish(ctx, evt.Type, evt); err != nil {
		log.WithFields(logrus.Fields{
			"event":     evt.Type,
			"owner_id":  evt.OwnerID,
			"entity_id": evt.EntityID,
		}).WithError(err).Warn("failed to publish event")
	}
}
