// Package events publishes product change notifications.
package events

import (
	"context"
	"time"

	"product-api/internal/model"
)

// EventType identifies the kind of change a product went through.
type EventType string

const (
	ProductCreated EventType = "product.created"
	ProductUpdated EventType = "product.updated"
	ProductDeleted EventType = "product.deleted"
)

// Event is the message body published for every committed product write.
type Event struct {
	Type       EventType      `json:"type"`
	ProductID  int64          `json:"productId"`
	Product    *model.Product `json:"product,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// NewEvent builds an event for the given product. Product is omitted for deletions.
func NewEvent(eventType EventType, product *model.Product) Event {
	e := Event{
		Type:       eventType,
		ProductID:  product.GetID(),
		OccurredAt: time.Now().UTC(),
	}
	if eventType != ProductDeleted {
		e.Product = product.Clone()
	}
	return e
}

// Publisher delivers product events to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher returns a Publisher that discards every event.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
