package kafka

import (
	"context"
	"time"

	"glowbridge/pkg/logger"
)

// Topics shared between the services and the notifier worker.
const (
	TopicAvailabilityChanged = "availability.changed"
	TopicAppointmentBooked   = "appointment.booked"

	DLQSuffix = ".dlq"
)

// Event types carried in the event-type header.
const (
	EventAvailabilitySlotCreated      = "availability.slot_created"
	EventAvailabilitySlotUpdated      = "availability.slot_updated"
	EventAvailabilitySlotDeleted      = "availability.slot_deleted"
	EventAvailabilityTemplateReplaced = "availability.template_replaced"

	EventAppointmentBooked    = "appointment.booked"
	EventAppointmentCancelled = "appointment.cancelled"
)

type AvailabilityChangedEvent struct {
	SalonStaffID string    `json:"salon_staff_id"`
	DayOfWeek    *int      `json:"day_of_week,omitempty"`
	SlotIDs      []string  `json:"slot_ids,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type AppointmentBookedEvent struct {
	AppointmentID string    `json:"appointment_id"`
	UserID        string    `json:"user_id"`
	SalonStaffID  string    `json:"salon_staff_id"`
	ServiceID     string    `json:"service_id"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher publishes domain events to a single topic. Publishing is
// best effort: callers log failures but never fail the request over them.
type EventPublisher struct {
	producer *Producer
	source   string
	log      *logger.Logger
}

func NewEventPublisher(producer *Producer, source string, log *logger.Logger) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, key, eventType string, payload any) {
	if p == nil || p.producer == nil {
		return
	}

	msg := NewMessage().
		WithKey(key).
		WithValue(payload).
		WithEventID("").
		WithEventType(eventType).
		WithSource(p.source).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish event",
			"event_type", eventType,
			"key", key,
			"error", err,
		)
		return
	}

	p.log.Debug("Event published",
		"event_type", eventType,
		"key", key,
	)
}
