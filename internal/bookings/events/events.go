package events

import (
	"context"
	"fmt"
	"suitespot/pkg/kafka"
	"suitespot/pkg/model"
	"time"
)

const (
	TypeBookingAdmitted      = "booking.admitted"
	TypeBookingStatusChanged = "booking.status_changed"

	SchemaVersion = "1"
	Source        = "bookings-service"
)

// BookingEvent is the payload of every booking event. Events are keyed by
// listing id so consumers see the history of one listing in order.
type BookingEvent struct {
	BookingID      string    `json:"booking_id"`
	ListingID      string    `json:"listing_id"`
	GuestID        string    `json:"guest_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	TotalPrice     float64   `json:"total_price"`
	BillID         string    `json:"bill_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type Publisher interface {
	BookingAdmitted(ctx context.Context, admission *model.Admission) error
	BookingStatusChanged(ctx context.Context, booking *model.Booking, previousStatus string) error
	Close() error
}

// MessagePublisher is satisfied by *kafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	producer      MessagePublisher
	correlationID func(ctx context.Context) string
	now           func() time.Time
}

// NewKafkaPublisher publishes booking events through producer. correlationID
// may be nil.
func NewKafkaPublisher(producer MessagePublisher, correlationID func(ctx context.Context) string) Publisher {
	if correlationID == nil {
		correlationID = func(context.Context) string { return "" }
	}
	return &kafkaPublisher{
		producer:      producer,
		correlationID: correlationID,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (p *kafkaPublisher) BookingAdmitted(ctx context.Context, admission *model.Admission) error {
	event := fromBooking(admission.Booking, p.now())
	if admission.Bill != nil {
		event.BillID = admission.Bill.ID
	}
	return p.publish(ctx, TypeBookingAdmitted, event)
}

func (p *kafkaPublisher) BookingStatusChanged(ctx context.Context, booking *model.Booking, previousStatus string) error {
	event := fromBooking(booking, p.now())
	event.PreviousStatus = previousStatus
	return p.publish(ctx, TypeBookingStatusChanged, event)
}

func (p *kafkaPublisher) publish(ctx context.Context, eventType string, event BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.ListingID).
		WithValue(event).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(p.correlationID(ctx)).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", eventType, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event for booking %s: %w", eventType, event.BookingID, err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

func fromBooking(b *model.Booking, now time.Time) BookingEvent {
	return BookingEvent{
		BookingID:  b.ID,
		ListingID:  b.ListingID,
		GuestID:    b.GuestID,
		Status:     b.Status,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		TotalPrice: b.TotalPrice,
		OccurredAt: now,
	}
}

type noopPublisher struct{}

// NewNoopPublisher drops every event. Used when Kafka is disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) BookingAdmitted(context.Context, *model.Admission) error { return nil }

func (noopPublisher) BookingStatusChanged(context.Context, *model.Booking, string) error {
	return nil
}

func (noopPublisher) Close() error { return nil }
