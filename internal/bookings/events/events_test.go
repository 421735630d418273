package events

import (
	"context"
	"errors"
	"suitespot/pkg/kafka"
	"suitespot/pkg/model"
	"testing"
	"time"
)

type mockProducer struct {
	PublishFunc func(ctx context.Context, msg kafka.Message) error
	published   []kafka.Message
	closed      bool
}

func (m *mockProducer) Publish(ctx context.Context, msg kafka.Message) error {
	m.published = append(m.published, msg)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, msg)
	}
	return nil
}

func (m *mockProducer) Close() error {
	m.closed = true
	return nil
}

func sampleBooking() *model.Booking {
	return &model.Booking{
		ID:         "b1",
		ListingID:  "l1",
		GuestID:    "g1",
		StartDate:  time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC),
		TotalPrice: 3000,
		Status:     model.BookingPending,
	}
}

func TestBookingAdmitted(t *testing.T) {
	producer := &mockProducer{}
	pub := NewKafkaPublisher(producer, func(context.Context) string { return "req-42" })

	admission := &model.Admission{Booking: sampleBooking(), Bill: &model.Bill{ID: "bill-1"}}
	if err := pub.BookingAdmitted(context.Background(), admission); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(producer.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(producer.published))
	}
	msg := producer.published[0]
	if msg.Key != "l1" {
		t.Errorf("key = %q, want listing id", msg.Key)
	}
	if msg.GetEventType() != TypeBookingAdmitted {
		t.Errorf("event type = %q", msg.GetEventType())
	}
	if msg.GetCorrelationID() != "req-42" {
		t.Errorf("correlation id = %q", msg.GetCorrelationID())
	}
	if msg.GetEventID() == "" {
		t.Error("expected event id")
	}

	var event BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.BookingID != "b1" || event.BillID != "bill-1" || event.TotalPrice != 3000 {
		t.Errorf("unexpected payload: %+v", event)
	}
}

func TestBookingStatusChanged(t *testing.T) {
	producer := &mockProducer{}
	pub := NewKafkaPublisher(producer, nil)

	booking := sampleBooking()
	booking.Status = model.BookingCancelled
	if err := pub.BookingStatusChanged(context.Background(), booking, model.BookingPending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var event BookingEvent
	if err := producer.published[0].DecodeValue(&event); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Status != model.BookingCancelled || event.PreviousStatus != model.BookingPending {
		t.Errorf("unexpected statuses: %+v", event)
	}
	if producer.published[0].GetEventType() != TypeBookingStatusChanged {
		t.Errorf("event type = %q", producer.published[0].GetEventType())
	}
}

func TestPublishErrorIsWrapped(t *testing.T) {
	brokerErr := errors.New("broker unreachable")
	producer := &mockProducer{PublishFunc: func(context.Context, kafka.Message) error { return brokerErr }}
	pub := NewKafkaPublisher(producer, nil)

	err := pub.BookingAdmitted(context.Background(), &model.Admission{Booking: sampleBooking()})
	if !errors.Is(err, brokerErr) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}

func TestNoopPublisher(t *testing.T) {
	pub := NewNoopPublisher()
	if err := pub.BookingAdmitted(context.Background(), &model.Admission{Booking: sampleBooking()}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
