// Package queue publishes committed booking events to RabbitMQ so other
// services can follow the booking lifecycle. Publish failures are logged and
// never reach the booking flow.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/artin59/3311-Project-sub001/internal/model"
)

// Event types, also used as routing keys.
const (
	EventCreated   = "booking.created"
	EventUpdated   = "booking.updated"
	EventCancelled = "booking.cancelled"
)

const publishTimeout = 5 * time.Second

// Event is the JSON body of every published message.
type Event struct {
	Type       string         `json:"type"`
	BookingID  string         `json:"bookingId"`
	Booking    *model.Booking `json:"booking,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Channel is the subset of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher is a booking.Observer writing events to a durable topic exchange.
type Publisher struct {
	ch       Channel
	exchange string
	now      func() time.Time
}

// NewPublisher declares the exchange and returns a publisher on it.
func NewPublisher(ch Channel, exchange string) (*Publisher, error) {
	if err := ch.ExchangeDeclare(
		exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		return nil, fmt.Errorf("declaring exchange %q: %w", exchange, err)
	}
	return &Publisher{ch: ch, exchange: exchange, now: time.Now}, nil
}

// Dial connects to the broker and opens a publisher. The returned close
// function releases the channel and the connection.
func Dial(url, exchange string) (*Publisher, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	p, err := NewPublisher(ch, exchange)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, err
	}
	closer := func() error {
		_ = ch.Close()
		return conn.Close()
	}
	return p, closer, nil
}

func (p *Publisher) OnBookingCreated(b model.Booking) {
	p.publish(Event{Type: EventCreated, BookingID: b.ID, Booking: &b})
}

func (p *Publisher) OnBookingUpdated(b model.Booking) {
	p.publish(Event{Type: EventUpdated, BookingID: b.ID, Booking: &b})
}

func (p *Publisher) OnBookingCancelled(id string) {
	p.publish(Event{Type: EventCancelled, BookingID: id})
}

func (p *Publisher) publish(ev Event) {
	ev.OccurredAt = p.now().UTC()
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal %s event failed: %v", ev.Type, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.BookingID,
		Timestamp:    ev.OccurredAt,
		Type:         ev.Type,
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, ev.Type, false, false, msg); err != nil {
		log.Printf("rabbitmq: publish %s for booking %s failed: %v", ev.Type, ev.BookingID, err)
	}
}
