// Package events publishes delivery events to an AMQP broker so other
// systems can react to sends without polling this service.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

const (
	exchange   = "messages.topic"
	routingKey = "interactive.sent"
)

// MessageSent is the event body published after a successful delivery.
type MessageSent struct {
	MessageID string    `json:"messageId"`
	To        string    `json:"to"`
	Provider  string    `json:"provider"`
	Template  string    `json:"template,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher maintains one AMQP connection and declares the exchange
// before first use.
type Publisher struct {
	conn *amqp.Connection
}

func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dialing amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declaring exchange: %w", err)
	}

	return &Publisher{conn: conn}, nil
}

// Publish emits a MessageSent event. Failures here must not fail the
// send itself; callers log and move on.
func (p *Publisher) Publish(event MessageSent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return ch.Publish(
		exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		})
}

func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
