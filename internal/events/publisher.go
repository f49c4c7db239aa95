// Package events announces finished evaluations to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/fmuoria/talent-screening-agent/internal/models"
)

// DefaultExchange is the topic exchange evaluations are published to
const DefaultExchange = "screening_events"

// Publisher announces a finished evaluation
type Publisher interface {
	PublishEvaluation(ctx context.Context, sessionID string, result models.EvaluationResult) error
}

// NopPublisher discards every event
type NopPublisher struct{}

// PublishEvaluation does nothing
func (NopPublisher) PublishEvaluation(context.Context, string, models.EvaluationResult) error {
	return nil
}

// EvaluationEvent is the JSON body of an evaluation message
type EvaluationEvent struct {
	Type        string                  `json:"type"`
	SessionID   string                  `json:"session_id"`
	Evaluation  models.EvaluationResult `json:"evaluation"`
	PublishedAt time.Time               `json:"published_at"`
}

// channel is the subset of *amqp.Channel used for publishing
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher publishes evaluation events to a RabbitMQ topic exchange
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	now      func() time.Time
}

// NewAMQPPublisher dials the broker and declares the exchange
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	p, err := newAMQPPublisher(ch, exchange)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch channel, exchange string) (*AMQPPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{ch: ch, exchange: exchange, now: time.Now}, nil
}

// RoutingKey returns the key evaluations of a session are published under
func RoutingKey(sessionID string) string {
	return fmt.Sprintf("evaluation.%s", sessionID)
}

// PublishEvaluation sends one evaluation as a persistent JSON message
func (p *AMQPPublisher) PublishEvaluation(ctx context.Context, sessionID string, result models.EvaluationResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := p.now()
	body, err := json.Marshal(EvaluationEvent{
		Type:        "evaluation_completed",
		SessionID:   sessionID,
		Evaluation:  result,
		PublishedAt: now,
	})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	err = p.ch.Publish(
		p.exchange,
		RoutingKey(sessionID),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    now,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish evaluation for %s: %w", result.Name, err)
	}
	return nil
}

// Close releases the channel and the connection
func (p *AMQPPublisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
