package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/talent-screening-agent/internal/models"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	kinds      []string
	messages   []published
	declareErr error
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name)
	f.kinds = append(f.kinds, kind)
	return f.declareErr
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.messages = append(f.messages, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublishEvaluation(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisher(ch, DefaultExchange)
	require.NoError(t, err)
	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	result := models.EvaluationResult{Name: "jane.pdf", Score: 85, Decision: models.DecisionStrongHire}
	require.NoError(t, p.PublishEvaluation(context.Background(), "abc", result))

	assert.Equal(t, []string{DefaultExchange}, ch.declared)
	assert.Equal(t, []string{amqp.ExchangeTopic}, ch.kinds)
	require.Len(t, ch.messages, 1)

	got := ch.messages[0]
	assert.Equal(t, DefaultExchange, got.exchange)
	assert.Equal(t, "evaluation.abc", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)

	var event EvaluationEvent
	require.NoError(t, json.Unmarshal(got.msg.Body, &event))
	assert.Equal(t, "evaluation_completed", event.Type)
	assert.Equal(t, "abc", event.SessionID)
	assert.Equal(t, "jane.pdf", event.Evaluation.Name)
	assert.Equal(t, 85, event.Evaluation.Score)
	assert.True(t, fixed.Equal(event.PublishedAt))
}

func TestPublishEvaluationErrors(t *testing.T) {
	ch := &fakeChannel{publishErr: errors.New("channel closed")}
	p, err := newAMQPPublisher(ch, "x")
	require.NoError(t, err)

	err = p.PublishEvaluation(context.Background(), "s", models.EvaluationResult{Name: "bob"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bob")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.PublishEvaluation(ctx, "s", models.EvaluationResult{}), context.Canceled)
}

func TestDeclareFailureClosesChannel(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	_, err := newAMQPPublisher(ch, "x")
	require.Error(t, err)
	assert.True(t, ch.closed)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishEvaluation(context.Background(), "s", models.EvaluationResult{}))
}
