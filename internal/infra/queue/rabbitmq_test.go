package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/memodb-io/assetbucket/internal/config"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func TestTableCarrier(t *testing.T) {
	table := amqp.Table{"count": 3}
	c := tableCarrier{table: table}

	c.Set("traceparent", "00-abc-def-01")
	assert.Equal(t, "00-abc-def-01", c.Get("traceparent"))
	assert.Equal(t, "3", c.Get("count"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"count", "traceparent"}, c.Keys())
}

func TestTableCarrier_PropagatesTraceContext(t *testing.T) {
	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := amqp.Table{}
	prop := propagation.TraceContext{}
	prop.Inject(ctx, tableCarrier{table: headers})
	assert.Contains(t, headers, "traceparent")

	got := trace.SpanContextFromContext(prop.Extract(context.Background(), tableCarrier{table: headers}))
	assert.Equal(t, traceID, got.TraceID())
}

func TestNewPublisher_DialFailure(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewPublisher(zap.NewNop(), &config.Config{}, func() (*amqp.Connection, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
