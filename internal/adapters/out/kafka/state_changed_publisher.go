package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "orderflow/kafka"

// MessageWriter is the part of *kafkago.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// StateChangedMessage is the JSON payload written for every committed transition.
type StateChangedMessage struct {
	EventID    string    `json:"eventId"`
	OrderID    int64     `json:"orderId"`
	Event      string    `json:"event"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurredAt"`
}

// StateChangedPublisher writes order state changes to a Kafka topic, keyed by
// order id so that changes of one order stay ordered within a partition.
type StateChangedPublisher struct {
	writer MessageWriter
	tracer trace.Tracer
	newID  func() string
}

// NewWriter builds a writer for topic on the given brokers.
func NewWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// NewStateChangedPublisher creates a publisher over writer.
func NewStateChangedPublisher(writer MessageWriter) (*StateChangedPublisher, error) {
	if writer == nil {
		return nil, fmt.Errorf("kafka writer is required")
	}
	return &StateChangedPublisher{
		writer: writer,
		tracer: otel.Tracer(tracerName),
		newID:  func() string { return kernel.NewUUID().String() },
	}, nil
}

// PublishStateChanged serialises event and writes it with the current trace
// context injected into the message headers.
func (p *StateChangedPublisher) PublishStateChanged(ctx context.Context, event order.StateChanged) error {
	ctx, span := p.tracer.Start(ctx, "PublishStateChanged", trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.Int64("order.id", int64(event.OrderID)),
			attribute.String("order.state", event.To.String()),
		))
	defer span.End()

	msg, err := p.message(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	otel.GetTextMapPropagator().Inject(ctx, HeaderCarrier{headers: &msg.Headers})

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("write order state change for order %d: %w", int64(event.OrderID), err)
	}
	return nil
}

// Close flushes pending messages and releases the writer.
func (p *StateChangedPublisher) Close() error {
	return p.writer.Close()
}

func (p *StateChangedPublisher) message(event order.StateChanged) (kafkago.Message, error) {
	payload := StateChangedMessage{
		EventID:    p.newID(),
		OrderID:    int64(event.OrderID),
		Event:      event.Event.String(),
		From:       event.From.String(),
		To:         event.To.String(),
		OccurredAt: event.OccurredAt.UTC(),
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("marshal order state change: %w", err)
	}

	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(int64(event.OrderID), 10)),
		Value: value,
		Time:  event.OccurredAt,
	}, nil
}
