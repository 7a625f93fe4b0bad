package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chainapi/internal/domain"
	"chainapi/internal/infrastructure/telemetry"
	"chainapi/internal/streaming"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes decoded contract events, one topic per chain.
type Producer struct {
	writer messageWriter
	prefix string
}

type ProducerConfig struct {
	Brokers     []string
	TopicPrefix string
}

func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newProducer(writer, cfg.TopicPrefix), nil
}

func newProducer(writer messageWriter, prefix string) *Producer {
	if strings.TrimSpace(prefix) == "" {
		prefix = "chainapi-events"
	}
	return &Producer{writer: writer, prefix: prefix}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// PublishEvents writes events keyed by contract address so a contract's events
// stay ordered within a partition.
func (p *Producer) PublishEvents(ctx context.Context, chainID uint64, events []domain.ContractEvent) error {
	if len(events) == 0 {
		return nil
	}
	ctx, span := otel.Tracer("chainapi/kafka").Start(ctx, "kafka.publish_events", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.Int64("chain.id", int64(chainID)),
		attribute.Int("event.count", len(events)),
	)
	traceID := ""
	if sc := span.SpanContext(); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}

	topic := p.topicForChain(chainID)
	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		payload, err := streaming.Encode(streaming.FromEvent(chainID, traceID, event))
		if err != nil {
			telemetry.Fail(span, err)
			return err
		}
		messages = append(messages, kafka.Message{
			Topic:   topic,
			Key:     []byte(strings.ToLower(event.Contract)),
			Value:   payload,
			Headers: telemetry.InjectHeaders(ctx, nil),
		})
	}
	err := p.writer.WriteMessages(ctx, messages...)
	telemetry.Fail(span, err)
	return err
}

func (p *Producer) topicForChain(chainID uint64) string {
	return fmt.Sprintf("%s-%d", p.prefix, chainID)
}
