package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"checkout_service/internal/domain/entities"
	"checkout_service/internal/infrastructure/observability"
	"checkout_service/internal/usecase/interfaces"
)

// InitProducer builds a sync producer waiting for all in-sync replicas.
func InitProducer(brokers []string, logger *zap.Logger) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	logger.Info("[events][kafka] producer initialized", zap.Strings("brokers", brokers))
	return producer, nil
}

// KafkaOrderEventPublisher publishes order events keyed by order id so every
// event of an order lands on the same partition.
type KafkaOrderEventPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

var _ interfaces.IEventPublisher = (*KafkaOrderEventPublisher)(nil)

func NewKafkaOrderEventPublisher(producer sarama.SyncProducer, topic string, logger *zap.Logger) *KafkaOrderEventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaOrderEventPublisher{producer: producer, topic: topic, logger: logger}
}

func (p *KafkaOrderEventPublisher) Publish(ctx context.Context, event entities.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(body),
	}

	carrier := make(headerCarrier, 0)
	otel.GetTextMapPropagator().Inject(ctx, &carrier)
	carrier.Set("event_type", string(event.Type))
	msg.Headers = []sarama.RecordHeader(carrier)

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	p.logger.Info("[events][kafka] event published",
		zap.String("trace_id", observability.TraceID(ctx)),
		zap.String("type", string(event.Type)),
		zap.String("order_id", event.OrderID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (p *KafkaOrderEventPublisher) Close() error {
	return p.producer.Close()
}

// headerCarrier adapts Kafka record headers to a propagation.TextMapCarrier.
type headerCarrier []sarama.RecordHeader

func (c headerCarrier) Get(key string) string {
	for _, h := range c {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *headerCarrier) Set(key, value string) {
	*c = append(*c, sarama.RecordHeader{Key: []byte(key), Value: []byte(value)})
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, len(c))
	for i, h := range c {
		keys[i] = string(h.Key)
	}
	return keys
}

// NoopPublisher drops events. Used when no brokers are configured.
type NoopPublisher struct{}

var _ interfaces.IEventPublisher = NoopPublisher{}

func (NoopPublisher) Publish(context.Context, entities.OrderEvent) error { return nil }
