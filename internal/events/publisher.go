package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"catsync/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Event is one sync lifecycle notification.
type Event struct {
	Type        string                 `json:"type"`
	ProductCode string                 `json:"product_code,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
	Timestamp   time.Time              `json:"timestamp"`
}

// Publisher is the notification sink for sync outcomes. Publishing is
// best-effort; the sync result never depends on it.
type Publisher interface {
	Publish(event Event)
}

// KafkaPublisher writes events to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewKafkaPublisher(brokers, topic string, logger *logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(strings.Split(brokers, ",")...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger,
	}
}

func (p *KafkaPublisher) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal event: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ProductCode),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to publish event %s: %v", event.Type, err)
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops all events; used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(Event) {}
