package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/Rounit002/maasaraswatilibrary/pkg/logger"
)

// EventProducer interface defines the contract for publishing renewal events
type EventProducer interface {
	PublishRenewalCompleted(ctx context.Context, event *RenewalEvent) error
	Close() error
	HealthCheck(ctx context.Context) error
}

// KafkaProducerConfig contains configuration for the Kafka event producer
type KafkaProducerConfig struct {
	Brokers          []string
	RenewalTopic     string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		RenewalTopic:     "membership-renewals",
		RetryMax:         3,
		TimeoutMs:        10000,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000, // 1MB
	}
}

// KafkaEventProducer handles publishing renewal events to Kafka
type KafkaEventProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
}

// NewKafkaEventProducer creates a new Kafka renewal event producer
func NewKafkaEventProducer(config *KafkaProducerConfig) (EventProducer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Hash partitioner keeps one student's events in order
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.GetDefault().Info("Kafka renewal event producer created")
	return &KafkaEventProducer{
		producer: producer,
		config:   config,
	}, nil
}

// PublishRenewalCompleted publishes a single renewal event to Kafka
func (kep *KafkaEventProducer) PublishRenewalCompleted(ctx context.Context, event *RenewalEvent) error {
	event.Status = EventStatusQueued

	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal renewal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kep.config.RenewalTopic,
		Key:       sarama.StringEncoder(event.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Timestamp: event.CreatedAt,
	}

	partition, offset, err := kep.producer.SendMessage(message)
	if err != nil {
		event.Status = EventStatusFailed
		errorStr := err.Error()
		event.LastError = &errorStr
		return fmt.Errorf("failed to send renewal event to Kafka: %w", err)
	}

	logger.GetDefault().Info("renewal event published",
		"topic", kep.config.RenewalTopic,
		"partition", partition,
		"offset", offset,
		"student_id", event.StudentID.String(),
	)

	return nil
}

// Close shuts down the producer
func (kep *KafkaEventProducer) Close() error {
	if err := kep.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// HealthCheck verifies the producer can reach the cluster
func (kep *KafkaEventProducer) HealthCheck(ctx context.Context) error {
	probe := NewRenewalEvent(uuid.Nil)
	probe.Type = "HEALTH_CHECK"

	messageBytes, err := probe.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal health check event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: kep.config.RenewalTopic,
		Key:   sarama.StringEncoder("health-check"),
		Value: sarama.ByteEncoder(messageBytes),
	}

	if _, _, err := kep.producer.SendMessage(message); err != nil {
		return fmt.Errorf("kafka health check failed: %w", err)
	}
	return nil
}

// NoopProducer satisfies EventProducer when Kafka is disabled; events
// are logged and dropped.
type NoopProducer struct{}

func NewNoopProducer() EventProducer {
	return &NoopProducer{}
}

func (np *NoopProducer) PublishRenewalCompleted(ctx context.Context, event *RenewalEvent) error {
	logger.GetDefault().Debug("kafka disabled, renewal event dropped", "student_id", event.StudentID.String())
	return nil
}

func (np *NoopProducer) Close() error { return nil }

func (np *NoopProducer) HealthCheck(ctx context.Context) error { return nil }
