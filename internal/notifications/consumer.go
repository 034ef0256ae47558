package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/Rounit002/maasaraswatilibrary/pkg/logger"
)

// EventConsumer consumes renewal events and records receipts.
type EventConsumer interface {
	StartConsumers(ctx context.Context, numWorkers int) error
	Stop() error
}

type ConsumerConfig struct {
	Brokers          []string
	GroupID          string
	Topics           []string
	SessionTimeoutMs int
	HeartbeatMs      int
	RetryBackoffMs   int
	AutoCommit       bool
	OffsetOldest     bool
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:          []string{"localhost:9092"},
		GroupID:          "library-renewal-workers",
		Topics:           []string{"membership-renewals"},
		SessionTimeoutMs: 30000,
		HeartbeatMs:      3000,
		RetryBackoffMs:   100,
		AutoCommit:       true,
		OffsetOldest:     false,
	}
}

type KafkaEventConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

func NewKafkaEventConsumer(config *ConsumerConfig) (EventConsumer, error) {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(config.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(config.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(config.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.Return.Errors = true

	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	if config.AutoCommit {
		saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
		saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &KafkaEventConsumer{
		consumerGroup: consumerGroup,
		config:        config,
	}, nil
}

func (kec *KafkaEventConsumer) StartConsumers(ctx context.Context, numWorkers int) error {
	ctx, kec.cancel = context.WithCancel(ctx)

	go kec.handleErrors()

	for i := 0; i < numWorkers; i++ {
		kec.wg.Add(1)
		go func(workerID int) {
			defer kec.wg.Done()
			kec.runWorker(ctx, workerID)
		}(i)
	}

	logger.GetDefault().Info("renewal event consumers started",
		"workers", numWorkers,
		"topics", kec.config.Topics,
	)
	return nil
}

func (kec *KafkaEventConsumer) runWorker(ctx context.Context, workerID int) {
	handler := &consumerGroupHandler{workerID: workerID}

	for {
		if err := kec.consumerGroup.Consume(ctx, kec.config.Topics, handler); err != nil {
			logger.GetDefault().Error("consumer worker error",
				"worker_id", workerID,
				"error", err.Error(),
			)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (kec *KafkaEventConsumer) handleErrors() {
	for err := range kec.consumerGroup.Errors() {
		logger.GetDefault().Error("consumer group error", "error", err.Error())
	}
}

func (kec *KafkaEventConsumer) Stop() error {
	if kec.cancel != nil {
		kec.cancel()
	}
	kec.wg.Wait()
	return kec.consumerGroup.Close()
}

type consumerGroupHandler struct {
	workerID int
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		var event RenewalEvent
		if err := event.FromJSON(message.Value); err != nil {
			logger.GetDefault().Error("failed to decode renewal event",
				"worker_id", h.workerID,
				"offset", message.Offset,
				"error", err.Error(),
			)
			session.MarkMessage(message, "")
			continue
		}

		// Receipt/reminder delivery would hang off here; for now the
		// receipt is the structured log line itself.
		logger.GetDefault().Info("renewal event received",
			"worker_id", h.workerID,
			"student_id", event.StudentID.String(),
			"branch_id", event.BranchID.String(),
			"total_fee", event.TotalFee,
			"due", event.Due,
		)
		session.MarkMessage(message, "")
	}
	return nil
}
