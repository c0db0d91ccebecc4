package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"eventhive/internal/shared/config"
	"eventhive/pkg/logger"

	"github.com/IBM/sarama"
)

// Consumer reads the notification topic as a consumer group and hands each
// message to an EmailSender, retrying with exponential backoff.
type Consumer struct {
	consumerGroup sarama.ConsumerGroup
	topics        []string
	workers       int
	maxRetries    int
	backoff       time.Duration
	sender        EmailSender
	log           *logger.Logger
	wg            sync.WaitGroup
}

func NewConsumer(cfg config.KafkaConfig, sender EmailSender, log *logger.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V2_1_0_0

	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = 5 * time.Minute
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	workers := cfg.ConsumerWorkers
	if workers <= 0 {
		workers = 1
	}

	return &Consumer{
		consumerGroup: consumerGroup,
		topics:        []string{cfg.NotificationTopic},
		workers:       workers,
		maxRetries:    cfg.MaxRetries,
		backoff:       time.Second,
		sender:        sender,
		log:           log,
	}, nil
}

// Start launches the workers and returns immediately. Workers exit when ctx
// is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.log.Info("Starting notification consumers", "workers", c.workers, "topics", c.topics)

	go func() {
		for err := range c.consumerGroup.Errors() {
			c.log.Error("Consumer group error", "error", err)
		}
	}()

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			c.runWorker(ctx, workerID)
		}(i)
	}
}

func (c *Consumer) runWorker(ctx context.Context, workerID int) {
	handler := &groupHandler{consumer: c, workerID: workerID}

	for {
		if err := c.consumerGroup.Consume(ctx, c.topics, handler); err != nil {
			c.log.Warn("Error consuming notifications", "worker", workerID, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
		if ctx.Err() != nil {
			c.log.Debug("Notification worker shutting down", "worker", workerID)
			return
		}
	}
}

// Stop waits for the workers to leave the group, then closes it. The context
// passed to Start must already be cancelled.
func (c *Consumer) Stop() error {
	c.wg.Wait()
	if err := c.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	c.log.Info("Notification consumer stopped")
	return nil
}

type groupHandler struct {
	consumer *Consumer
	workerID int
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.consumer.processMessage(session.Context(), message); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					// Left unmarked so the next owner of the partition
					// redelivers it.
					h.consumer.log.Warn("Notification delivery interrupted",
						"worker", h.workerID,
						"partition", message.Partition,
						"offset", message.Offset,
					)
					return nil
				}
				h.consumer.log.Error("Notification delivery failed",
					"worker", h.workerID,
					"partition", message.Partition,
					"offset", message.Offset,
					"error", err,
				)
			}
			// Failed deliveries are logged and skipped so one bad address
			// cannot stall the partition.
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var notification EmailNotification
	if err := json.Unmarshal(message.Value, &notification); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	notification.Status = NotificationStatusSending

	if err := c.executeWithRetry(ctx, &notification); err != nil {
		notification.MarkFailed(err)
		return err
	}

	notification.MarkSent()
	return nil
}

func (c *Consumer) executeWithRetry(ctx context.Context, notification *EmailNotification) error {
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err = c.sender.Send(ctx, notification); err == nil {
			return nil
		}
		if attempt == c.maxRetries {
			break
		}

		notification.RetryCount++
		delay := c.backoff * time.Duration(1<<attempt)
		c.log.Debug("Retrying notification", "id", notification.ID, "attempt", attempt+1, "delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", c.maxRetries+1, err)
}
