package notifications

import (
	"context"
	"fmt"
	"time"

	"eventhive/internal/shared/config"
	"eventhive/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher hands a notification off for delivery. Implementations must not
// block on email delivery itself.
type Publisher interface {
	Publish(ctx context.Context, notification *EmailNotification) error
	Close() error
}

// KafkaPublisher writes notifications to the notification topic, keyed by
// recipient so a consumer sees one user's messages in order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, log *logger.Logger) (*KafkaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V2_1_0_0

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = cfg.MaxRetries
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Info("Kafka notification producer created", "brokers", cfg.Brokers, "topic", cfg.NotificationTopic)
	return newKafkaPublisher(producer, cfg.NotificationTopic, log), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, log: log}
}

func (kp *KafkaPublisher) Publish(ctx context.Context, notification *EmailNotification) error {
	notification.Status = NotificationStatusQueued
	notification.UpdatedAt = time.Now()

	messageBytes, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.topic,
		Key:       sarama.StringEncoder(notification.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   createHeaders(notification),
		Timestamp: notification.CreatedAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		notification.MarkFailed(err)
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	kp.log.DebugContext(ctx, "Notification published",
		"topic", kp.topic,
		"partition", partition,
		"offset", offset,
		"type", notification.Type,
		"recipient", notification.RecipientEmail,
	)
	return nil
}

func createHeaders(notification *EmailNotification) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("notification_id"), Value: []byte(notification.ID.String())},
		{Key: []byte("notification_type"), Value: []byte(notification.Type)},
		{Key: []byte("producer"), Value: []byte("eventhive-bookings")},
		{Key: []byte("created_at"), Value: []byte(notification.CreatedAt.Format(time.RFC3339))},
	}

	if notification.EventID != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("event_id"),
			Value: []byte(notification.EventID.String()),
		})
	}

	if notification.BookingID != nil {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("booking_id"),
			Value: []byte(notification.BookingID.String()),
		})
	}

	return headers
}

func (kp *KafkaPublisher) Close() error {
	if err := kp.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	kp.log.Info("Kafka notification producer closed")
	return nil
}

// InlinePublisher delivers straight to a sender. Used when Kafka is disabled.
type InlinePublisher struct {
	sender EmailSender
	log    *logger.Logger
}

func NewInlinePublisher(sender EmailSender, log *logger.Logger) *InlinePublisher {
	return &InlinePublisher{sender: sender, log: log}
}

func (ip *InlinePublisher) Publish(ctx context.Context, notification *EmailNotification) error {
	notification.Status = NotificationStatusSending
	if err := ip.sender.Send(ctx, notification); err != nil {
		notification.MarkFailed(err)
		return err
	}
	notification.MarkSent()
	return nil
}

func (ip *InlinePublisher) Close() error {
	return nil
}
