package notifications

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"eventhive/internal/shared/config"
	"eventhive/pkg/logger"
)

// Pipeline owns the publisher handed to the booking ledger and, when Kafka is
// enabled, the consumer group that drains the topic.
type Pipeline struct {
	Publisher Publisher

	consumer *Consumer
	cancel   context.CancelFunc
	mu       sync.Mutex
	running  bool
	log      *logger.Logger
}

// NewPipeline wires the notification pipeline from configuration. Without
// SMTP settings mail is written to the log. Without Kafka, delivery happens
// inline on the publishing goroutine.
func NewPipeline(cfg *config.Config, log *logger.Logger) (*Pipeline, error) {
	var sender EmailSender = NewLogSender(log)
	if cfg.Email.SMTPHost != "" {
		smtpSender, err := NewSMTPSender(cfg.Email, log)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
		}
		sender = smtpSender
	}

	if !cfg.Kafka.Enabled {
		log.Info("Kafka disabled, notifications are delivered inline")
		return &Pipeline{Publisher: NewInlinePublisher(sender, log), log: log}, nil
	}

	publisher, err := NewKafkaPublisher(cfg.Kafka, log)
	if err != nil {
		return nil, err
	}

	consumer, err := NewConsumer(cfg.Kafka, sender, log)
	if err != nil {
		_ = publisher.Close()
		return nil, err
	}

	return &Pipeline{Publisher: publisher, consumer: consumer, log: log}, nil
}

func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("notification pipeline is already running")
	}
	if p.consumer != nil {
		ctx, p.cancel = context.WithCancel(ctx)
		p.consumer.Start(ctx)
	}
	p.running = true
	return nil
}

func (p *Pipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.cancel != nil {
		p.cancel()
	}
	if p.consumer != nil && p.running {
		errs = append(errs, p.consumer.Stop())
	}
	errs = append(errs, p.Publisher.Close())
	p.running = false

	return errors.Join(errs...)
}
