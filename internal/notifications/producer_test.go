package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"eventhive/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []*EmailNotification
	fails int
}

func (s *recordingSender) Send(_ context.Context, n *EmailNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fails > 0 {
		s.fails--
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, n)
	return nil
}

func confirmedNotification() *EmailNotification {
	return NewNotificationBuilder().
		WithType(NotificationTypeBookingConfirmed).
		WithRecipient("ann@example.com", "Ann").
		WithEventContext(uuid.New()).
		WithBookingContext(uuid.New()).
		WithData(DataEventName, "Jazz Night").
		WithData(DataEventDate, "Mar 3, 2026").
		WithData(DataPrice, "25.00").
		Build()
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got EmailNotification
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.Type != NotificationTypeBookingConfirmed || got.Status != NotificationStatusQueued {
			return errors.New("unexpected notification payload")
		}
		return nil
	})

	publisher := newKafkaPublisher(producer, "booking-notifications", logger.NewNop())
	n := confirmedNotification()

	require.NoError(t, publisher.Publish(context.Background(), n))
	assert.Equal(t, NotificationStatusQueued, n.Status)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_PublishFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := newKafkaPublisher(producer, "booking-notifications", logger.NewNop())
	n := confirmedNotification()

	err := publisher.Publish(context.Background(), n)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	assert.Equal(t, NotificationStatusFailed, n.Status)
	require.NotNil(t, n.LastError)
	require.NoError(t, publisher.Close())
}

func TestInlinePublisher(t *testing.T) {
	sender := &recordingSender{}
	publisher := NewInlinePublisher(sender, logger.NewNop())
	n := confirmedNotification()

	require.NoError(t, publisher.Publish(context.Background(), n))
	assert.Equal(t, NotificationStatusSent, n.Status)
	assert.NotNil(t, n.SentAt)
	assert.Len(t, sender.sent, 1)
}

func TestBuilderDefaultSubject(t *testing.T) {
	n := NewNotificationBuilder().
		WithType(NotificationTypeSeatAvailable).
		WithData(DataEventName, "Jazz Night").
		Build()
	assert.Equal(t, "A seat opened up for Jazz Night", n.Subject)

	custom := NewNotificationBuilder().
		WithType(NotificationTypeSeatAvailable).
		WithSubject("Hello").
		Build()
	assert.Equal(t, "Hello", custom.Subject)
}

func TestRenderContent(t *testing.T) {
	n := confirmedNotification()
	n.RecipientName = "<Ann>"

	html, text, err := renderContent(n)
	require.NoError(t, err)

	assert.Contains(t, html, "&lt;Ann&gt;")
	assert.Contains(t, text, "Hi <Ann>,")
	assert.Contains(t, text, "Jazz Night")
	assert.Contains(t, text, "25.00")

	_, _, err = renderContent(&EmailNotification{Type: "UNKNOWN"})
	assert.Error(t, err)
}
