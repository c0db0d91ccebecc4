package notifications

import (
	"context"
	"testing"
	"time"

	"eventhive/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsumer(sender EmailSender, maxRetries int) *Consumer {
	return &Consumer{
		maxRetries: maxRetries,
		backoff:    time.Millisecond,
		sender:     sender,
		log:        logger.NewNop(),
	}
}

func messageFor(t *testing.T, n *EmailNotification) *sarama.ConsumerMessage {
	t.Helper()
	payload, err := n.ToJSON()
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: "booking-notifications", Value: payload}
}

func TestConsumer_ProcessMessage(t *testing.T) {
	sender := &recordingSender{}
	c := newTestConsumer(sender, 2)

	require.NoError(t, c.processMessage(context.Background(), messageFor(t, confirmedNotification())))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "ann@example.com", sender.sent[0].RecipientEmail)
	assert.Equal(t, NotificationStatusSent, sender.sent[0].Status)
}

func TestConsumer_RetriesUntilDelivered(t *testing.T) {
	sender := &recordingSender{fails: 2}
	c := newTestConsumer(sender, 2)

	require.NoError(t, c.processMessage(context.Background(), messageFor(t, confirmedNotification())))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, 2, sender.sent[0].RetryCount)
}

func TestConsumer_GivesUp(t *testing.T) {
	sender := &recordingSender{fails: 5}
	c := newTestConsumer(sender, 1)

	err := c.processMessage(context.Background(), messageFor(t, confirmedNotification()))
	assert.ErrorContains(t, err, "giving up after 2 attempts")
	assert.Empty(t, sender.sent)
}

func TestConsumer_RejectsGarbage(t *testing.T) {
	c := newTestConsumer(&recordingSender{}, 0)

	err := c.processMessage(context.Background(), &sarama.ConsumerMessage{Value: []byte("not json")})
	assert.ErrorContains(t, err, "failed to unmarshal notification")
}

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Context() context.Context { return s.ctx }

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

// cancellingSender simulates a rebalance landing mid-delivery.
type cancellingSender struct {
	cancel context.CancelFunc
}

func (s *cancellingSender) Send(ctx context.Context, _ *EmailNotification) error {
	s.cancel()
	<-ctx.Done()
	return ctx.Err()
}

func claimWith(t *testing.T, offsets ...int64) *fakeClaim {
	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, len(offsets))}
	for _, offset := range offsets {
		msg := messageFor(t, confirmedNotification())
		msg.Offset = offset
		claim.messages <- msg
	}
	close(claim.messages)
	return claim
}

func TestConsumeClaim_MarksFailedDeliveries(t *testing.T) {
	c := newTestConsumer(&recordingSender{fails: 10}, 0)
	handler := &groupHandler{consumer: c}
	session := &fakeSession{ctx: context.Background()}

	require.NoError(t, handler.ConsumeClaim(session, claimWith(t, 7, 8)))

	assert.Equal(t, []int64{7, 8}, session.marked)
}

func TestConsumeClaim_LeavesInterruptedUnmarked(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := newTestConsumer(&cancellingSender{cancel: cancel}, 3)
	handler := &groupHandler{consumer: c}
	session := &fakeSession{ctx: ctx}

	require.NoError(t, handler.ConsumeClaim(session, claimWith(t, 7, 8)))

	assert.Empty(t, session.marked)
}
