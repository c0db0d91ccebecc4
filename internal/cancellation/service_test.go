package cancellation

import (
	"testing"
	"time"

	"eventhive/internal/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicy_Quote(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := DefaultPolicy()

	tests := []struct {
		name          string
		price         float64
		eventDate     time.Time
		wantRefund    float64
		wantDeduction float64
		wantType      RefundType
		wantMessage   string
	}{
		{"one day out", 100, now.Add(24 * time.Hour), 60, 40, RefundTypePartial, "40% Fee Deducted. Partial Refund Initiated."},
		{"starting right now", 100, now, 60, 40, RefundTypePartial, "40% Fee Deducted. Partial Refund Initiated."},
		{"just under two days", 50, now.Add(48*time.Hour - time.Second), 30, 20, RefundTypePartial, "40% Fee Deducted. Partial Refund Initiated."},
		{"exactly two days", 100, now.Add(48 * time.Hour), 100, 0, RefundTypeFull, "Full Refund Initiated"},
		{"five days out", 80, now.Add(5 * 24 * time.Hour), 80, 0, RefundTypeFull, "Full Refund Initiated"},
		{"free event", 0, now.Add(time.Hour), 0, 0, RefundTypePartial, "40% Fee Deducted. Partial Refund Initiated."},
		{"odd cents", 19.99, now.Add(time.Hour), 11.99, 8, RefundTypePartial, "40% Fee Deducted. Partial Refund Initiated."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := policy.Quote(tt.price, tt.eventDate, now)
			require.NoError(t, err)

			assert.InDelta(t, tt.wantRefund, q.RefundAmount, 1e-9)
			assert.InDelta(t, tt.wantDeduction, q.DeductionAmount, 1e-9)
			assert.InDelta(t, q.TotalPaid, q.RefundAmount+q.DeductionAmount, 1e-9)
			assert.Equal(t, tt.wantType, q.RefundType)
			assert.Equal(t, tt.wantMessage, q.Message)
		})
	}
}

func TestPolicy_QuoteAfterStart(t *testing.T) {
	now := time.Now()
	_, err := DefaultPolicy().Quote(100, now.Add(-time.Minute), now)
	assert.ErrorIs(t, err, ErrEventStarted)
}

func TestNewPolicy(t *testing.T) {
	p := NewPolicy(config.BookingConfig{FullRefundWindow: 72 * time.Hour, PartialRefundRate: 0.5})
	assert.Equal(t, 72*time.Hour, p.FullRefundWindow)

	now := time.Now()
	q, err := p.Quote(100, now.Add(60*time.Hour), now)
	require.NoError(t, err)
	assert.InDelta(t, 50, q.RefundAmount, 1e-9)
	assert.Equal(t, "50% Fee Deducted. Partial Refund Initiated.", q.Message)

	fallback := NewPolicy(config.BookingConfig{})
	assert.Equal(t, DefaultPolicy(), fallback)
}
