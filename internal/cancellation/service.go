package cancellation

import (
	"fmt"
	"math"
	"time"

	"eventhive/internal/shared/config"
)

func DefaultPolicy() Policy {
	return Policy{
		FullRefundWindow:  48 * time.Hour,
		PartialRefundRate: 0.6,
	}
}

func NewPolicy(cfg config.BookingConfig) Policy {
	p := DefaultPolicy()
	if cfg.FullRefundWindow > 0 {
		p.FullRefundWindow = cfg.FullRefundWindow
	}
	if cfg.PartialRefundRate > 0 && cfg.PartialRefundRate <= 1 {
		p.PartialRefundRate = cfg.PartialRefundRate
	}
	return p
}

// Quote prices a cancellation of a booking bought for price, for an event
// starting at eventDate, requested at now. Amounts are rounded to cents and
// always sum to the price.
func (p Policy) Quote(price float64, eventDate, now time.Time) (*Quote, error) {
	until := eventDate.Sub(now)
	if until < 0 {
		return nil, ErrEventStarted
	}

	quote := &Quote{
		TotalPaid:      roundCents(price),
		DaysUntilEvent: until.Hours() / 24,
	}

	if until >= p.FullRefundWindow {
		quote.RefundType = RefundTypeFull
		quote.RefundAmount = quote.TotalPaid
		quote.DeductionAmount = 0
		quote.Message = "Full Refund Initiated"
		return quote, nil
	}

	quote.RefundType = RefundTypePartial
	quote.RefundAmount = roundCents(price * p.PartialRefundRate)
	quote.DeductionAmount = roundCents(quote.TotalPaid - quote.RefundAmount)
	quote.Message = fmt.Sprintf("%.0f%% Fee Deducted. Partial Refund Initiated.", (1-p.PartialRefundRate)*100)
	return quote, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
