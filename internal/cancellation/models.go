package cancellation

import (
	"errors"
	"time"
)

var (
	ErrEventStarted = errors.New("event has already started")
)

type RefundType string

const (
	RefundTypeFull    RefundType = "FULL"
	RefundTypePartial RefundType = "PARTIAL"
)

// Policy computes what a cancelled booking is refunded. Cancelling at least
// FullRefundWindow before the event refunds everything; later cancellations
// before the start refund PartialRefundRate of the price.
type Policy struct {
	FullRefundWindow  time.Duration
	PartialRefundRate float64
}

// Quote is the outcome of applying a Policy to one booking.
type Quote struct {
	TotalPaid       float64    `json:"totalPaid"`
	RefundAmount    float64    `json:"refundAmount"`
	DeductionAmount float64    `json:"deductionAmount"`
	RefundType      RefundType `json:"refundType"`
	Message         string     `json:"message"`
	DaysUntilEvent  float64    `json:"daysUntilEvent"`
}
