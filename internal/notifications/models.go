package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeBookingConfirmed  NotificationType = "BOOKING_CONFIRMED"
	NotificationTypeBookingWaitlisted NotificationType = "BOOKING_WAITLISTED"
	NotificationTypeBookingCancelled  NotificationType = "BOOKING_CANCELLED"
	NotificationTypeSeatAvailable     NotificationType = "SEAT_AVAILABLE"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusQueued  NotificationStatus = "QUEUED"
	NotificationStatusSending NotificationStatus = "SENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
	NotificationStatusFailed  NotificationStatus = "FAILED"
)

// Template data keys shared by the publisher side and the email renderer.
const (
	DataEventName       = "event_name"
	DataEventDate       = "event_date"
	DataPrice           = "price"
	DataRefundAmount    = "refund_amount"
	DataDeductionAmount = "deduction_amount"
	DataMessage         = "message"
)

type EmailNotification struct {
	ID   uuid.UUID        `json:"id"`
	Type NotificationType `json:"type"`

	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name"`

	Subject      string                 `json:"subject"`
	TemplateData map[string]interface{} `json:"template_data"`

	EventID   *uuid.UUID `json:"event_id,omitempty"`
	BookingID *uuid.UUID `json:"booking_id,omitempty"`

	Status     NotificationStatus `json:"status"`
	RetryCount int                `json:"retry_count"`
	LastError  *string            `json:"last_error,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	SentAt     *time.Time         `json:"sent_at,omitempty"`
}

type NotificationBuilder struct {
	notification *EmailNotification
}

func NewNotificationBuilder() *NotificationBuilder {
	now := time.Now()
	return &NotificationBuilder{
		notification: &EmailNotification{
			ID:           uuid.New(),
			Status:       NotificationStatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
			TemplateData: make(map[string]interface{}),
		},
	}
}

func (nb *NotificationBuilder) WithType(notType NotificationType) *NotificationBuilder {
	nb.notification.Type = notType
	return nb
}

func (nb *NotificationBuilder) WithRecipient(email, name string) *NotificationBuilder {
	nb.notification.RecipientEmail = email
	nb.notification.RecipientName = name
	return nb
}

func (nb *NotificationBuilder) WithSubject(subject string) *NotificationBuilder {
	nb.notification.Subject = subject
	return nb
}

func (nb *NotificationBuilder) WithData(key string, value interface{}) *NotificationBuilder {
	nb.notification.TemplateData[key] = value
	return nb
}

func (nb *NotificationBuilder) WithEventContext(eventID uuid.UUID) *NotificationBuilder {
	nb.notification.EventID = &eventID
	return nb
}

func (nb *NotificationBuilder) WithBookingContext(bookingID uuid.UUID) *NotificationBuilder {
	nb.notification.BookingID = &bookingID
	return nb
}

// Build fills in a default subject when none was set.
func (nb *NotificationBuilder) Build() *EmailNotification {
	if nb.notification.Subject == "" {
		nb.notification.Subject = defaultSubject(nb.notification.Type, nb.notification.TemplateData)
	}
	return nb.notification
}

func defaultSubject(notType NotificationType, data map[string]interface{}) string {
	name, ok := data[DataEventName]
	if !ok {
		name = "your event"
	}

	switch notType {
	case NotificationTypeBookingConfirmed:
		return fmt.Sprintf("Booking confirmed for %v", name)
	case NotificationTypeBookingWaitlisted:
		return fmt.Sprintf("You are on the waitlist for %v", name)
	case NotificationTypeBookingCancelled:
		return fmt.Sprintf("Booking cancelled for %v", name)
	case NotificationTypeSeatAvailable:
		return fmt.Sprintf("A seat opened up for %v", name)
	default:
		return "Notification from EventHive"
	}
}

// GetPartitionKey keeps every message for one recipient on one partition.
func (en *EmailNotification) GetPartitionKey() string {
	return en.RecipientEmail
}

func (en *EmailNotification) ToJSON() ([]byte, error) {
	return json.Marshal(en)
}

func (en *EmailNotification) MarkSent() {
	now := time.Now()
	en.Status = NotificationStatusSent
	en.SentAt = &now
	en.UpdatedAt = now
}

func (en *EmailNotification) MarkFailed(err error) {
	en.Status = NotificationStatusFailed
	en.UpdatedAt = time.Now()

	errorStr := err.Error()
	en.LastError = &errorStr
}
