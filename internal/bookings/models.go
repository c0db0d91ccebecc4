package bookings

import (
	"strings"
	"time"

	"eventhive/internal/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking is one seat claim (or waitlist entry) by one user for one event.
// Event fields are a snapshot taken at creation so the booking stays readable
// after the event is edited or deleted.
type Booking struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	EventID       uuid.UUID `json:"eventId" gorm:"type:uuid;not null;index"`
	EventName     string    `json:"eventName" gorm:"size:255"`
	EventDate     time.Time `json:"eventDate"`
	EventImage    string    `json:"eventImage" gorm:"size:1000"`
	UserEmail     string    `json:"userEmail" gorm:"size:255;not null;index"`
	UserName      string    `json:"userName" gorm:"size:255"`
	Price         float64   `json:"price" gorm:"not null;check:price >= 0"`
	TransactionID *string   `json:"transactionId,omitempty" gorm:"size:255"`
	Status        Status    `json:"status" gorm:"type:varchar(20);not null;check:status IN ('confirmed', 'waitlist', 'cancelled')"`
	CreatedAt     time.Time `json:"bookingDate" gorm:"autoCreateTime"`
	UpdatedAt     time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (b *Booking) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}

// PaymentReconciliation records that a paid checkout was turned into a
// booking. It outlives the booking, so a refunded payment cannot be
// reconciled into a second seat.
type PaymentReconciliation struct {
	TransactionID string     `json:"transactionId" gorm:"primaryKey;size:255"`
	BookingID     uuid.UUID  `json:"bookingId" gorm:"type:uuid;not null;index"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"autoCreateTime"`
}

func (PaymentReconciliation) TableName() string {
	return "payment_reconciliations"
}

func newBooking(event *events.Event, email, name string, price float64) *Booking {
	return &Booking{
		EventID:    event.ID,
		EventName:  event.Title,
		EventDate:  event.Date,
		EventImage: event.Image,
		UserEmail:  email,
		UserName:   name,
		Price:      price,
		Status:     StatusWaitlist,
	}
}

// Actor is the authenticated caller of a ledger operation.
type Actor struct {
	Email   string
	Name    string
	IsAdmin bool
}

// canAccess reports whether the actor may act on data owned by email.
func (a Actor) canAccess(email string) bool {
	return a.IsAdmin || strings.EqualFold(a.Email, email)
}

type ReserveResult struct {
	Success bool     `json:"success"`
	Booking *Booking `json:"booking"`
	Message string   `json:"message"`
}

type CancelResult struct {
	Success         bool    `json:"success"`
	RefundAmount    float64 `json:"refundAmount"`
	DeductionAmount float64 `json:"deductionAmount"`
	TotalPaid       float64 `json:"totalPaid"`
	Message         string  `json:"message"`
	SeatReleased    bool    `json:"-"`
}

type ReconcileResult struct {
	Success bool     `json:"success"`
	Booking *Booking `json:"booking,omitempty"`
	Message string   `json:"message"`
	// Replayed is true when the payment had already produced a booking.
	Replayed bool `json:"-"`
}
