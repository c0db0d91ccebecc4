package bookings

import (
	"context"
	"errors"
	"time"

	"eventhive/internal/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// WithinTransaction runs fn in one store transaction. Returning an error
	// from fn rolls back every write made through tx.
	WithinTransaction(ctx context.Context, fn func(tx TxRepository) error) error

	GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error)
	GetBookingsByEmail(ctx context.Context, email string) ([]Booking, error)
	GetBookingByTransactionID(ctx context.Context, transactionID string) (*Booking, error)
	GetOldestWaitlisted(ctx context.Context, eventID uuid.UUID) (*Booking, error)
}

// TxRepository is the set of ledger writes available inside a transaction.
type TxRepository interface {
	// LockEvent reads the event row with SELECT ... FOR UPDATE.
	LockEvent(id uuid.UUID) (*events.Event, error)
	// AdjustAvailableSeats moves the counter by delta only if the result
	// stays inside [0, total_seats]; otherwise it returns ErrSeatBounds.
	AdjustAvailableSeats(eventID uuid.UUID, delta int) error
	CreateBooking(booking *Booking) error
	LockBooking(id uuid.UUID) (*Booking, error)
	FindByTransactionID(transactionID string) (*Booking, error)
	DeleteBooking(id uuid.UUID) error

	// LockReconciliation reads a payment's reconciliation record with
	// SELECT ... FOR UPDATE; errNotReconciled if the payment was never used.
	LockReconciliation(transactionID string) (*PaymentReconciliation, error)
	// RecordReconciliation returns ErrDuplicateTransaction if the payment
	// is already recorded.
	RecordReconciliation(rec *PaymentReconciliation) error
	// CancelReconciliation marks a payment refunded, creating the record if
	// the booking predates reconciliation records.
	CancelReconciliation(transactionID string, bookingID uuid.UUID, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithinTransaction(ctx context.Context, fn func(tx TxRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepository{tx: tx})
	})
}

func (r *repository) GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error) {
	var event events.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) GetBookingsByEmail(ctx context.Context, email string) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("user_email = ?", email).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) GetBookingByTransactionID(ctx context.Context, transactionID string) (*Booking, error) {
	return findByTransactionID(r.db.WithContext(ctx), transactionID)
}

func (r *repository) GetOldestWaitlisted(ctx context.Context, eventID uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND status = ?", eventID, StatusWaitlist).
		Order("created_at ASC").
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

type txRepository struct {
	tx *gorm.DB
}

func (t *txRepository) LockEvent(id uuid.UUID) (*events.Event, error) {
	var event events.Event
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (t *txRepository) AdjustAvailableSeats(eventID uuid.UUID, delta int) error {
	result := t.tx.Model(&events.Event{}).
		Where("id = ?", eventID).
		Where("available_seats + ? BETWEEN 0 AND total_seats", delta).
		UpdateColumn("available_seats", gorm.Expr("available_seats + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSeatBounds
	}
	return nil
}

func (t *txRepository) CreateBooking(booking *Booking) error {
	err := t.tx.Create(booking).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateTransaction
	}
	return err
}

func (t *txRepository) LockBooking(id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (t *txRepository) FindByTransactionID(transactionID string) (*Booking, error) {
	return findByTransactionID(t.tx, transactionID)
}

func (t *txRepository) DeleteBooking(id uuid.UUID) error {
	result := t.tx.Where("id = ?", id).Delete(&Booking{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (t *txRepository) LockReconciliation(transactionID string) (*PaymentReconciliation, error) {
	var rec PaymentReconciliation
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transaction_id = ?", transactionID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotReconciled
		}
		return nil, err
	}
	return &rec, nil
}

func (t *txRepository) RecordReconciliation(rec *PaymentReconciliation) error {
	err := t.tx.Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateTransaction
	}
	return err
}

func (t *txRepository) CancelReconciliation(transactionID string, bookingID uuid.UUID, at time.Time) error {
	rec := &PaymentReconciliation{TransactionID: transactionID, BookingID: bookingID, CancelledAt: &at}
	return t.tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "transaction_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"cancelled_at"}),
	}).Create(rec).Error
}

func findByTransactionID(db *gorm.DB, transactionID string) (*Booking, error) {
	var booking Booking
	err := db.Where("transaction_id = ?", transactionID).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}
