package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const confirmedBookingStatus = "confirmed"

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*User, error)
	// DeleteWithBookings removes the user and their bookings, releasing one
	// seat per confirmed booking, in one transaction.
	DeleteWithBookings(ctx context.Context, user *User) (*DeletionSummary, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetAll(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*User, error) {
	result := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

// heldBooking is the slice of a bookings row needed to release its seat.
type heldBooking struct {
	ID      uuid.UUID
	EventID uuid.UUID
	Status  string
}

func (r *repository) DeleteWithBookings(ctx context.Context, user *User) (*DeletionSummary, error) {
	summary := &DeletionSummary{UserID: user.ID, Email: user.Email}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock order matches cancellation: booking rows first, then events
		var held []heldBooking
		if err := tx.Table("bookings").
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id, event_id, status").
			Where("user_email = ?", user.Email).
			Find(&held).Error; err != nil {
			return fmt.Errorf("failed to lock bookings: %w", err)
		}

		released := make(map[uuid.UUID]int)
		for _, b := range held {
			if b.Status == confirmedBookingStatus {
				released[b.EventID]++
			}
		}

		for eventID, seats := range released {
			// events deleted without cascade simply have nothing to release
			result := tx.Table("events").
				Where("id = ? AND available_seats + ? <= total_seats", eventID, seats).
				UpdateColumn("available_seats", gorm.Expr("available_seats + ?", seats))
			if result.Error != nil {
				return fmt.Errorf("failed to release seats for event %s: %w", eventID, result.Error)
			}
			summary.SeatsReleased += result.RowsAffected * int64(seats)
		}

		// paid bookings stay consumed so their sessions cannot be reconciled again
		if err := tx.Exec(`UPDATE payment_reconciliations SET cancelled_at = ?
			WHERE cancelled_at IS NULL
			AND booking_id IN (SELECT id FROM bookings WHERE user_email = ?)`,
			time.Now().UTC(), user.Email).Error; err != nil {
			return fmt.Errorf("failed to settle payments: %w", err)
		}

		result := tx.Exec("DELETE FROM bookings WHERE user_email = ?", user.Email)
		if result.Error != nil {
			return fmt.Errorf("failed to delete bookings: %w", result.Error)
		}
		summary.BookingsDeleted = result.RowsAffected

		if err := tx.Where("id = ?", user.ID).Delete(&User{}).Error; err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}
