package database

import (
	"eventhive/internal/bookings"
	"eventhive/internal/events"
	"eventhive/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&events.Event{},
		&bookings.Booking{},
		&bookings.PaymentReconciliation{},
	)
}
