package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the constraints the seat ledger relies on when
// the application-level row locks are bypassed.
func MigrateConstraints(db *gorm.DB) error {
	statements := []string{
		// the counter stays inside [0, total_seats]
		`DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_events_seat_bounds') THEN
				ALTER TABLE events
				ADD CONSTRAINT chk_events_seat_bounds
				CHECK (available_seats >= 0 AND available_seats <= total_seats);
			END IF;
		END $$;`,

		// one booking per payment transaction; NULLs (direct reservations) are exempt
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_transaction_id
		ON bookings (transaction_id) WHERE transaction_id IS NOT NULL;`,

		`CREATE INDEX IF NOT EXISTS idx_bookings_event_status_created
		ON bookings (event_id, status, created_at);`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
