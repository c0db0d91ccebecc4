package bookings

import (
	"context"
	"os"
	"testing"
	"time"

	"eventhive/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Runs against a disposable database, e.g.
// EVENTHIVE_TEST_DSN="host=localhost user=postgres password=postgres dbname=eventhive_test sslmode=disable"
const testDSNEnv = "EVENTHIVE_TEST_DSN"

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", testDSNEnv)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&events.Event{}, &Booking{}, &PaymentReconciliation{}))
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_transaction_id
		ON bookings (transaction_id) WHERE transaction_id IS NOT NULL`).Error)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedEvent(t *testing.T, db *gorm.DB, total, available int) *events.Event {
	t.Helper()
	ev := &events.Event{
		Title:          "Integration Night",
		Date:           time.Now().Add(10 * day),
		Price:          50,
		TotalSeats:     total,
		AvailableSeats: available,
	}
	require.NoError(t, db.Create(ev).Error)
	t.Cleanup(func() {
		db.Where("event_id = ?", ev.ID).Delete(&Booking{})
		db.Delete(ev)
	})
	return ev
}

func seatsLeft(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var ev events.Event
	require.NoError(t, db.First(&ev, "id = ?", id).Error)
	return ev.AvailableSeats
}

func TestRepository_AdjustSeatsStaysInBounds(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ev := seedEvent(t, db, 2, 1)
	ctx := context.Background()

	err := repo.WithinTransaction(ctx, func(tx TxRepository) error {
		return tx.AdjustAvailableSeats(ev.ID, -2)
	})
	assert.ErrorIs(t, err, ErrSeatBounds)

	err = repo.WithinTransaction(ctx, func(tx TxRepository) error {
		return tx.AdjustAvailableSeats(ev.ID, 2)
	})
	assert.ErrorIs(t, err, ErrSeatBounds)
	assert.Equal(t, 1, seatsLeft(t, db, ev.ID))

	require.NoError(t, repo.WithinTransaction(ctx, func(tx TxRepository) error {
		locked, err := tx.LockEvent(ev.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, 1, locked.AvailableSeats)
		return tx.AdjustAvailableSeats(ev.ID, -1)
	}))
	assert.Equal(t, 0, seatsLeft(t, db, ev.ID))
}

func TestRepository_DuplicateTransactionRejected(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ev := seedEvent(t, db, 5, 5)
	ctx := context.Background()
	txID := "pi_" + uuid.NewString()

	create := func() error {
		return repo.WithinTransaction(ctx, func(tx TxRepository) error {
			booking := newBooking(ev, "ann@example.com", "Ann", ev.Price)
			booking.Status = StatusConfirmed
			booking.TransactionID = &txID
			return tx.CreateBooking(booking)
		})
	}

	require.NoError(t, create())
	assert.ErrorIs(t, create(), ErrDuplicateTransaction)

	found, err := repo.GetBookingByTransactionID(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, ev.ID, found.EventID)
}

func TestRepository_ReconciliationLifecycle(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	txID := "pi_" + uuid.NewString()
	bookingID := uuid.New()
	t.Cleanup(func() {
		db.Where("transaction_id = ?", txID).Delete(&PaymentReconciliation{})
	})

	err := repo.WithinTransaction(ctx, func(tx TxRepository) error {
		_, err := tx.LockReconciliation(txID)
		return err
	})
	assert.ErrorIs(t, err, errNotReconciled)

	record := func() error {
		return repo.WithinTransaction(ctx, func(tx TxRepository) error {
			return tx.RecordReconciliation(&PaymentReconciliation{TransactionID: txID, BookingID: bookingID})
		})
	}
	require.NoError(t, record())
	assert.ErrorIs(t, record(), ErrDuplicateTransaction)

	cancelledAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.WithinTransaction(ctx, func(tx TxRepository) error {
		return tx.CancelReconciliation(txID, bookingID, cancelledAt)
	}))

	require.NoError(t, repo.WithinTransaction(ctx, func(tx TxRepository) error {
		rec, err := tx.LockReconciliation(txID)
		if err != nil {
			return err
		}
		assert.Equal(t, bookingID, rec.BookingID)
		require.NotNil(t, rec.CancelledAt)
		assert.True(t, cancelledAt.Equal(*rec.CancelledAt))
		return nil
	}))
}

func TestRepository_CancelReconciliationCreatesMissingRecord(t *testing.T) {
	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	txID := "pi_" + uuid.NewString()
	t.Cleanup(func() {
		db.Where("transaction_id = ?", txID).Delete(&PaymentReconciliation{})
	})

	require.NoError(t, repo.WithinTransaction(ctx, func(tx TxRepository) error {
		return tx.CancelReconciliation(txID, uuid.New(), time.Now())
	}))

	var rec PaymentReconciliation
	require.NoError(t, db.First(&rec, "transaction_id = ?", txID).Error)
	assert.NotNil(t, rec.CancelledAt)
}
