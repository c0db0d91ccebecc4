package bookings

import (
	"context"
	"sort"
	"sync"
	"time"

	"eventhive/internal/events"

	"github.com/google/uuid"
)

// memStore is an in-memory Repository. Transactions are serialized by a
// single mutex, which stands in for the row locks, and roll back by
// restoring a snapshot.
type memStore struct {
	mu       sync.Mutex
	events   map[uuid.UUID]events.Event
	bookings map[uuid.UUID]Booking
	recs     map[string]PaymentReconciliation
	clock    time.Time

	// failCreate makes the next CreateBooking fail with this error.
	failCreate error
}

func newMemStore() *memStore {
	return &memStore{
		events:   make(map[uuid.UUID]events.Event),
		bookings: make(map[uuid.UUID]Booking),
		recs:     make(map[string]PaymentReconciliation),
		clock:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) addEvent(e events.Event) events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	m.events[e.ID] = e
	return e
}

func (m *memStore) event(id uuid.UUID) events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events[id]
}

func (m *memStore) deleteEvent(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, id)
}

func (m *memStore) bookingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bookings)
}

func (m *memStore) reconciliation(transactionID string) (PaymentReconciliation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[transactionID]
	return rec, ok
}

func (m *memStore) WithinTransaction(_ context.Context, fn func(tx TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	eventsSnap := make(map[uuid.UUID]events.Event, len(m.events))
	for k, v := range m.events {
		eventsSnap[k] = v
	}
	bookingsSnap := make(map[uuid.UUID]Booking, len(m.bookings))
	for k, v := range m.bookings {
		bookingsSnap[k] = v
	}

	recsSnap := make(map[string]PaymentReconciliation, len(m.recs))
	for k, v := range m.recs {
		recsSnap[k] = v
	}

	if err := fn(&memTx{m: m}); err != nil {
		m.events = eventsSnap
		m.bookings = bookingsSnap
		m.recs = recsSnap
		return err
	}
	return nil
}

func (m *memStore) GetEvent(_ context.Context, id uuid.UUID) (*events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	return &e, nil
}

func (m *memStore) GetBookingsByEmail(_ context.Context, email string) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Booking
	for _, b := range m.bookings {
		if b.UserEmail == email {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) GetBookingByTransactionID(_ context.Context, transactionID string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{m: m}).FindByTransactionID(transactionID)
}

func (m *memStore) GetOldestWaitlisted(_ context.Context, eventID uuid.UUID) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest *Booking
	for _, b := range m.bookings {
		if b.EventID != eventID || b.Status != StatusWaitlist {
			continue
		}
		if oldest == nil || b.CreatedAt.Before(oldest.CreatedAt) {
			b := b
			oldest = &b
		}
	}
	if oldest == nil {
		return nil, ErrBookingNotFound
	}
	return oldest, nil
}

// memTx runs with memStore.mu held.
type memTx struct {
	m *memStore
}

func (t *memTx) LockEvent(id uuid.UUID) (*events.Event, error) {
	e, ok := t.m.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	return &e, nil
}

func (t *memTx) AdjustAvailableSeats(eventID uuid.UUID, delta int) error {
	e, ok := t.m.events[eventID]
	next := e.AvailableSeats + delta
	if !ok || next < 0 || next > e.TotalSeats {
		return ErrSeatBounds
	}
	e.AvailableSeats = next
	t.m.events[eventID] = e
	return nil
}

func (t *memTx) CreateBooking(booking *Booking) error {
	if err := t.m.failCreate; err != nil {
		t.m.failCreate = nil
		return err
	}
	if booking.TransactionID != nil {
		if _, err := t.FindByTransactionID(*booking.TransactionID); err == nil {
			return ErrDuplicateTransaction
		}
	}
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	t.m.clock = t.m.clock.Add(time.Second)
	booking.CreatedAt = t.m.clock
	booking.UpdatedAt = t.m.clock
	t.m.bookings[booking.ID] = *booking
	return nil
}

func (t *memTx) LockBooking(id uuid.UUID) (*Booking, error) {
	b, ok := t.m.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &b, nil
}

func (t *memTx) FindByTransactionID(transactionID string) (*Booking, error) {
	for _, b := range t.m.bookings {
		if b.TransactionID != nil && *b.TransactionID == transactionID {
			return &b, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (t *memTx) DeleteBooking(id uuid.UUID) error {
	if _, ok := t.m.bookings[id]; !ok {
		return ErrBookingNotFound
	}
	delete(t.m.bookings, id)
	return nil
}

func (t *memTx) LockReconciliation(transactionID string) (*PaymentReconciliation, error) {
	rec, ok := t.m.recs[transactionID]
	if !ok {
		return nil, errNotReconciled
	}
	return &rec, nil
}

func (t *memTx) RecordReconciliation(rec *PaymentReconciliation) error {
	if _, ok := t.m.recs[rec.TransactionID]; ok {
		return ErrDuplicateTransaction
	}
	rec.CreatedAt = t.m.clock
	t.m.recs[rec.TransactionID] = *rec
	return nil
}

func (t *memTx) CancelReconciliation(transactionID string, bookingID uuid.UUID, at time.Time) error {
	rec, ok := t.m.recs[transactionID]
	if !ok {
		rec = PaymentReconciliation{TransactionID: transactionID, BookingID: bookingID, CreatedAt: t.m.clock}
	}
	rec.CancelledAt = &at
	t.m.recs[transactionID] = rec
	return nil
}
