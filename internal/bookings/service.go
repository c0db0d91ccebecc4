package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"eventhive/internal/cancellation"
	"eventhive/internal/events"
	"eventhive/internal/notifications"
	"eventhive/internal/payments"
	"eventhive/pkg/logger"

	"github.com/google/uuid"
)

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrForbidden            = errors.New("not allowed to act on this booking")
	ErrNoSeatsAvailable     = errors.New("no seats available")
	ErrNoPaymentRequired    = errors.New("event is free, reserve it directly")
	ErrSeatBounds           = errors.New("seat counter out of bounds")
	ErrDuplicateTransaction = errors.New("transaction already recorded")
	ErrTransactionFailed    = errors.New("booking transaction failed")
	ErrPaymentGateway       = errors.New("payment gateway error")
	ErrEventStarted         = cancellation.ErrEventStarted

	errNotReconciled = errors.New("payment not reconciled")
)

const (
	msgBookingConfirmed   = "Booking Confirmed"
	msgAddedToWaitlist    = "Added to waitlist"
	msgPaymentNotComplete = "Payment not completed"
	msgPaymentRefunded    = "Payment already refunded"
	msgPaymentUsed        = "Payment already used"
)

// EventCache is told when an event's seat counter moved.
type EventCache interface {
	InvalidateEvent(ctx context.Context, id uuid.UUID)
}

type Service interface {
	SetNotifier(publisher notifications.Publisher)
	SetEventCache(cache EventCache)

	Reserve(ctx context.Context, actor Actor, eventID uuid.UUID, userEmail, userName string) (*ReserveResult, error)
	GetUserBookings(ctx context.Context, actor Actor, email string) ([]Booking, error)
	Cancel(ctx context.Context, actor Actor, bookingID uuid.UUID) (*CancelResult, error)
	CreateCheckoutSession(ctx context.Context, actor Actor, eventID uuid.UUID, userEmail, userName string) (*payments.CheckoutSession, error)
	ReconcilePayment(ctx context.Context, actor Actor, sessionID string) (*ReconcileResult, error)

	// Close waits for in-flight notifications to be published, or for ctx
	// to end.
	Close(ctx context.Context) error
}

type service struct {
	repo     Repository
	gateway  payments.Gateway
	policy   cancellation.Policy
	notifier notifications.Publisher
	cache    EventCache
	log      *logger.Logger
	now      func() time.Time

	// tracks post-commit notification goroutines
	pending sync.WaitGroup
}

func NewService(repo Repository, gateway payments.Gateway, policy cancellation.Policy, log *logger.Logger) Service {
	return &service{
		repo:    repo,
		gateway: gateway,
		policy:  policy,
		log:     log,
		now:     time.Now,
	}
}

func (s *service) SetNotifier(publisher notifications.Publisher) {
	s.notifier = publisher
}

func (s *service) SetEventCache(cache EventCache) {
	s.cache = cache
}

// Reserve books a seat on the event for userEmail, or puts them on the
// waitlist when none is left. Booking for someone else requires admin.
func (s *service) Reserve(ctx context.Context, actor Actor, eventID uuid.UUID, userEmail, userName string) (*ReserveResult, error) {
	email, name, err := resolveBuyer(actor, userEmail, userName)
	if err != nil {
		return nil, err
	}

	var booking *Booking
	err = s.repo.WithinTransaction(ctx, func(tx TxRepository) error {
		event, err := tx.LockEvent(eventID)
		if err != nil {
			return err
		}

		booking = newBooking(event, email, name, event.Price)
		return s.claimSeat(tx, event, booking)
	})
	if err != nil {
		return nil, s.ledgerError(ctx, "reserve", err)
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), eventID.String(), email, booking.Status.String())
	s.afterCommit(ctx, booking.EventID, booking.Status.HoldsSeat(), bookingNotification(booking))

	return &ReserveResult{
		Success: true,
		Booking: booking,
		Message: statusMessage(booking.Status),
	}, nil
}

// claimSeat decides the booking's status under the event row lock and
// inserts it. A failed conditional decrement falls back to waitlist.
func (s *service) claimSeat(tx TxRepository, event *events.Event, booking *Booking) error {
	booking.Status = StatusWaitlist
	if event.AvailableSeats > 0 {
		err := tx.AdjustAvailableSeats(event.ID, -1)
		switch {
		case err == nil:
			booking.Status = StatusConfirmed
		case errors.Is(err, ErrSeatBounds):
			s.log.Warn("Seat counter rejected decrement, waitlisting", "event_id", event.ID)
		default:
			return err
		}
	}
	return tx.CreateBooking(booking)
}

func (s *service) GetUserBookings(ctx context.Context, actor Actor, email string) ([]Booking, error) {
	email = normalizeEmail(email)
	if !actor.canAccess(email) {
		return nil, ErrForbidden
	}

	bookings, err := s.repo.GetBookingsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	if bookings == nil {
		bookings = []Booking{}
	}
	return bookings, nil
}

// Cancel deletes the booking, releasing its seat if it held one, and quotes
// the refund from the time left before the event.
func (s *service) Cancel(ctx context.Context, actor Actor, bookingID uuid.UUID) (*CancelResult, error) {
	var (
		booking  *Booking
		quote    *cancellation.Quote
		released bool
	)

	err := s.repo.WithinTransaction(ctx, func(tx TxRepository) error {
		var err error
		booking, err = tx.LockBooking(bookingID)
		if err != nil {
			return err
		}
		if !actor.canAccess(booking.UserEmail) {
			return ErrForbidden
		}

		// the event may have been deleted since; fall back to the snapshot
		eventDate := booking.EventDate
		event, err := tx.LockEvent(booking.EventID)
		switch {
		case err == nil:
			eventDate = event.Date
		case errors.Is(err, ErrEventNotFound):
			event = nil
		default:
			return err
		}

		quote, err = s.policy.Quote(booking.Price, eventDate, s.now())
		if err != nil {
			return err
		}

		if booking.Status.HoldsSeat() && event != nil {
			err = tx.AdjustAvailableSeats(event.ID, 1)
			switch {
			case err == nil:
				released = true
			case errors.Is(err, ErrSeatBounds):
				s.log.Warn("Seat counter already at capacity, not releasing", "event_id", event.ID, "booking_id", booking.ID)
			default:
				return err
			}
		}

		if err := tx.DeleteBooking(booking.ID); err != nil {
			return err
		}
		if booking.TransactionID != nil {
			return tx.CancelReconciliation(*booking.TransactionID, booking.ID, s.now())
		}
		return nil
	})
	if err != nil {
		return nil, s.ledgerError(ctx, "cancel", err)
	}

	s.log.LogBookingCancelled(ctx, booking.ID.String(), booking.EventID.String(), booking.UserEmail,
		quote.RefundAmount, quote.DeductionAmount, released)

	s.afterCommit(ctx, booking.EventID, released, cancellationNotification(booking, quote))
	if released {
		s.notifyWaitlist(ctx, booking.EventID, booking.EventName)
	}

	return &CancelResult{
		Success:         true,
		RefundAmount:    quote.RefundAmount,
		DeductionAmount: quote.DeductionAmount,
		TotalPaid:       quote.TotalPaid,
		Message:         quote.Message,
		SeatReleased:    released,
	}, nil
}

// CreateCheckoutSession opens a hosted payment for one seat. No seat is held;
// it is claimed when the payment is reconciled.
func (s *service) CreateCheckoutSession(ctx context.Context, actor Actor, eventID uuid.UUID, userEmail, userName string) (*payments.CheckoutSession, error) {
	email, name, err := resolveBuyer(actor, userEmail, userName)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	switch {
	case event.HasStarted(s.now()):
		return nil, ErrEventStarted
	case event.AvailableSeats <= 0:
		return nil, ErrNoSeatsAvailable
	case event.Price <= 0:
		return nil, ErrNoPaymentRequired
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		EventID:   event.ID,
		EventName: event.Title,
		EventDate: event.Date,
		Image:     event.Image,
		UserEmail: email,
		UserName:  name,
		Price:     event.Price,
	})
	if err != nil {
		s.log.ErrorWithContext(ctx, "Failed to create checkout session", err, map[string]interface{}{
			"event_id": event.ID.String(),
		})
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	return session, nil
}

// ReconcilePayment turns a paid checkout session into a booking exactly once.
// Repeated calls for the same payment return the booking created first; once
// that booking is cancelled the payment is settled and never books again.
func (s *service) ReconcilePayment(ctx context.Context, actor Actor, sessionID string) (*ReconcileResult, error) {
	status, err := s.gateway.GetSessionStatus(ctx, sessionID)
	if err != nil {
		if errors.Is(err, payments.ErrSessionNotFound) || errors.Is(err, payments.ErrInvalidMetadata) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	if !status.Paid {
		return &ReconcileResult{Success: false, Message: msgPaymentNotComplete}, nil
	}

	meta := status.Metadata
	if !actor.canAccess(meta.UserEmail) {
		return nil, ErrForbidden
	}

	transactionID := status.TransactionID
	var (
		booking  *Booking
		replayed bool
		settled  string
	)

	err = s.repo.WithinTransaction(ctx, func(tx TxRepository) error {
		rec, err := tx.LockReconciliation(transactionID)
		switch {
		case err == nil:
			if rec.CancelledAt != nil {
				settled = msgPaymentRefunded
				return nil
			}
			existing, err := tx.FindByTransactionID(transactionID)
			if errors.Is(err, ErrBookingNotFound) {
				settled = msgPaymentUsed
				return nil
			}
			if err != nil {
				return err
			}
			booking, replayed = existing, true
			return nil
		case !errors.Is(err, errNotReconciled):
			return err
		}

		// bookings created before reconciliation records existed
		existing, err := tx.FindByTransactionID(transactionID)
		if err == nil {
			booking, replayed = existing, true
			return nil
		}
		if !errors.Is(err, ErrBookingNotFound) {
			return err
		}

		event, err := tx.LockEvent(meta.EventID)
		if err != nil {
			return err
		}

		booking = newBooking(event, meta.UserEmail, meta.UserName, meta.Price)
		booking.TransactionID = &transactionID
		if err := s.claimSeat(tx, event, booking); err != nil {
			return err
		}
		return tx.RecordReconciliation(&PaymentReconciliation{
			TransactionID: transactionID,
			BookingID:     booking.ID,
		})
	})

	// a concurrent reconciliation of the same payment won the unique index
	if errors.Is(err, ErrDuplicateTransaction) {
		booking, err = s.repo.GetBookingByTransactionID(ctx, transactionID)
		replayed = true
	}
	if err != nil {
		return nil, s.ledgerError(ctx, "reconcile payment", err)
	}

	if settled != "" {
		s.log.WarnContext(ctx, "Rejected reconciliation of a settled payment",
			"session_id", sessionID, "transaction_id", transactionID, "reason", settled)
		return &ReconcileResult{Success: false, Message: settled}, nil
	}

	s.log.LogPaymentReconciled(ctx, sessionID, transactionID, booking.ID.String(), replayed)
	if !replayed {
		s.afterCommit(ctx, booking.EventID, booking.Status.HoldsSeat(), bookingNotification(booking))
	}

	return &ReconcileResult{
		Success:  true,
		Booking:  booking,
		Message:  statusMessage(booking.Status),
		Replayed: replayed,
	}, nil
}

func (s *service) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// afterCommit refreshes the event cache when the counter moved and publishes
// the notification off the request path.
func (s *service) afterCommit(ctx context.Context, eventID uuid.UUID, counterMoved bool, note *notifications.EmailNotification) {
	if counterMoved && s.cache != nil {
		s.cache.InvalidateEvent(context.WithoutCancel(ctx), eventID)
	}
	if s.notifier == nil || note == nil {
		return
	}

	detached := context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.notifier.Publish(detached, note); err != nil {
			s.log.Warn("Failed to publish notification", "type", note.Type, "to", note.RecipientEmail, "error", err)
		}
	}()
}

// notifyWaitlist tells the longest-waiting user of the event that a seat
// opened up. Their booking stays on the waitlist.
func (s *service) notifyWaitlist(ctx context.Context, eventID uuid.UUID, eventName string) {
	if s.notifier == nil {
		return
	}

	detached := context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		next, err := s.repo.GetOldestWaitlisted(detached, eventID)
		if err != nil {
			if !errors.Is(err, ErrBookingNotFound) {
				s.log.Warn("Failed to look up waitlist", "event_id", eventID, "error", err)
			}
			return
		}

		note := notifications.NewNotificationBuilder().
			WithType(notifications.NotificationTypeSeatAvailable).
			WithRecipient(next.UserEmail, next.UserName).
			WithEventContext(eventID).
			WithBookingContext(next.ID).
			WithData(notifications.DataEventName, eventName).
			Build()
		if err := s.notifier.Publish(detached, note); err != nil {
			s.log.Warn("Failed to publish seat notification", "event_id", eventID, "error", err)
		}
	}()
}

// ledgerError keeps domain errors intact and hides store failures behind
// ErrTransactionFailed.
func (s *service) ledgerError(ctx context.Context, op string, err error) error {
	for _, known := range []error{
		ErrEventNotFound,
		ErrBookingNotFound,
		ErrForbidden,
		ErrEventStarted,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	s.log.ErrorWithContext(ctx, "Ledger transaction failed", err, map[string]interface{}{"operation": op})
	return fmt.Errorf("%w: %s: %v", ErrTransactionFailed, op, err)
}

func resolveBuyer(actor Actor, userEmail, userName string) (string, string, error) {
	email := normalizeEmail(userEmail)
	if email == "" {
		email = normalizeEmail(actor.Email)
	}
	if !actor.canAccess(email) {
		return "", "", ErrForbidden
	}

	name := strings.TrimSpace(userName)
	if name == "" && strings.EqualFold(email, actor.Email) {
		name = actor.Name
	}
	return email, name, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func statusMessage(status Status) string {
	if status == StatusConfirmed {
		return msgBookingConfirmed
	}
	return msgAddedToWaitlist
}

func bookingNotification(b *Booking) *notifications.EmailNotification {
	notType := notifications.NotificationTypeBookingWaitlisted
	if b.Status == StatusConfirmed {
		notType = notifications.NotificationTypeBookingConfirmed
	}

	return notifications.NewNotificationBuilder().
		WithType(notType).
		WithRecipient(b.UserEmail, b.UserName).
		WithEventContext(b.EventID).
		WithBookingContext(b.ID).
		WithData(notifications.DataEventName, b.EventName).
		WithData(notifications.DataEventDate, b.EventDate.UTC().Format("Jan 2, 2006 15:04 MST")).
		WithData(notifications.DataPrice, fmt.Sprintf("%.2f", b.Price)).
		Build()
}

func cancellationNotification(b *Booking, q *cancellation.Quote) *notifications.EmailNotification {
	return notifications.NewNotificationBuilder().
		WithType(notifications.NotificationTypeBookingCancelled).
		WithRecipient(b.UserEmail, b.UserName).
		WithEventContext(b.EventID).
		WithBookingContext(b.ID).
		WithData(notifications.DataEventName, b.EventName).
		WithData(notifications.DataMessage, q.Message).
		WithData(notifications.DataRefundAmount, fmt.Sprintf("%.2f", q.RefundAmount)).
		WithData(notifications.DataDeductionAmount, fmt.Sprintf("%.2f", q.DeductionAmount)).
		Build()
}
