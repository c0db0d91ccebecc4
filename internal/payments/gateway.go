package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrInvalidMetadata = errors.New("checkout session metadata is incomplete")
	ErrNotConfigured   = errors.New("payment gateway is not configured")
)

// Gateway is the hosted-checkout provider seen by the booking ledger.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error)
}

type CheckoutRequest struct {
	EventID   uuid.UUID
	EventName string
	EventDate time.Time
	Image     string
	UserEmail string
	UserName  string
	Price     float64
}

type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// SessionStatus is the provider's view of a checkout session.
type SessionStatus struct {
	SessionID string
	Paid      bool
	// TransactionID identifies the payment; stable across repeated queries.
	TransactionID string
	Metadata      Metadata
}

// Metadata is carried on the session from creation to confirmation.
type Metadata struct {
	EventID   uuid.UUID
	UserEmail string
	UserName  string
	Price     float64
}

const (
	metaEventID   = "eventId"
	metaUserEmail = "userEmail"
	metaUserName  = "userName"
	metaPrice     = "price"
)

func (m Metadata) Encode() map[string]string {
	return map[string]string{
		metaEventID:   m.EventID.String(),
		metaUserEmail: m.UserEmail,
		metaUserName:  m.UserName,
		metaPrice:     strconv.FormatFloat(m.Price, 'f', 2, 64),
	}
}

func DecodeMetadata(raw map[string]string) (Metadata, error) {
	eventID, err := uuid.Parse(raw[metaEventID])
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: eventId: %v", ErrInvalidMetadata, err)
	}

	email := strings.ToLower(strings.TrimSpace(raw[metaUserEmail]))
	if email == "" {
		return Metadata{}, fmt.Errorf("%w: userEmail missing", ErrInvalidMetadata)
	}

	price, err := strconv.ParseFloat(raw[metaPrice], 64)
	if err != nil || price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return Metadata{}, fmt.Errorf("%w: price %q", ErrInvalidMetadata, raw[metaPrice])
	}

	return Metadata{
		EventID:   eventID,
		UserEmail: email,
		UserName:  raw[metaUserName],
		Price:     price,
	}, nil
}

// toMinorUnits converts a decimal price to the provider's integer amount.
func toMinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
