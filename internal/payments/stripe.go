package payments

import (
	"context"
	"errors"
	"fmt"

	"eventhive/internal/shared/config"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

// StripeGateway runs payments through Stripe Checkout. The payment intent id
// of a completed session is used as the booking's transaction id.
type StripeGateway struct {
	client   *session.Client
	currency string
	success  string
	cancel   string
}

func NewStripeGateway(cfg config.PaymentConfig) *StripeGateway {
	return newStripeGateway(stripe.GetBackend(stripe.APIBackend), cfg)
}

func newStripeGateway(backend stripe.Backend, cfg config.PaymentConfig) *StripeGateway {
	return &StripeGateway{
		client:   &session.Client{B: backend, Key: cfg.StripeSecretKey},
		currency: cfg.Currency,
		success:  cfg.SuccessURL,
		cancel:   cfg.CancelURL,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if g.client.Key == "" {
		return nil, ErrNotConfigured
	}

	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name:        stripe.String(req.EventName),
		Description: stripe.String("Event date: " + req.EventDate.UTC().Format("Jan 2, 2006 15:04 MST")),
	}
	if req.Image != "" {
		product.Images = stripe.StringSlice([]string{req.Image})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(req.UserEmail),
		SuccessURL:    stripe.String(g.success),
		CancelURL:     stripe.String(g.cancel),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(g.currency),
					ProductData: product,
					UnitAmount:  stripe.Int64(toMinorUnits(req.Price)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx

	meta := Metadata{
		EventID:   req.EventID,
		UserEmail: req.UserEmail,
		UserName:  req.UserName,
		Price:     req.Price,
	}
	for k, v := range meta.Encode() {
		params.AddMetadata(k, v)
	}

	s, err := g.client.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) GetSessionStatus(ctx context.Context, sessionID string) (*SessionStatus, error) {
	if g.client.Key == "" {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.client.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("stripe: retrieve checkout session: %w", err)
	}

	status := &SessionStatus{
		SessionID: s.ID,
		Paid: s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid ||
			s.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired,
		TransactionID: s.ID,
	}
	if s.PaymentIntent != nil && s.PaymentIntent.ID != "" {
		status.TransactionID = s.PaymentIntent.ID
	}

	if !status.Paid {
		return status, nil
	}

	meta, err := DecodeMetadata(s.Metadata)
	if err != nil {
		return nil, err
	}
	status.Metadata = meta

	return status, nil
}
