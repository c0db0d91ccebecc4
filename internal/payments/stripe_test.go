package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventhive/internal/shared/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *StripeGateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(server.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})

	return newStripeGateway(backend, config.PaymentConfig{
		StripeSecretKey: "sk_test_123",
		Currency:        "usd",
		SuccessURL:      "https://app.example/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       "https://app.example/cancel",
	})
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestStripeGateway_CreateCheckoutSession(t *testing.T) {
	eventID := uuid.New()

	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())

		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "ann@example.com", r.PostForm.Get("customer_email"))
		assert.Equal(t, "2550", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "usd", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, eventID.String(), r.PostForm.Get("metadata[eventId]"))
		assert.Equal(t, "25.50", r.PostForm.Get("metadata[price]"))

		writeJSON(t, w, http.StatusOK, map[string]interface{}{
			"id":     "cs_test_1",
			"object": "checkout.session",
			"url":    "https://checkout.stripe.com/c/pay/cs_test_1",
		})
	})

	s, err := gw.CreateCheckoutSession(context.Background(), CheckoutRequest{
		EventID:   eventID,
		EventName: "Jazz Night",
		EventDate: time.Now().Add(72 * time.Hour),
		UserEmail: "ann@example.com",
		UserName:  "Ann",
		Price:     25.5,
	})

	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", s.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", s.URL)
}

func TestStripeGateway_GetSessionStatus(t *testing.T) {
	eventID := uuid.New()

	t.Run("paid session uses the payment intent as transaction id", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/checkout/sessions/cs_paid", r.URL.Path)
			writeJSON(t, w, http.StatusOK, map[string]interface{}{
				"id":             "cs_paid",
				"object":         "checkout.session",
				"payment_status": "paid",
				"payment_intent": "pi_123",
				"metadata": map[string]string{
					"eventId":   eventID.String(),
					"userEmail": "Ann@Example.com",
					"userName":  "Ann",
					"price":     "25.50",
				},
			})
		})

		status, err := gw.GetSessionStatus(context.Background(), "cs_paid")

		require.NoError(t, err)
		assert.True(t, status.Paid)
		assert.Equal(t, "pi_123", status.TransactionID)
		assert.Equal(t, eventID, status.Metadata.EventID)
		assert.Equal(t, "ann@example.com", status.Metadata.UserEmail)
		assert.InDelta(t, 25.5, status.Metadata.Price, 1e-9)
	})

	t.Run("unpaid session", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, map[string]interface{}{
				"id":             "cs_open",
				"object":         "checkout.session",
				"payment_status": "unpaid",
			})
		})

		status, err := gw.GetSessionStatus(context.Background(), "cs_open")

		require.NoError(t, err)
		assert.False(t, status.Paid)
	})

	t.Run("unknown session", func(t *testing.T) {
		gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusNotFound, map[string]interface{}{
				"error": map[string]string{
					"type":    "invalid_request_error",
					"code":    "resource_missing",
					"message": "No such checkout.session: cs_missing",
				},
			})
		})

		_, err := gw.GetSessionStatus(context.Background(), "cs_missing")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestStripeGateway_NotConfigured(t *testing.T) {
	gw := NewStripeGateway(config.PaymentConfig{})

	_, err := gw.GetSessionStatus(context.Background(), "cs_1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestDecodeMetadata_Rejects(t *testing.T) {
	valid := Metadata{EventID: uuid.New(), UserEmail: "a@b.c", Price: 10}.Encode()

	for _, field := range []string{metaEventID, metaUserEmail, metaPrice} {
		raw := map[string]string{}
		for k, v := range valid {
			raw[k] = v
		}
		delete(raw, field)

		_, err := DecodeMetadata(raw)
		assert.ErrorIs(t, err, ErrInvalidMetadata, field)
	}
}
