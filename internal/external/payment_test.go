package external

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "venuehub/internal/errors"
	"venuehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeCharge(t *testing.T) {
	var got initializeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.test/abc","access_code":"abc","reference":"ref-1"}}`))
	}))
	defer server.Close()

	client := NewPaymentClient(PaymentConfig{BaseURL: server.URL, SecretKey: "sk_test", Currency: "NGN"})
	resp, err := client.InitializeCharge(context.Background(), ChargeRequest{
		Email:     "client@example.com",
		Amount:    models.NewMoney(110000),
		Reference: "ref-1",
		BookingID: "booking-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://checkout.test/abc", resp.CheckoutURL)
	assert.Equal(t, "ref-1", resp.Reference)
	assert.Equal(t, int64(11000000), got.Amount)
	assert.Equal(t, "booking-1", got.Metadata.BookingID)
	assert.Equal(t, "NGN", got.Currency)
}

func TestInitializeChargeGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":false,"message":"boom"}`))
	}))
	defer server.Close()

	client := NewPaymentClient(PaymentConfig{BaseURL: server.URL, SecretKey: "sk_test"})
	_, err := client.InitializeCharge(context.Background(), ChargeRequest{Reference: "ref-1"})
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}

func TestVerifyTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref-9", r.URL.Path)
		w.Write([]byte(`{"status":true,"message":"ok","data":{"reference":"ref-9","status":"success","amount":500,"currency":"NGN","metadata":{"booking_id":"b-9"}}}`))
	}))
	defer server.Close()

	client := NewPaymentClient(PaymentConfig{BaseURL: server.URL, SecretKey: "sk_test"})
	tx, err := client.VerifyTransaction(context.Background(), "ref-9")
	require.NoError(t, err)
	assert.True(t, tx.Succeeded())
	assert.Equal(t, "b-9", tx.BookingID)
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"status":false,"message":"down"}`))
	}))
	defer server.Close()

	client := NewPaymentClient(PaymentConfig{BaseURL: server.URL, SecretKey: "sk_test"})
	for i := 0; i < 5; i++ {
		_, err := client.VerifyTransaction(context.Background(), "ref")
		assert.ErrorIs(t, err, apperrors.ErrUpstream)
	}
	assert.Equal(t, 3, calls)
}

func TestVerifySignature(t *testing.T) {
	client := NewPaymentClient(PaymentConfig{SecretKey: "sk_test"})
	body := []byte(`{"event":"charge.success"}`)

	mac := hmac.New(sha512.New, []byte("sk_test"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, client.VerifySignature(body, signature))
	assert.False(t, client.VerifySignature(body, "deadbeef"))
	assert.False(t, client.VerifySignature([]byte(`{"event":"charge.failed"}`), signature))
	assert.False(t, client.VerifySignature(body, ""))
}
