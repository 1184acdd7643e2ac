package external

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "venuehub/internal/errors"
	"venuehub/internal/models"

	"github.com/sony/gobreaker"
)

type PaymentConfig struct {
	BaseURL     string
	SecretKey   string
	CallbackURL string
	Currency    string
	Timeout     time.Duration
}

// PaymentClient talks to a Paystack-style hosted checkout gateway
type PaymentClient struct {
	baseURL     string
	secretKey   string
	callbackURL string
	currency    string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
}

type ChargeRequest struct {
	Email     string
	Amount    models.Money
	Reference string
	BookingID string
}

type ChargeResponse struct {
	CheckoutURL string
	AccessCode  string
	Reference   string
}

// Transaction is the gateway's view of a charge.
type Transaction struct {
	Reference string
	Status    string
	Amount    int64
	Currency  string
	BookingID string
}

// Succeeded reports whether the gateway settled the charge.
func (t *Transaction) Succeeded() bool {
	return t.Status == "success"
}

type gatewayEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type initializeRequest struct {
	Email       string          `json:"email"`
	Amount      int64           `json:"amount"`
	Reference   string          `json:"reference"`
	Currency    string          `json:"currency,omitempty"`
	CallbackURL string          `json:"callback_url,omitempty"`
	Metadata    gatewayMetadata `json:"metadata"`
}

type gatewayMetadata struct {
	BookingID string `json:"booking_id"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type verifyData struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	Metadata  gatewayMetadata `json:"metadata"`
}

func NewPaymentClient(cfg PaymentConfig) *PaymentClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &PaymentClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:   cfg.SecretKey,
		callbackURL: cfg.CallbackURL,
		currency:    cfg.Currency,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker: newCircuitBreaker("payment-gateway"),
	}
}

// InitializeCharge opens a hosted checkout session for the booking total.
func (pc *PaymentClient) InitializeCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	body := initializeRequest{
		Email:       req.Email,
		Amount:      req.Amount.Minor(),
		Reference:   req.Reference,
		Currency:    pc.currency,
		CallbackURL: pc.callbackURL,
		Metadata:    gatewayMetadata{BookingID: req.BookingID},
	}

	var data initializeData
	if err := pc.call(ctx, http.MethodPost, "/transaction/initialize", body, &data); err != nil {
		return nil, apperrors.Upstream(err, "failed to initialize payment")
	}
	if data.AuthorizationURL == "" {
		return nil, apperrors.New(apperrors.ErrUpstream, "payment gateway returned no checkout url")
	}

	ref := data.Reference
	if ref == "" {
		ref = req.Reference
	}

	return &ChargeResponse{
		CheckoutURL: data.AuthorizationURL,
		AccessCode:  data.AccessCode,
		Reference:   ref,
	}, nil
}

// VerifyTransaction asks the gateway for the current state of a charge.
func (pc *PaymentClient) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	var data verifyData
	if err := pc.call(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &data); err != nil {
		return nil, apperrors.Upstream(err, "failed to verify payment")
	}

	return &Transaction{
		Reference: data.Reference,
		Status:    data.Status,
		Amount:    data.Amount,
		Currency:  data.Currency,
		BookingID: data.Metadata.BookingID,
	}, nil
}

// VerifySignature checks the webhook HMAC-SHA512 signature of body.
func (pc *PaymentClient) VerifySignature(body []byte, signature string) bool {
	if pc.secretKey == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(pc.secretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func (pc *PaymentClient) call(ctx context.Context, method, path string, in, out interface{}) error {
	_, err := pc.breaker.Execute(func() (interface{}, error) {
		return nil, pc.do(ctx, method, path, in, out)
	})
	return err
}

func (pc *PaymentClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reader io.Reader
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, pc.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+pc.secretKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := pc.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var envelope gatewayEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return fmt.Errorf("%w: status %d: %s", errClientSide, resp.StatusCode, envelope.Message)
	}
	if resp.StatusCode >= 500 || !envelope.Status {
		return fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, envelope.Message)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
