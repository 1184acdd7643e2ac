package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"venuehub/internal/response"
)

// SmokeValidator checks that a running API answers its public contract:
// routing, the response envelope and the error mapping.
type SmokeValidator struct {
	baseURL string
	client  *http.Client
}

func NewSmokeValidator(baseURL string) *SmokeValidator {
	return &SmokeValidator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type check struct {
	name   string
	method string
	path   string
	body   any
	status int
	// kind is the expected error kind for failure responses.
	kind string
}

var checks = []check{
	{name: "health", method: http.MethodGet, path: "/health", status: http.StatusOK},
	{name: "venue search", method: http.MethodGet, path: "/venues?page=1&pageSize=5", status: http.StatusOK},
	{name: "venue search paging", method: http.MethodGet, path: "/venues?pageSize=1000", status: http.StatusBadRequest, kind: "invalid_input"},
	{name: "unknown venue", method: http.MethodGet, path: "/venues/00000000-0000-0000-0000-000000000000", status: http.StatusNotFound, kind: "not_found"},
	{name: "login with bad credentials", method: http.MethodPost, path: "/auth/login",
		body:   map[string]string{"email": "nobody@venuehub.invalid", "password": "wrong-password"},
		status: http.StatusUnauthorized, kind: "unauthorized"},
	{name: "register as admin", method: http.MethodPost, path: "/auth/register",
		body:   map[string]string{"email": "admin@venuehub.invalid", "password": "password123", "firstName": "A", "lastName": "B", "role": "admin"},
		status: http.StatusBadRequest, kind: "invalid_input"},
	{name: "dashboard without token", method: http.MethodGet, path: "/dashboard", status: http.StatusUnauthorized, kind: "unauthorized"},
	{name: "booking with expired session", method: http.MethodPost, path: "/booking/any", status: http.StatusBadRequest, kind: "expired_session"},
}

// ValidateAll runs every check and stops at the first failure
func (v *SmokeValidator) ValidateAll(ctx context.Context) error {
	slog.Info("Validating API", "url", v.baseURL, "checks", len(checks))

	for _, c := range checks {
		if err := v.run(ctx, c); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		slog.Info("Check passed", "check", c.name)
	}
	return nil
}

func (v *SmokeValidator) run(ctx context.Context, c check) error {
	var body io.Reader
	if c.body != nil {
		raw, err := json.Marshal(c.body)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, v.baseURL+c.path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.kind == "expired_session" {
		req.Header.Set("Authorization", "Bearer invalid.token.value")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != c.status {
		return fmt.Errorf("%s %s: expected %d, got %d", c.method, c.path, c.status, resp.StatusCode)
	}
	if c.path == "/health" {
		return nil
	}

	var env response.Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: failed to decode envelope: %w", c.method, c.path, err)
	}
	if env.Message == "" {
		return fmt.Errorf("%s %s: envelope has no message", c.method, c.path)
	}
	if c.kind != "" && env.Error != c.kind {
		return fmt.Errorf("%s %s: expected error %q, got %q", c.method, c.path, c.kind, env.Error)
	}
	return nil
}
