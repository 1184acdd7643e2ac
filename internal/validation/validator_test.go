package validation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"venuehub/internal/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAPI answers every check with the expected status and kind.
func stubAPI(t *testing.T, override func(w http.ResponseWriter, r *http.Request) bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if override != nil && override(w, r) {
			return
		}
		for _, c := range checks {
			if c.method == r.Method && c.path == r.URL.RequestURI() {
				w.WriteHeader(c.status)
				_ = json.NewEncoder(w).Encode(response.Envelope{Message: "stub", Error: c.kind})
				return
			}
		}
		w.WriteHeader(http.StatusTeapot)
	}))
}

func TestValidateAllPasses(t *testing.T) {
	srv := stubAPI(t, nil)
	defer srv.Close()

	require.NoError(t, NewSmokeValidator(srv.URL).ValidateAll(context.Background()))
}

func TestValidateAllReportsWrongStatus(t *testing.T) {
	srv := stubAPI(t, func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Path == "/dashboard" {
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(response.Envelope{Message: "ok"})
			return true
		}
		return false
	})
	defer srv.Close()

	err := NewSmokeValidator(srv.URL).ValidateAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard without token")
}

func TestValidateAllReportsWrongKind(t *testing.T) {
	srv := stubAPI(t, func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Path == "/auth/login" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(response.Envelope{Message: "nope", Error: "internal"})
			return true
		}
		return false
	})
	defer srv.Close()

	err := NewSmokeValidator(srv.URL).ValidateAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `expected error "unauthorized"`)
}
