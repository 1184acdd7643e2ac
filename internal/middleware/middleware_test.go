package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"venuehub/internal/auth"
	"venuehub/internal/logger"
	"venuehub/internal/models"
	"venuehub/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type revocations map[string]bool

func (r revocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	return r[tokenID], nil
}

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager(auth.Config{Secret: "middleware-secret", TokenTTL: time.Hour, Issuer: "venuehub"})
}

func newRouter(tokens *auth.TokenManager, revoked revocations, roles ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Recovery())
	chain := []gin.HandlerFunc{Auth(tokens, revoked)}
	if len(roles) > 0 {
		chain = append(chain, RequireRole(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		p, ok := PrincipalFromContext(c.Request.Context())
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		response.OK(c, "ok", p)
	})
	r.GET("/me", chain...)
	return r
}

func do(r http.Handler, token string) (*httptest.ResponseRecorder, response.Envelope) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body response.Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuthMissingToken(t *testing.T) {
	w, body := do(newRouter(newTokens(), nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", body.Error)
}

func TestAuthInvalidToken(t *testing.T) {
	w, body := do(newRouter(newTokens(), nil), "not-a-token")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "expired_session", body.Error)
}

func TestAuthResolvesPrincipal(t *testing.T) {
	tokens := newTokens()
	token, _, err := tokens.Issue(&models.Identity{ID: "client-1", Role: models.RoleClient})
	require.NoError(t, err)

	w, body := do(newRouter(tokens, revocations{}), token)
	require.Equal(t, http.StatusOK, w.Code)
	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "client-1", data["id"])
	assert.Equal(t, "client", data["role"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthRejectsRevokedToken(t *testing.T) {
	tokens := newTokens()
	token, claims, err := tokens.Issue(&models.Identity{ID: "client-1", Role: models.RoleClient})
	require.NoError(t, err)

	w, body := do(newRouter(tokens, revocations{claims.RegisteredClaims.ID: true}), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "expired_session", body.Error)
}

func TestRequireRole(t *testing.T) {
	tokens := newTokens()
	client, _, err := tokens.Issue(&models.Identity{ID: "client-1", Role: models.RoleClient})
	require.NoError(t, err)
	owner, _, err := tokens.Issue(&models.Identity{ID: "owner-1", Role: models.RoleVenueOwner})
	require.NoError(t, err)

	r := newRouter(tokens, nil, models.RoleVenueOwner)

	w, body := do(r, client)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_role", body.Error)

	w, _ = do(r, owner)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDPropagated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = logger.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestRecoveryWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var body response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal", body.Error)
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS())
	r.DELETE("/venues/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/venues/1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}
