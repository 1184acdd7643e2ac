package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"venuehub/internal/auth"
	apperrors "venuehub/internal/errors"
	"venuehub/internal/external"
	"venuehub/internal/logger"
	"venuehub/internal/models"
	"venuehub/internal/notify"

	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	identities IdentityStore
	tokens     TokenIssuer
	otps       OTPStore
	revoker    TokenRevoker
	mailer     external.Mailer
	dashboards *DashboardService
	otpTTL     time.Duration
}

func NewAuthService(
	identities IdentityStore,
	tokens TokenIssuer,
	otps OTPStore,
	revoker TokenRevoker,
	mailer external.Mailer,
	dashboards *DashboardService,
	otpTTL time.Duration,
) *AuthService {
	if otpTTL <= 0 {
		otpTTL = 10 * time.Minute
	}
	return &AuthService{
		identities: identities,
		tokens:     tokens,
		otps:       otps,
		revoker:    revoker,
		mailer:     mailer,
		dashboards: dashboards,
		otpTTL:     otpTTL,
	}
}

// Register creates a client or venue owner account and emails a verification code.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.Identity, error) {
	if req.Role != models.RoleClient && req.Role != models.RoleVenueOwner {
		return nil, apperrors.InvalidRole("accounts can only be registered as client or venue_owner")
	}

	identity, err := s.create(ctx, req.Email, req.Password, req.FirstName, req.LastName, req.Phone, req.Role)
	if err != nil {
		return nil, err
	}

	if identity.Role == models.RoleVenueOwner {
		if err := s.dashboards.Provision(ctx, identity.ID); err != nil {
			logger.WithContext(ctx).Error("Failed to provision dashboard", "owner_id", identity.ID, "error", err)
		}
	}

	if err := s.sendOTP(ctx, identity); err != nil {
		logger.WithContext(ctx).Error("Failed to send verification code", "identity_id", identity.ID, "error", err)
	}
	return identity, nil
}

// CreateAdmin provisions an administrator. Admins cannot self-register.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password, firstName, lastName string) (*models.Identity, error) {
	identity, err := s.create(ctx, email, password, firstName, lastName, "", models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.identities.MarkVerified(ctx, identity.ID); err != nil {
		return nil, fmt.Errorf("failed to verify admin: %w", err)
	}
	identity.IsVerified = true
	return identity, nil
}

func (s *AuthService) create(ctx context.Context, email, password, firstName, lastName, phone string, role models.Role) (*models.Identity, error) {
	email = normalizeEmail(email)

	existing, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return nil, apperrors.Conflict("an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identity := &models.Identity{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Role:         role,
	}
	if phone != "" {
		identity.Phone = &phone
	}

	if err := s.identities.Create(ctx, identity); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	logger.WithContext(ctx).Info("Account created", "identity_id", identity.ID, "role", identity.Role)
	return identity, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	identity, err := s.identities.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if identity == nil {
		return nil, apperrors.New(apperrors.ErrUnauthorized, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.New(apperrors.ErrUnauthorized, "invalid email or password")
	}

	token, claims, err := s.tokens.Issue(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if err := s.identities.TouchLogin(ctx, identity.ID); err != nil {
		logger.WithContext(ctx).Warn("Failed to record login", "identity_id", identity.ID, "error", err)
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Identity:  identity,
	}, nil
}

// Logout revokes the token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.revoker.Revoke(ctx, claims.RegisteredClaims.ID, s.tokens.Remaining(claims)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// RequestOTP emails a fresh verification code, replacing any earlier one.
func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	identity, err := s.identities.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to look up email: %w", err)
	}
	if identity == nil {
		return apperrors.NotFound("account not found")
	}
	if err := s.sendOTP(ctx, identity); err != nil {
		return apperrors.Upstream(err, "failed to send verification code")
	}
	return nil
}

// VerifyOTP consumes the code and marks the account verified.
func (s *AuthService) VerifyOTP(ctx context.Context, req models.VerifyOTPRequest) (*models.Identity, error) {
	email := normalizeEmail(req.Email)

	identity, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if identity == nil {
		return nil, apperrors.NotFound("account not found")
	}

	ok, err := s.otps.ConsumeOTP(ctx, email, req.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check verification code: %w", err)
	}
	if !ok {
		return nil, apperrors.InvalidInput("invalid or expired verification code")
	}

	if err := s.identities.MarkVerified(ctx, identity.ID); err != nil {
		return nil, fmt.Errorf("failed to verify account: %w", err)
	}
	identity.IsVerified = true
	return identity, nil
}

func (s *AuthService) Me(ctx context.Context, id string) (*models.Identity, error) {
	identity, err := s.identities.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if identity == nil {
		return nil, apperrors.NotFound("account not found")
	}
	return identity, nil
}

func (s *AuthService) sendOTP(ctx context.Context, identity *models.Identity) error {
	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.otps.StoreOTP(ctx, identity.Email, code, s.otpTTL); err != nil {
		return err
	}

	msg, err := notify.OTPEmail(identity, code, s.otpTTL.String())
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, msg)
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
