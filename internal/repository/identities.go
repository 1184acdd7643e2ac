package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"venuehub/internal/database"
	apperrors "venuehub/internal/errors"
	"venuehub/internal/models"
)

type IdentityRepository struct {
	db *database.DB
}

func NewIdentityRepository(db *database.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

const identityColumns = `id, email, password_hash, first_name, last_name, phone, profile_image,
		       role, is_verified, last_login_at, created_at, updated_at`

func (r *IdentityRepository) Create(ctx context.Context, identity *models.Identity) error {
	query := `
		INSERT INTO identities (email, password_hash, first_name, last_name, phone, role, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		strings.ToLower(identity.Email),
		identity.PasswordHash,
		identity.FirstName,
		identity.LastName,
		identity.Phone,
		identity.Role,
		identity.IsVerified,
	).Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)

	if database.IsUniqueViolation(err, "") {
		return apperrors.Conflict("an account with email %s already exists", identity.Email)
	}
	return err
}

func (r *IdentityRepository) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	if !validID(id) {
		return nil, nil
	}

	identity := &models.Identity{}
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`

	err := r.db.GetContext(ctx, identity, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return identity, nil
}

func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	identity := &models.Identity{}
	query := `SELECT ` + identityColumns + ` FROM identities WHERE email = $1`

	err := r.db.GetContext(ctx, identity, query, strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return identity, nil
}

func (r *IdentityRepository) MarkVerified(ctx context.Context, id string) error {
	query := `UPDATE identities SET is_verified = TRUE, updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *IdentityRepository) TouchLogin(ctx context.Context, id string) error {
	query := `UPDATE identities SET last_login_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
