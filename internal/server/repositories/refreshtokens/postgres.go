// Package refreshtokens provides PostgreSQL, Redis and in-memory repositories
// for the refresh tokens used in the server's authentication flow.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/dmitrijs2005/pecunia/internal/dbx"
	"github.com/dmitrijs2005/pecunia/internal/server/models"
)

// PostgresRepository implements CRUD operations for refresh tokens over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new refresh token row.
func (r *PostgresRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, user_email, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, token.Token, token.UserEmail, token.Expires, token.CreatedAt); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

// Find returns the refresh token row for the given token string.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT token, user_email, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1
	`
	refreshToken := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&refreshToken.Token, &refreshToken.UserEmail, &refreshToken.Expires, &refreshToken.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return refreshToken, nil
}

// Consume deletes the row and returns it. Postgres row locking lets only
// one of several concurrent deletes see the row.
func (r *PostgresRepository) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE token = $1
		RETURNING token, user_email, expires_at, created_at
	`
	refreshToken := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&refreshToken.Token, &refreshToken.UserEmail, &refreshToken.Expires, &refreshToken.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return refreshToken, nil
}

// Delete removes a refresh token by its token string.
func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE token = $1
	`
	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteByUser removes all refresh tokens of the account with the given email.
func (r *PostgresRepository) DeleteByUser(ctx context.Context, email string) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE user_email = $1
	`
	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
