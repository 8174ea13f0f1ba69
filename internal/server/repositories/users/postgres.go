package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/dmitrijs2005/pecunia/internal/dbx"
	"github.com/dmitrijs2005/pecunia/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, name, email, password_hash, onboarding_complete, token_version, created_at FROM users
		 WHERE email = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash,
		&user.OnboardingComplete, &user.TokenVersion, &user.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, user *models.User) error {
	query :=
		`INSERT INTO users (id, name, email, password_hash, onboarding_complete, token_version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT DO NOTHING
		 `

	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.OnboardingComplete, user.TokenVersion, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorAlreadyExists
	}

	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {
	query :=
		`UPDATE users SET name = $2, onboarding_complete = $3, token_version = $4
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, user.ID, user.Name, user.OnboardingComplete, user.TokenVersion)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) MarkOnboardingComplete(ctx context.Context, userID string) error {
	query :=
		`UPDATE users SET onboarding_complete = true
		 WHERE id = $1 AND NOT onboarding_complete
		 `

	res, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n > 0 {
		return nil
	}

	// nothing updated: either the account is gone or the flag was already set
	var done bool
	err = r.db.QueryRowContext(ctx, `SELECT onboarding_complete FROM users WHERE id = $1`, userID).Scan(&done)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return common.ErrOnboardingCompleted
}
