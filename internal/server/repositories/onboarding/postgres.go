package onboarding

import (
	"context"
	"database/sql"
	"encoding/json"
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

func (r *PostgresRepository) Create(ctx context.Context, rec *models.Onboarding) error {
	interests, err := json.Marshal(rec.Interests)
	if err != nil {
		return fmt.Errorf("error encoding interests: %w", err)
	}

	query :=
		`INSERT INTO onboarding (user_id, country, financial_status, interests, usage_purpose, referral_source, expectations, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 `

	_, err = r.db.ExecContext(ctx, query,
		rec.UserID, rec.Country, rec.FinancialStatus, interests,
		rec.UsagePurpose, rec.ReferralSource, rec.Expectations, rec.CompletedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.Onboarding, error) {
	query :=
		`SELECT user_id, country, financial_status, interests, usage_purpose, referral_source, expectations, completed_at FROM onboarding
		 WHERE user_id = $1
		 `

	rec := &models.Onboarding{}
	var interests []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&rec.UserID, &rec.Country, &rec.FinancialStatus, &interests,
		&rec.UsagePurpose, &rec.ReferralSource, &rec.Expectations, &rec.CompletedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(interests, &rec.Interests); err != nil {
		return nil, fmt.Errorf("error decoding interests: %w", err)
	}

	return rec, nil
}
