// Package onboarding stores the one-time onboarding questionnaire of an
// account, keyed by account id.
package onboarding

import (
	"context"

	"github.com/dmitrijs2005/pecunia/internal/server/models"
)

type Repository interface {
	// Create stores rec. A second record for the same account yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, rec *models.Onboarding) error

	// GetByUserID returns common.ErrorNotFound if the account never finished
	// onboarding.
	GetByUserID(ctx context.Context, userID string) (*models.Onboarding, error)
}
