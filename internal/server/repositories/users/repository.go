// Package users stores account records keyed by normalized email.
package users

import (
	"context"

	"github.com/dmitrijs2005/pecunia/internal/server/models"
)

type Repository interface {
	// GetUserByEmail returns common.ErrorNotFound when no account has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// CreateIfAbsent inserts user atomically with respect to its email and
	// returns common.ErrorAlreadyExists if the email is taken.
	CreateIfAbsent(ctx context.Context, user *models.User) error

	// Update overwrites the mutable fields (name, onboarding flag, token
	// version) of the account with user.ID.
	Update(ctx context.Context, user *models.User) error

	// MarkOnboardingComplete flips the onboarding flag from false to true.
	// It returns common.ErrOnboardingCompleted if the flag is already set.
	MarkOnboardingComplete(ctx context.Context, userID string) error
}
