package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/pecunia/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token. Expires and CreatedAt are set by the caller.
	Create(ctx context.Context, token *models.RefreshToken) error

	// Find looks up a refresh token by its opaque token string and returns its metadata.
	// Implementations return common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Consume atomically removes a refresh token and returns what it held.
	// Of several concurrent calls with the same token at most one succeeds;
	// the others get common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token by its token string. Deleting a non-existent
	// token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUser removes every refresh token issued to the account.
	DeleteByUser(ctx context.Context, email string) error
}
