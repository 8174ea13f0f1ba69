package repomanager

import (
	"context"

	"github.com/dmitrijs2005/pecunia/internal/server/repositories/onboarding"
	"github.com/dmitrijs2005/pecunia/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/pecunia/internal/server/repositories/users"
)

// RepositoryManager vends the repositories of one storage backend. Inside
// WithTx the callback receives a manager whose repositories share the
// transaction.
type RepositoryManager interface {
	Users() users.Repository
	Onboarding() onboarding.Repository
	RefreshTokens() refreshtokens.Repository
	WithTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error
	RunMigrations(ctx context.Context) error
	Close() error
}

type options struct {
	refreshTokens refreshtokens.Repository
}

type Option func(*options)

// WithRefreshTokens makes the manager hand out repo instead of its own
// refresh token repository, both inside and outside transactions.
// Writes to a store other than the manager's database (Redis) are not part
// of WithTx and are not rolled back with it.
func WithRefreshTokens(repo refreshtokens.Repository) Option {
	return func(o *options) {
		o.refreshTokens = repo
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
