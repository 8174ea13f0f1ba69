package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/pecunia/internal/server/repositories/onboarding"
	"github.com/dmitrijs2005/pecunia/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/pecunia/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps everything in process memory. WithTx only
// serialises callbacks against each other; writes made before a failing
// step are not rolled back.
type InMemoryRepositoryManager struct {
	users         *users.MemoryRepository
	onboarding    *onboarding.MemoryRepository
	refreshTokens refreshtokens.Repository
	txMu          *sync.Mutex
	inTx          bool
}

func NewInMemoryRepositoryManager(opts ...Option) *InMemoryRepositoryManager {
	o := buildOptions(opts)

	var rt refreshtokens.Repository = refreshtokens.NewMemoryRepository()
	if o.refreshTokens != nil {
		rt = o.refreshTokens
	}

	return &InMemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		onboarding:    onboarding.NewMemoryRepository(),
		refreshTokens: rt,
		txMu:          &sync.Mutex{},
	}
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Onboarding() onboarding.Repository {
	return m.onboarding
}

func (m *InMemoryRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.refreshTokens
}

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	if m.inTx {
		return fn(ctx, m)
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	inner := *m
	inner.inTx = true
	return fn(ctx, &inner)
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
