package refreshtokens

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/dmitrijs2005/pecunia/internal/server/models"
)

// MemoryRepository keeps refresh tokens in a map. Expired entries stay until
// they are looked up and rotated or the account logs out everywhere.
type MemoryRepository struct {
	mu     sync.RWMutex
	tokens map[string]models.RefreshToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]models.RefreshToken)}
}

func (r *MemoryRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token.Token]; ok {
		return common.ErrorAlreadyExists
	}
	r.tokens[token.Token] = *token
	return nil
}

func (r *MemoryRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *MemoryRepository) Consume(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(r.tokens, token)
	return &t, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, token)
	return nil
}

func (r *MemoryRepository) DeleteByUser(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k, t := range r.tokens {
		if t.UserEmail == email {
			delete(r.tokens, k)
		}
	}
	return nil
}
