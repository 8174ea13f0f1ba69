package users

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/dmitrijs2005/pecunia/internal/server/models"
)

// MemoryRepository keeps accounts in a process-local map. Records are
// copied on the way in and out so callers never share state with the map.
type MemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]models.User
	emailOf map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byEmail: make(map[string]models.User),
		emailOf: make(map[string]string),
	}
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &user, nil
}

func (r *MemoryRepository) CreateIfAbsent(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return common.ErrorAlreadyExists
	}
	if _, ok := r.emailOf[user.ID]; ok {
		return common.ErrorAlreadyExists
	}

	r.byEmail[user.Email] = *user
	r.emailOf[user.ID] = user.Email
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email, ok := r.emailOf[user.ID]
	if !ok {
		return common.ErrorNotFound
	}

	stored := r.byEmail[email]
	stored.Name = user.Name
	stored.OnboardingComplete = user.OnboardingComplete
	stored.TokenVersion = user.TokenVersion
	r.byEmail[email] = stored
	return nil
}

func (r *MemoryRepository) MarkOnboardingComplete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email, ok := r.emailOf[userID]
	if !ok {
		return common.ErrorNotFound
	}

	stored := r.byEmail[email]
	if stored.OnboardingComplete {
		return common.ErrOnboardingCompleted
	}
	stored.OnboardingComplete = true
	r.byEmail[email] = stored
	return nil
}
