package onboarding

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/dmitrijs2005/pecunia/internal/server/models"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]models.Onboarding
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]models.Onboarding)}
}

func (r *MemoryRepository) Create(ctx context.Context, rec *models.Onboarding) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[rec.UserID]; ok {
		return common.ErrorAlreadyExists
	}

	stored := *rec
	stored.Interests = slices.Clone(rec.Interests)
	r.records[rec.UserID] = stored
	return nil
}

func (r *MemoryRepository) GetByUserID(ctx context.Context, userID string) (*models.Onboarding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	rec.Interests = slices.Clone(rec.Interests)
	return &rec, nil
}
