package users

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	u := sampleUser()
	require.NoError(t, repo.CreateIfAbsent(ctx, u))

	got, err := repo.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, *u, *got)

	// returned records are copies
	got.Name = "changed"
	again, err := repo.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", again.Name)

	_, err = repo.GetUserByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_CreateIfAbsent_Duplicate(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.CreateIfAbsent(ctx, sampleUser()))
	assert.ErrorIs(t, repo.CreateIfAbsent(ctx, sampleUser()), common.ErrorAlreadyExists)
}

func TestMemoryRepository_CreateIfAbsent_Concurrent(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	var created atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.CreateIfAbsent(ctx, sampleUser()); err == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, created.Load())
}

func TestMemoryRepository_Update(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	u := sampleUser()
	require.NoError(t, repo.CreateIfAbsent(ctx, u))

	u.TokenVersion = 5
	u.PasswordHash = "ignored"
	require.NoError(t, repo.Update(ctx, u))

	got, err := repo.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.EqualValues(t, 5, got.TokenVersion)
	assert.Equal(t, "$2a$11$hash", got.PasswordHash)

	u.ID = "missing"
	assert.ErrorIs(t, repo.Update(ctx, u), common.ErrorNotFound)
}

func TestMemoryRepository_MarkOnboardingComplete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	u := sampleUser()
	require.NoError(t, repo.CreateIfAbsent(ctx, u))

	require.NoError(t, repo.MarkOnboardingComplete(ctx, u.ID))
	assert.ErrorIs(t, repo.MarkOnboardingComplete(ctx, u.ID), common.ErrOnboardingCompleted)
	assert.ErrorIs(t, repo.MarkOnboardingComplete(ctx, "missing"), common.ErrorNotFound)

	got, err := repo.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.True(t, got.OnboardingComplete)
}
