package auth

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

const DefaultBcryptCost = 11

// Hasher runs bcrypt on a bounded pool: at most `workers` hashes or
// comparisons are in flight, the rest wait on the semaphore and give up when
// their context is done.
type Hasher struct {
	cost  int
	sem   *semaphore.Weighted
	dummy []byte
}

// NewHasher validates cost and sizes the pool. workers <= 0 means
// GOMAXPROCS.
func NewHasher(cost, workers int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	dummy, err := bcrypt.GenerateFromPassword(common.GenerateRandByteArray(16), cost)
	if err != nil {
		return nil, fmt.Errorf("error preparing dummy hash: %w", err)
	}

	return &Hasher{
		cost:  cost,
		sem:   semaphore.NewWeighted(int64(workers)),
		dummy: dummy,
	}, nil
}

// Hash returns the bcrypt hash of password.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	plain := []byte(password)
	defer common.WipeByteArray(plain)

	hash, err := bcrypt.GenerateFromPassword(plain, h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare reports whether password matches hash. A mismatch is (false, nil);
// errors are reserved for cancellation and malformed hashes.
func (h *Hasher) Compare(ctx context.Context, hash, password string) (bool, error) {
	return h.compare(ctx, []byte(hash), password)
}

// CompareDummy burns the same work as a real comparison against a hash that
// matches nothing. Used when the account does not exist.
func (h *Hasher) CompareDummy(ctx context.Context, password string) error {
	_, err := h.compare(ctx, h.dummy, password)
	return err
}

func (h *Hasher) compare(ctx context.Context, hash []byte, password string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	plain := []byte(password)
	defer common.WipeByteArray(plain)

	err := bcrypt.CompareHashAndPassword(hash, plain)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
