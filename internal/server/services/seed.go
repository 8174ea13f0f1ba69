package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/pecunia/internal/common"
)

// DemoAccounts are the accounts registered when demo seeding is enabled.
func DemoAccounts() []RegisterInput {
	return []RegisterInput{
		{Name: "John Doe", Email: "john@example.com", Password: "Password123"},
		{Name: "Jane Smith", Email: "jane@example.com", Password: "SecurePass456"},
		{Name: "Demo User", Email: "demo@pecunia.com", Password: "DemoPass789"},
	}
}

// Seed registers accounts, skipping the ones that already exist, and
// returns how many were created.
func (s *UserService) Seed(ctx context.Context, accounts []RegisterInput) (int, error) {
	created := 0
	for _, in := range accounts {
		session, err := s.Register(ctx, in)
		switch {
		case err == nil:
			created++
			// nobody holds the seed session
			if err := s.Logout(ctx, session.RefreshToken); err != nil {
				return created, err
			}
		case errors.Is(err, common.ErrorAlreadyExists):
			s.logger.Debug(ctx, "seed account exists", "email", in.Email)
		default:
			return created, err
		}
	}
	return created, nil
}
