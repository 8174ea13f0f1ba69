// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, token verification,
// onboarding and the refresh-token session lifecycle.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/dmitrijs2005/pecunia/internal/logging"
	"github.com/dmitrijs2005/pecunia/internal/server/auth"
	"github.com/dmitrijs2005/pecunia/internal/server/config"
	"github.com/dmitrijs2005/pecunia/internal/server/models"
	"github.com/dmitrijs2005/pecunia/internal/server/repositories/repomanager"
)

// UserService owns the credential and session operations:
//   - Register / Login: check credentials and mint a Session
//   - Verify: resolve a bearer token to the current account
//   - CompleteOnboarding / GetProfile: operations on a resolved account
//   - Refresh / Logout / RevokeSessions: refresh-token rotation and revocation
type UserService struct {
	repomanager                  repomanager.RepositoryManager
	hasher                       *auth.Hasher
	tokens                       *auth.TokenIssuer
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
	logger                       logging.Logger
}

// NewUserService constructs a UserService. now is the clock used for token
// timestamps and refresh-token expiry; nil means time.Now.
func NewUserService(m repomanager.RepositoryManager, hasher *auth.Hasher, cfg *config.Config, logger logging.Logger, now func() time.Time) *UserService {
	if now == nil {
		now = time.Now
	}
	return &UserService{
		repomanager:                  m,
		hasher:                       hasher,
		tokens:                       auth.NewTokenIssuer([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, now),
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          now,
		logger:                       logger.With("module", "users"),
	}
}

// Register validates in, creates the account and opens a session for it.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.normalize()
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	// fail fast before paying for a hash; CreateIfAbsent below is what
	// actually guards uniqueness
	if _, err := s.repomanager.Users().GetUserByEmail(ctx, in.Email); err == nil {
		return nil, common.ErrorAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, s.internal(ctx, "error looking up account", err)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, s.internal(ctx, "error hashing password", err)
	}

	user := &models.User{
		ID:           models.NewUserID(in.Email),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		TokenVersion: 1,
		CreatedAt:    s.now().UTC(),
	}

	var session *Session
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		if err := m.Users().CreateIfAbsent(ctx, user); err != nil {
			return err
		}
		session, err = s.issueSession(ctx, m, user)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, s.internal(ctx, "error creating account", err)
	}

	s.logger.Info(ctx, "account registered", "account_id", user.ID)
	return session, nil
}

// Login checks the credentials and opens a new session. An unknown email and
// a wrong password both yield common.ErrorUnauthorized after the same amount
// of hashing work.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.normalize()
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users().GetUserByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, s.internal(ctx, "error looking up account", err)
		}
		if err := s.hasher.CompareDummy(ctx, in.Password); err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, common.ErrorUnauthorized
	}

	ok, err := s.hasher.Compare(ctx, user.PasswordHash, in.Password)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, s.internal(ctx, "error comparing password", err)
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	var session *Session
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		session, err = s.issueSession(ctx, m, user)
		return err
	})
	if err != nil {
		return nil, s.internal(ctx, "error opening session", err)
	}

	return session, nil
}

// Verify resolves an access token to the current account. Malformed, badly
// signed, expired, revoked and orphaned tokens all fail with
// common.ErrInvalidToken; expired ones additionally match
// common.ErrTokenExpired.
func (s *UserService) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, common.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
		}
		return nil, common.ErrInvalidToken
	}

	user, err := s.repomanager.Users().GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, s.internal(ctx, "error resolving token subject", err)
	}

	if claims.Version != user.TokenVersion {
		return nil, common.ErrInvalidToken
	}

	return user, nil
}

// CompleteOnboarding stores the questionnaire and flips the onboarding flag
// of a resolved account. The first successful call wins; later calls fail
// with common.ErrOnboardingCompleted and store nothing.
func (s *UserService) CompleteOnboarding(ctx context.Context, user *models.User, in OnboardingInput) (*AccountView, error) {
	in.normalize()
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	rec := &models.Onboarding{
		UserID:          user.ID,
		Country:         in.Country,
		FinancialStatus: in.FinancialStatus,
		Interests:       in.Interests,
		UsagePurpose:    in.UsagePurpose,
		ReferralSource:  in.ReferralSource,
		Expectations:    in.Expectations,
		CompletedAt:     s.now().UTC(),
	}

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		if err := m.Users().MarkOnboardingComplete(ctx, user.ID); err != nil {
			return err
		}
		if err := m.Onboarding().Create(ctx, rec); err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				return common.ErrOnboardingCompleted
			}
			return err
		}
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, common.ErrOnboardingCompleted):
		return nil, common.ErrOnboardingCompleted
	case errors.Is(err, common.ErrorNotFound):
		return nil, common.ErrInvalidToken
	default:
		return nil, s.internal(ctx, "error completing onboarding", err)
	}

	s.logger.Info(ctx, "onboarding completed", "account_id", user.ID)

	done := *user
	done.OnboardingComplete = true
	view := newAccountView(&done)
	return &view, nil
}

// GetProfile returns the public view of a resolved account together with
// its onboarding record, if any.
func (s *UserService) GetProfile(ctx context.Context, user *models.User) (*Profile, error) {
	profile := &Profile{User: newAccountView(user)}

	rec, err := s.repomanager.Onboarding().GetByUserID(ctx, user.ID)
	switch {
	case err == nil:
		profile.Onboarding = rec
	case errors.Is(err, common.ErrorNotFound):
	default:
		return nil, s.internal(ctx, "error loading onboarding record", err)
	}

	return profile, nil
}

// Refresh spends a refresh token and returns a fresh Session. The token is
// consumed atomically inside the transaction, so of two concurrent calls
// with the same token only one gets a session. Unknown or already spent
// tokens yield common.ErrInvalidToken, expired ones
// common.ErrRefreshTokenExpired.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	var (
		session *Session
		expired bool
	)
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		token, err := m.RefreshTokens().Consume(ctx, refreshToken)
		if err != nil {
			return err
		}
		// the expired token stays consumed
		if !token.Expires.After(s.now()) {
			expired = true
			return nil
		}
		user, err := m.Users().GetUserByEmail(ctx, token.UserEmail)
		if err != nil {
			return err
		}
		session, err = s.issueSession(ctx, m, user)
		return err
	})
	switch {
	case err == nil && expired:
		return nil, common.ErrRefreshTokenExpired
	case err == nil:
		return session, nil
	case errors.Is(err, common.ErrorNotFound):
		return nil, common.ErrInvalidToken
	default:
		return nil, s.internal(ctx, "error rotating refresh token", err)
	}
}

// Logout drops a refresh token. Unknown tokens are ignored.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.repomanager.RefreshTokens().Delete(ctx, refreshToken); err != nil {
		return s.internal(ctx, "error deleting refresh token", err)
	}
	return nil
}

// RevokeSessions invalidates every access token issued to the account so
// far and deletes all of its refresh tokens.
func (s *UserService) RevokeSessions(ctx context.Context, user *models.User) error {
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, m repomanager.RepositoryManager) error {
		current, err := m.Users().GetUserByEmail(ctx, user.Email)
		if err != nil {
			return err
		}
		current.TokenVersion++
		if err := m.Users().Update(ctx, current); err != nil {
			return err
		}
		return m.RefreshTokens().DeleteByUser(ctx, current.Email)
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return s.internal(ctx, "error revoking sessions", err)
	}

	s.logger.Info(ctx, "sessions revoked", "account_id", user.ID)
	return nil
}

// --- helpers below ---

func (s *UserService) issueSession(ctx context.Context, m repomanager.RepositoryManager, user *models.User) (*Session, error) {
	access, err := s.tokens.Generate(user.Email, user.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	now := s.now()
	err = m.RefreshTokens().Create(ctx, &models.RefreshToken{
		Token:     refresh,
		UserEmail: user.Email,
		Expires:   now.Add(s.refreshTokenValidityDuration),
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.tokens.Validity(),
		User:         newAccountView(user),
	}, nil
}

// internal logs err and hides it behind common.ErrorInternal.
func (s *UserService) internal(ctx context.Context, msg string, err error) error {
	s.logger.Error(ctx, msg, "error", err)
	return common.ErrorInternal
}
