package services

import (
	"time"

	"github.com/dmitrijs2005/pecunia/internal/server/models"
)

// AccountView is the public-safe projection of an account. It has no field
// that could carry the password hash.
type AccountView struct {
	ID                 string
	Name               string
	Email              string
	IsAuthenticated    bool
	OnboardingComplete bool
}

func newAccountView(u *models.User) AccountView {
	return AccountView{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		IsAuthenticated:    true,
		OnboardingComplete: u.OnboardingComplete,
	}
}

// Session is what Register, Login and Refresh hand back to the caller.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	User         AccountView
}

// Profile is the account view plus the onboarding questionnaire, nil until
// onboarding is complete.
type Profile struct {
	User       AccountView
	Onboarding *models.Onboarding
}
