package rest

import (
	"time"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/dmitrijs2005/pecunia/internal/server/models"
	"github.com/dmitrijs2005/pecunia/internal/server/services"
)

type userResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	IsAuthenticated    bool   `json:"is_authenticated"`
	OnboardingComplete bool   `json:"onboarding_complete"`
}

func newUserResponse(v services.AccountView) userResponse {
	return userResponse{
		ID:                 v.ID,
		Name:               v.Name,
		Email:              v.Email,
		IsAuthenticated:    v.IsAuthenticated,
		OnboardingComplete: v.OnboardingComplete,
	}
}

// newUserResponseFromModel projects an account that already passed bearer
// authentication.
func newUserResponseFromModel(u *models.User) userResponse {
	return userResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		IsAuthenticated:    true,
		OnboardingComplete: u.OnboardingComplete,
	}
}

type sessionResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"` // seconds
	User         userResponse `json:"user"`
}

func newSessionResponse(s *services.Session) sessionResponse {
	return sessionResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    common.TokenTypeBearer,
		ExpiresIn:    int64(s.ExpiresIn / time.Second),
		User:         newUserResponse(s.User),
	}
}

type onboardingResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type onboardingDataResponse struct {
	Country         string    `json:"country"`
	FinancialStatus string    `json:"financial_status"`
	Interests       []string  `json:"interests"`
	UsagePurpose    string    `json:"usage_purpose"`
	ReferralSource  string    `json:"referral_source"`
	Expectations    string    `json:"expectations"`
	CompletedAt     time.Time `json:"completed_at"`
}

type profileResponse struct {
	userResponse
	OnboardingData *onboardingDataResponse `json:"onboarding_data"`
}

func newProfileResponse(p *services.Profile) profileResponse {
	resp := profileResponse{userResponse: newUserResponse(p.User)}
	if p.Onboarding != nil {
		resp.OnboardingData = newOnboardingDataResponse(p.Onboarding)
	}
	return resp
}

func newOnboardingDataResponse(o *models.Onboarding) *onboardingDataResponse {
	return &onboardingDataResponse{
		Country:         o.Country,
		FinancialStatus: o.FinancialStatus,
		Interests:       o.Interests,
		UsagePurpose:    o.UsagePurpose,
		ReferralSource:  o.ReferralSource,
		Expectations:    o.Expectations,
		CompletedAt:     o.CompletedAt,
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
