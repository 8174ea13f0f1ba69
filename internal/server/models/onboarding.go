package models

import "time"

// Onboarding is the one-time questionnaire stored when an account finishes
// onboarding.
type Onboarding struct {
	UserID          string
	Country         string
	FinancialStatus string
	Interests       []string
	UsagePurpose    string
	ReferralSource  string
	Expectations    string
	CompletedAt     time.Time
}
