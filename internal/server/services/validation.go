package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/dmitrijs2005/pecunia/internal/server/models"
	"github.com/go-playground/validator/v10"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

// RegisterInput is the payload of Register.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,maxbytes,hasdigit,hasupper"`
}

// LoginInput is the payload of Login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OnboardingInput is the questionnaire submitted by CompleteOnboarding.
type OnboardingInput struct {
	Country         string   `json:"country" validate:"required,min=2,max=50"`
	FinancialStatus string   `json:"financial_status" validate:"required"`
	Interests       []string `json:"interests" validate:"min=1,max=10,dive,required"`
	UsagePurpose    string   `json:"usage_purpose" validate:"required,min=10,max=500"`
	ReferralSource  string   `json:"referral_source" validate:"required"`
	Expectations    string   `json:"expectations" validate:"required,min=10,max=1000"`
}

func (in *RegisterInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = models.NormalizeEmail(in.Email)
}

func (in *LoginInput) normalize() {
	in.Email = models.NormalizeEmail(in.Email)
}

func (in *OnboardingInput) normalize() {
	in.Country = strings.TrimSpace(in.Country)
	in.FinancialStatus = strings.TrimSpace(in.FinancialStatus)
	for i := range in.Interests {
		in.Interests[i] = strings.TrimSpace(in.Interests[i])
	}
	in.UsagePurpose = strings.TrimSpace(in.UsagePurpose)
	in.ReferralSource = strings.TrimSpace(in.ReferralSource)
	in.Expectations = strings.TrimSpace(in.Expectations)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	must(v.RegisterValidation("hasdigit", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), unicode.IsDigit) >= 0
	}))
	must(v.RegisterValidation("hasupper", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), unicode.IsUpper) >= 0
	}))
	must(v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	}))

	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// validateInput runs the struct rules on in and converts failures into a
// *common.ValidationError with one message per field.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation: %w", err)
	}

	verr := &common.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), message(fe))
	}
	return verr
}

func message(fe validator.FieldError) string {
	isList := fe.Kind() == reflect.Slice

	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if isList {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if isList {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)
	case "hasdigit":
		return "must contain at least one digit"
	case "hasupper":
		return "must contain at least one uppercase letter"
	default:
		return "is invalid"
	}
}
