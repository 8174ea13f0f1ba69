package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/gin-gonic/gin"
)

const (
	codeValidation          = "VALIDATION_ERROR"
	codeBadRequest          = "BAD_REQUEST"
	codeEmailRegistered     = "EMAIL_ALREADY_REGISTERED"
	codeInvalidCredentials  = "INVALID_CREDENTIALS"
	codeInvalidToken        = "INVALID_TOKEN"
	codeTokenExpired        = "TOKEN_EXPIRED"
	codeRefreshExpired      = "REFRESH_TOKEN_EXPIRED"
	codeOnboardingCompleted = "ONBOARDING_ALREADY_COMPLETED"
	codeTooManyAttempts     = "TOO_MANY_ATTEMPTS"
	codeCanceled            = "REQUEST_CANCELED"
	codeInternal            = "INTERNAL_ERROR"
)

// errorStatus maps a service error to the HTTP status, error code and
// client-facing message. Unknown errors never leak their text.
func errorStatus(err error) (int, string, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusUnprocessableEntity, codeValidation, "invalid input"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusBadRequest, codeEmailRegistered, "Email already registered"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, codeInvalidCredentials, "Incorrect email or password"
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, codeTokenExpired, "Token has expired"
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, codeInvalidToken, "Invalid authentication credentials"
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, codeRefreshExpired, "Refresh token has expired"
	case errors.Is(err, common.ErrOnboardingCompleted):
		return http.StatusConflict, codeOnboardingCompleted, "Onboarding already completed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, codeCanceled, "request canceled"
	default:
		return http.StatusInternalServerError, codeInternal, "internal server error"
	}
}

// abortWithError writes err as an errorResponse and stops the handler chain.
func abortWithError(c *gin.Context, err error) {
	status, code, message := errorStatus(err)

	resp := errorResponse{Code: code, Message: message}
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	if status == http.StatusUnauthorized && code != codeRefreshExpired {
		c.Header("WWW-Authenticate", common.BearerScheme)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

func abortBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Code: codeBadRequest, Message: message})
}
