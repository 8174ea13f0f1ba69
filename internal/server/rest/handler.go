package rest

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/dmitrijs2005/pecunia/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (s *Server) hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello World"})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) register(c *gin.Context) {
	var in services.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortBadRequest(c, "malformed request body")
		return
	}

	session, err := s.users.Register(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(session))
}

func (s *Server) login(c *gin.Context) {
	ip := c.ClientIP()

	if wait := s.limiter.Check(ip); wait > 0 {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{
			Code:    codeTooManyAttempts,
			Message: "Too many failed login attempts, try again later",
		})
		return
	}

	var in services.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortBadRequest(c, "malformed request body")
		return
	}

	session, err := s.users.Login(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			if left := s.limiter.Failure(ip); left == 0 {
				s.logger.Warn(c.Request.Context(), "client locked out after failed logins", "client_ip", ip)
			}
		}
		abortWithError(c, err)
		return
	}

	s.limiter.Reset(ip)
	c.JSON(http.StatusOK, newSessionResponse(session))
}

func (s *Server) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		abortBadRequest(c, "refresh_token is required")
		return
	}

	session, err := s.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(session))
}

func (s *Server) logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		abortBadRequest(c, "refresh_token is required")
		return
	}

	if err := s.users.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) verify(c *gin.Context) {
	c.JSON(http.StatusOK, newUserResponseFromModel(currentUser(c)))
}

func (s *Server) completeOnboarding(c *gin.Context) {
	var in services.OnboardingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		abortBadRequest(c, "malformed request body")
		return
	}

	view, err := s.users.CompleteOnboarding(c.Request.Context(), currentUser(c), in)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, onboardingResponse{
		Message: "Onboarding completed successfully",
		User:    newUserResponse(*view),
	})
}

func (s *Server) profile(c *gin.Context) {
	profile, err := s.users.GetProfile(c.Request.Context(), currentUser(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(profile))
}

func (s *Server) logoutAll(c *gin.Context) {
	if err := s.users.RevokeSessions(c.Request.Context(), currentUser(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
