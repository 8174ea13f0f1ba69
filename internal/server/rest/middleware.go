package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/dmitrijs2005/pecunia/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	currentUserKey  = "current_user"
)

// requestLogger tags every request with an id and logs one line once the
// handler chain is done.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)

		c.Next()

		args := []any{
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.Last().Error())
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			s.logger.Error(c.Request.Context(), "request failed", args...)
		case status >= http.StatusBadRequest:
			s.logger.Warn(c.Request.Context(), "request rejected", args...)
		default:
			s.logger.Info(c.Request.Context(), "request served", args...)
		}
	}
}

// bearerAuth resolves the Authorization header to an account and stores it
// in the gin context under currentUserKey.
func (s *Server) bearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
		if !ok {
			abortWithError(c, common.ErrInvalidToken)
			return
		}

		user, err := s.users.Verify(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
