// Package rest exposes the account operations over HTTP using gin.
package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/dmitrijs2005/pecunia/internal/logging"
	"github.com/dmitrijs2005/pecunia/internal/server/config"
	"github.com/dmitrijs2005/pecunia/internal/server/models"
	"github.com/dmitrijs2005/pecunia/internal/server/services"
	"github.com/dmitrijs2005/pecunia/internal/server/throttle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// UserService is the subset of services.UserService the handlers call.
type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Session, error)
	Login(ctx context.Context, in services.LoginInput) (*services.Session, error)
	Verify(ctx context.Context, token string) (*models.User, error)
	CompleteOnboarding(ctx context.Context, user *models.User, in services.OnboardingInput) (*services.AccountView, error)
	GetProfile(ctx context.Context, user *models.User) (*services.Profile, error)
	Refresh(ctx context.Context, refreshToken string) (*services.Session, error)
	Logout(ctx context.Context, refreshToken string) error
	RevokeSessions(ctx context.Context, user *models.User) error
}

type Server struct {
	address    string
	users      UserService
	limiter    *throttle.LoginLimiter
	pruneEvery time.Duration
	logger     logging.Logger
	engine     *gin.Engine
}

func NewServer(a string, l logging.Logger, us UserService, limiter *throttle.LoginLimiter, cfg *config.Config) (*Server, error) {
	cc := corsConfig(cfg.CORSAllowedOrigins)
	if err := cc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cors settings: %w", err)
	}

	gin.SetMode(cfg.GinMode)

	s := &Server{
		address:    a,
		users:      us,
		limiter:    limiter,
		pruneEvery: cfg.LoginAttemptWindow,
		logger:     l.With("module", "rest_server"),
	}

	engine := gin.New()
	// nil trusts no proxy, so ClientIP is the socket peer
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	engine.Use(gin.Recovery(), s.requestLogger(), cors.New(cc))
	s.routes(engine)
	s.engine = engine

	return s, nil
}

func (s *Server) routes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/", s.hello)
	api.GET("/health", s.health)

	auth := api.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.POST("/refresh", s.refresh)
	auth.POST("/logout", s.logout)

	protected := auth.Group("", s.bearerAuth())
	protected.GET("/verify", s.verify)
	protected.POST("/onboarding", s.completeOnboarding)
	protected.GET("/profile", s.profile)
	protected.POST("/logout-all", s.logoutAll)
}

// Handler returns the configured router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowHeaders = append(c.AllowHeaders, common.AuthorizationHeaderName)
	c.ExposeHeaders = []string{requestIDHeader, "Retry-After"}
	return c
}

// Run serves HTTP until ctx is canceled, then shuts the server down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "error shutting down HTTP server", "error", err)
		}
	}()

	go s.pruneLimiter(ctx)

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) pruneLimiter(ctx context.Context) {
	if s.pruneEvery <= 0 {
		return
	}

	ticker := time.NewTicker(s.pruneEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.Prune()
		}
	}
}
