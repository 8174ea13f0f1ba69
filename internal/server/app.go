// Package server initializes and runs the Pecunia API server.
// It selects the storage backends, seeds demo accounts when asked to,
// handles graceful shutdown and starts the HTTP server.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/pecunia/internal/logging"
	"github.com/dmitrijs2005/pecunia/internal/server/auth"
	"github.com/dmitrijs2005/pecunia/internal/server/config"
	"github.com/dmitrijs2005/pecunia/internal/server/rest"
	"github.com/dmitrijs2005/pecunia/internal/server/services"
	"github.com/dmitrijs2005/pecunia/internal/server/throttle"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	store       *Store
	userService *services.UserService
	limiter     *throttle.LoginLimiter
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	store, err := OpenStore(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	hasher, err := auth.NewHasher(c.BcryptCost, c.HashWorkers)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	us := services.NewUserService(store, hasher, c, logger, nil)
	limiter := throttle.NewLoginLimiter(c.LoginMaxAttempts, c.LoginAttemptWindow, c.LoginLockoutDuration, nil)

	return &App{config: c, logger: logger, store: store, userService: us, limiter: limiter}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) seedDemoUsers(ctx context.Context) {
	if !app.config.SeedDemoUsers {
		return
	}

	n, err := app.userService.Seed(ctx, services.DemoAccounts())
	if err != nil {
		app.logger.Error(ctx, "error seeding demo accounts", "error", err)
		return
	}
	app.logger.Info(ctx, "demo accounts seeded", "created", n)
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := rest.NewServer(app.config.EndpointAddrHTTP, app.logger, app.userService, app.limiter, app.config)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	app.seedDemoUsers(ctx)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(context.Background(), "error closing store", "error", err)
	}
}
