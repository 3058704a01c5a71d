package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/aussiebroadwan/adminusers/internal/adminusers/http"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/notify"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/service"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store/drivers/sqlite"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/throttle"
	"github.com/aussiebroadwan/adminusers/pkg/cryptox"
	"github.com/aussiebroadwan/adminusers/pkg/httpx"
	"github.com/aussiebroadwan/adminusers/pkg/otpx"
	"github.com/aussiebroadwan/adminusers/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	serviceTokenLeeway = 30 * time.Second
)

// Application encapsulates the adminusers service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db         store.Store
	hasher     cryptox.Hasher
	otp        *otpx.Engine
	dispatcher *notify.Dispatcher
	redis      *redis.Client
	limiter    throttle.Limiter

	// Services
	userService              *service.UserService
	secondFactorService      *service.SecondFactorService
	forgottenPasswordService *service.ForgottenPasswordService
	inviteService            *service.InviteService
	rolesService             *service.RolesService
	housekeepingService      *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "adminusers",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.Hasher{Pepper: pepper}
	app.otp = otpx.NewEngine(cfg.OTPPeriod, cfg.OTPSkew)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := app.initNotify(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initThrottle(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("adminusers service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down adminusers service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	// Let in-flight notifications finish before their dependencies go away
	app.dispatcher.Wait()

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("error closing redis client", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("adminusers service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initNotify picks the delivery backend. SES only sends email, so texts go
// through the dispatch service when one is configured and the log otherwise.
func (app *Application) initNotify(ctx context.Context) error {
	cfg := app.cfg.Notify
	logSender := notify.LogSender{Logger: app.logger}

	var (
		email notify.EmailSender = logSender
		sms   notify.SMSSender   = logSender
	)

	switch cfg.Backend {
	case "http":
		client := notify.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
		email, sms = client, client
	case "ses":
		opts := []func(*awsconfig.LoadOptions) error{}
		if cfg.SESRegion != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.SESRegion))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}
		email = notify.NewSESSender(ses.NewFromConfig(awsCfg), cfg.SESFromEmail)
		if cfg.BaseURL != "" {
			sms = notify.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
		}
	}

	app.dispatcher = notify.NewDispatcher(email, sms, cfg.Templates, cfg.Timeout)
	app.logger.Info("notifications configured", "backend", cfg.Backend)
	return nil
}

// initThrottle connects to Redis when REDIS_URL is set. Without it nothing
// is throttled beyond the per-IP HTTP limits.
func (app *Application) initThrottle() error {
	if app.cfg.RedisURL == "" {
		app.limiter = throttle.Noop{}
		app.logger.Info("throttle disabled")
		return nil
	}

	opts, err := redis.ParseURL(app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	app.redis = redis.NewClient(opts)
	app.limiter = throttle.NewRedisLimiter(app.redis, app.cfg.ThrottleLimit, app.cfg.ThrottleWindow)

	app.logger.Info("throttle enabled", "limit", app.cfg.ThrottleLimit, "window", app.cfg.ThrottleWindow)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	links := service.LinksBuilder{
		BaseURL:        app.cfg.BaseURL,
		SelfServiceURL: app.cfg.SelfServiceURL,
	}

	app.userService = &service.UserService{
		Store:           app.db,
		Hasher:          app.hasher,
		OTP:             app.otp,
		Links:           links,
		LoginAttemptCap: app.cfg.LoginAttemptCap,
	}
	app.secondFactorService = &service.SecondFactorService{
		Users:    app.userService,
		OTP:      app.otp,
		Notifier: app.dispatcher,
		Limiter:  app.limiter,
	}
	app.forgottenPasswordService = &service.ForgottenPasswordService{
		Store:    app.db,
		Hasher:   app.hasher,
		Notifier: app.dispatcher,
		Limiter:  app.limiter,
		Links:    links,
		TTL:      app.cfg.ForgottenPasswordTTL,
	}
	app.inviteService = &service.InviteService{
		Store:           app.db,
		Users:           app.userService,
		Hasher:          app.hasher,
		OTP:             app.otp,
		Notifier:        app.dispatcher,
		Limiter:         app.limiter,
		Links:           links,
		DefaultRole:     app.cfg.InviteDefaultRole,
		TTL:             app.cfg.InviteTTL,
		LoginAttemptCap: app.cfg.LoginAttemptCap,
	}

	app.rolesService = &service.RolesService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.HousekeepingRetention,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.Limits = httpapi.RateLimits{
		Strict:   app.cfg.StrictLimit,
		Moderate: app.cfg.ModerateLimit,
		Lenient:  app.cfg.LenientLimit,
	}
	router.ServiceAuth = httpx.ServiceAuth([]byte(app.cfg.ServiceTokenSecret), serviceTokenLeeway)
	if router.ServiceAuth == nil {
		app.logger.Warn("service token secret not set, API is unauthenticated")
	}
	if limiter, ok := app.limiter.(*throttle.RedisLimiter); ok {
		router.Throttle = limiter
	}

	// Wire services to router
	router.UserService = app.userService
	router.SecondFactorService = app.secondFactorService
	router.ForgottenPasswordService = app.forgottenPasswordService
	router.InviteService = app.inviteService
	router.RolesService = app.rolesService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
